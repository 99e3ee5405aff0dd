package enrich

import "strings"

// Эвристические наборы ключевых слов — конфигурация, а не код:
// расширяются без правки алгоритмов (см. DESIGN.md).

// Суффиксы сущностей-зеркал (права/field-control): структурно похожи на боевые
// сущности, но данными не являются — при матчинге их счёт режем вдвое.
var mirrorEntitySuffixes = []string{"Permissions", "Permission", "FieldControls"}

// Трёхбуквенные коды стран, встречающиеся суффиксами в именах сущностей.
var CountryCodes = []string{
	"GBR", "USA", "DEU", "FRA", "AUS", "CAN", "JPN", "NLD", "ESP", "ITA",
	"BRA", "MEX", "IND", "SGP", "ZAF", "NZL", "ARE", "KWT", "PER", "SAU",
	"CHN", "HKG", "KOR", "MYS", "THA", "PHL", "IDN", "COL", "CHL", "ARG",
	"POL", "CZE", "TUN", "EGY", "ISR", "RUS", "SVK", "SVN",
}

// Identity-колонки: метаданные для них принудительно единые во всех шаблонах.
const (
	UserIDKey   = "userid"
	PersonIDKey = "personidexternal"
)

// IdentityLabels — канонические подписи identity-колонок.
var IdentityLabels = map[string]string{
	UserIDKey:   "User ID",
	PersonIDKey: "Person ID External",
}

// OperationKey — колонка с командой БД (insert/update/delete), не свойство данных.
const OperationKey = "operation"

// Колонки длительностей/периодов обычно вычисляемые — mandatory не форсируем,
// если словарь явно не требует.
var durationKeywords = []string{
	"duration", "period", "lengthofservice", "tenure", "probation",
	"probationperiod", "noticperiod", "noticeperiod", "servicedate",
}

// Пределы выдачи значений пиклистов.
const (
	MaxPicklistValues = 20 // строка Picklist Values в выгрузке
	MaxPreviewValues  = 8  // превью данных шаблона в гриде назначений
)

// Таблица дружелюбных типов для сырых тегов словаря.
var typeMap = map[string]string{
	"Edm.String":         "string",
	"Edm.Decimal":        "float",
	"Edm.DateTime":       "date",
	"Edm.DateTimeOffset": "date",
	"Edm.Int64":          "integer",
	"Edm.Int32":          "integer",
	"Edm.Int16":          "integer",
	"Edm.Byte":           "integer",
	"Edm.Boolean":        "boolean",
	"Edm.Double":         "float",
	"Edm.Single":         "float",
	"Edm.Binary":         "binary",
	"Edm.Time":           "time",
}

// Всё из перечислимого пространства имён — пиклист, независимо от таблицы выше.
const picklistTypePrefix = "SFOData."

// TypePicklist — дружелюбный тип перечислимой колонки.
const TypePicklist = "picklist"

// Подстроки нормализованных имён, по которым строковая колонка скорее всего пиклист.
var picklistSubstrings = []string{
	"gender", "salutation", "marital", "legalentity",
	"employmenttype", "employeeclass", "employeetype", "contingent",
	"timezone", "country", "nationality", "addresstype", "isprimary",
	"currency", "frequency", "paygroup", "holidaycalendar",
	"eventreason", "eventtype", "contracttype",
	"costcenter", "division", "department", "businessunit",
	"location", "jobcode", "jobtitle", "jobfamily", "joblevel",
	"timetype", "workschedule", "payscale",
	"locale", "status",
}

// Подстроки-вето: имена, адреса, свободный текст, идентификаторы — никогда не пиклист.
var nonPicklistSubstrings = []string{
	"firstname", "lastname", "middlename", "preferredname",
	"formalname", "suffixname",
	"address1", "address2", "address3", "addressline", "street",
	"city", "postcode", "postalcode", "zipcode",
	"emailaddress", "phone", "fax",
	"nationalid", "nino", "passport",
	"sequencenumber", "description", "comments", "remark",
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
