package dict

// PropertyEntry описывает одно свойство из словаря метаданных.
// Атрибуты храним строками как в исходном XML; отсутствующие = "".
type PropertyEntry struct {
	EntityType string `json:"entity_type"`
	Name       string `json:"name"`       // исходное имя свойства
	Type       string `json:"type"`       // сырой тег типа: Edm.String, SFOData.* и т.д.
	Required   string `json:"required"`   // "true" | ""
	MaxLength  string `json:"max_length"`
	Label      string `json:"label"`
}

// Entity — разобранный тип сущности словаря.
type Entity struct {
	Name       string
	Properties []*PropertyEntry
}

// GlobalIndex: нормализованный ключ -> свойства в порядке документа.
// Один ключ могут делить несколько типов сущностей.
type GlobalIndex map[string][]*PropertyEntry

// EntityIndex: имя типа сущности -> ключ -> свойство.
// Дубль ключа внутри одной сущности перетирает предыдущий.
type EntityIndex map[string]map[string]*PropertyEntry
