package enrich

import (
	"strings"

	"beresta/internal/dict"
)

// LookupProperty ищет метаданные колонки: сперва свойства подобранной сущности,
// потом глобальный индекс (первая сущность документа). nil — метаданных нет,
// для вызывающего это не ошибка, а маркер "пустые метаданные".
func LookupProperty(header string, entityProps map[string]*dict.PropertyEntry, global dict.GlobalIndex) *dict.PropertyEntry {
	key := dict.NormalizeKey(header)
	if entityProps != nil {
		if p, ok := entityProps[key]; ok {
			return p
		}
	}
	if list := global[key]; len(list) > 0 {
		return list[0]
	}
	return nil
}

// FriendlyType переводит сырой тег типа в дружелюбный. Всё из перечислимого
// пространства имён — picklist, незнакомый тег отдаём как есть.
func FriendlyType(raw string) string {
	if t, ok := typeMap[raw]; ok {
		return t
	}
	if strings.HasPrefix(raw, picklistTypePrefix) {
		return TypePicklist
	}
	return raw
}

// KnownType — известен ли сырой тег типа (таблица типов или перечислимый
// namespace). Незнакомые теги не ошибка, но линтер словаря их подсвечивает.
func KnownType(raw string) bool {
	if _, ok := typeMap[raw]; ok {
		return true
	}
	return strings.HasPrefix(raw, picklistTypePrefix)
}
