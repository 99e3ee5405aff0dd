package enrich

import (
	"strings"

	"beresta/internal/dict"
)

// IsPicklistColumn решает, положена ли колонке строка Picklist Values.
// Порядок правил важен:
//   - тип picklist — всегда да;
//   - дата/время/числа/булево — всегда нет;
//   - string — нет при вето-подстроке в ключе, да при "пиклистовой" подстроке;
//   - всё прочее (включая неразрешённый пустой тип) — нет.
func IsPicklistColumn(key, friendlyType string) bool {
	switch friendlyType {
	case TypePicklist:
		return true
	case "date", "time", "float", "integer", "boolean":
		return false
	case "string":
		if containsAny(key, nonPicklistSubstrings) {
			return false
		}
		return containsAny(key, picklistSubstrings)
	}
	return false
}

// IsDurationColumn — колонка длительности/периода по ключевым словам.
func IsDurationColumn(key string) bool {
	return containsAny(key, durationKeywords)
}

// ExtractColumnValues собирает уникальные непустые значения колонки по строкам
// данных: порядок первого появления, не больше limit, лишнее молча отбрасываем.
func ExtractColumnValues(colIdx int, dataRows [][]string, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range dataRows {
		if colIdx >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[colIdx])
		if val == "" {
			continue
		}
		if _, dup := seen[val]; dup {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// ResolvePicklistValues собирает строку значений пиклиста по строгому приоритету:
// финальные значения пользователя (как есть) > подписи привязанной таблицы
// справочника > значения из данных самого шаблона > пусто.
func ResolvePicklistValues(key string, colIdx int, dataRows [][]string, opts Options) string {
	if v, ok := opts.Resolved[key]; ok {
		return v
	}
	if opts.Catalog != nil {
		if table, ok := opts.Catalog.Columns[key]; ok {
			if labels := opts.Catalog.Labels(table); len(labels) > 0 {
				return strings.Join(labels, ", ")
			}
		}
	}
	if vals := ExtractColumnValues(colIdx, dataRows, MaxPicklistValues); len(vals) > 0 {
		return strings.Join(vals, ", ")
	}
	return ""
}

// GatherTemplateDataValues — превью значений колонки по данным всех шаблонов
// для грида назначений. Только для глаз: в выгрузку не попадает и источники
// из ResolvePicklistValues не перебивает. Усечение помечаем многоточием.
func GatherTemplateDataValues(normKey string, templates []*Template) string {
	var seenList []string
	seen := make(map[string]struct{})

	for _, t := range templates {
		colIdx := -1
		for i, h := range t.Headers {
			if dict.NormalizeKey(h) == normKey {
				colIdx = i
				break
			}
		}
		if colIdx < 0 {
			continue
		}
		for _, row := range t.DataRows {
			if colIdx >= len(row) {
				continue
			}
			val := strings.TrimSpace(row[colIdx])
			if val == "" {
				continue
			}
			if _, dup := seen[val]; dup {
				continue
			}
			seen[val] = struct{}{}
			seenList = append(seenList, val)
			if len(seenList) >= MaxPreviewValues {
				break
			}
		}
		if len(seenList) >= MaxPreviewValues {
			break
		}
	}

	result := strings.Join(seenList, ", ")
	if len(seenList) >= MaxPreviewValues {
		result += ", ..."
	}
	return result
}
