// api/schema_lint.go
package api

import (
	"fmt"

	"beresta/internal/dict"
	"beresta/internal/enrich"
)

type SchemaIssue struct {
	Entity  string `json:"entity"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DictLint проверяет словарь схемы на противоречия. Всё нефатально:
// словарь принимаем, но проблемы показываем.
func (s *Storage) DictLint() []SchemaIssue {
	s.mu.RLock()
	entities := s.entities
	s.mu.RUnlock()

	return lintEntities(entities)
}

func lintEntities(entities []*dict.Entity) []SchemaIssue {
	var issues []SchemaIssue

	for _, e := range entities {
		// дубли нормализованных ключей внутри сущности: при матчинге
		// выживет только последний, остальные молча перекрываются
		seen := make(map[string]string, len(e.Properties))
		for _, p := range e.Properties {
			key := dict.NormalizeKey(p.Name)
			if prev, dup := seen[key]; dup {
				issues = append(issues, SchemaIssue{
					Entity:  e.Name,
					Field:   p.Name,
					Code:    "duplicate_key",
					Message: fmt.Sprintf("normalizes to %q same as property %q", key, prev),
				})
			} else {
				seen[key] = p.Name
			}

			// незнакомый тег типа уйдёт в выгрузку как есть
			if p.Type != "" && !enrich.KnownType(p.Type) {
				issues = append(issues, SchemaIssue{
					Entity:  e.Name,
					Field:   p.Name,
					Code:    "unknown_type",
					Message: fmt.Sprintf("unknown type tag %q, will pass through unchanged", p.Type),
				})
			}

			if p.Name == "" {
				issues = append(issues, SchemaIssue{
					Entity:  e.Name,
					Code:    "empty_property",
					Message: "property without a name",
				})
			}
		}
	}
	return issues
}
