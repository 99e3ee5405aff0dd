// api/names.go
package api

import "strings"

// EntityByName возвращает каноническое имя сущности словаря по пользовательскому
// вводу: сначала точное совпадение, потом регистронезависимое.
func (s *Storage) EntityByName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byEntity[name]; ok {
		return name, true
	}
	nl := strings.ToLower(name)
	for canonical := range s.byEntity {
		if strings.ToLower(canonical) == nl {
			return canonical, true
		}
	}
	return "", false
}
