package api

import (
	"fmt"
	"strings"

	"beresta/internal/dict"
	"beresta/internal/enrich"
)

type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Коды ошибок, которыми будем пользоваться
const (
	ErrNotFound = "not_found"
	ErrBadInput = "bad_input"
	ErrBadFile  = "bad_file"
)

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

// TemplateWarnings — нефатальные замечания по загруженному шаблону.
// Шаблон принимаем в любом случае, но пользователю стоит знать.
func TemplateWarnings(t *enrich.Template) []string {
	var warns []string
	if !t.HasIdentityColumn() {
		warns = append(warns, "no identity column (userId / personIdExternal)")
	}
	if t.HasOperationColumn() {
		warns = append(warns, "has Operation column; confirm skip via settings.skip_operation")
	}
	if len(t.DataRows) == 0 {
		warns = append(warns, "no data rows: picklist values will come from reference tables only")
	}
	return warns
}

// picklistRowWarnings — предупреждения по строке грида назначений.
// Обязательный пиклист без значений — данные не импортируются; единственное
// значение подозрительно: обычно ждали больше вариантов.
func picklistRowWarnings(mandatory bool, finalValues string) []string {
	items := splitValues(finalValues)
	var warns []string
	if mandatory && len(items) == 0 {
		warns = append(warns, "mandatory picklist column has no values")
	}
	if len(items) == 1 {
		warns = append(warns, fmt.Sprintf("picklist resolves to a single value: %q", items[0]))
	}
	return warns
}

// splitValues режет список "a, b, c" на значения, пустые выкидывает.
func splitValues(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateAssignments проверяет назначения пиклистов перед записью.
// Пустое значение легально — так назначение снимается.
func ValidateAssignments(assignments map[string]string) []FieldError {
	var errs []FieldError
	for key := range assignments {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, ferr(ErrBadInput, "key", "assignment key must not be empty"))
			continue
		}
		// ключи грида всегда нормализованные — иначе оверрайд молча не сработает
		if dict.NormalizeKey(key) != key {
			errs = append(errs, ferr(ErrBadInput, key, "assignment key must be normalized (lowercase, no separators)"))
		}
	}
	return errs
}

// ValidateCountry — код страны либо пуст, либо три буквы.
func ValidateCountry(code string) []FieldError {
	if code == "" {
		return nil
	}
	if len(code) != 3 {
		return []FieldError{ferr(ErrBadInput, "country", "country must be a 3-letter code")}
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return []FieldError{ferr(ErrBadInput, "country", "country must be uppercase letters")}
		}
	}
	return nil
}
