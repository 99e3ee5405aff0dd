package enrich

import (
	"fmt"
	"strings"

	"beresta/internal/reference"
)

// Template — разобранный входной шаблон: первая строка файла — имена колонок,
// вторая — описания, остальные — данные. После чтения не меняется.
type Template struct {
	Name         string     `json:"name"`
	Headers      []string   `json:"headers"`
	Descriptions []string   `json:"descriptions"`
	DataRows     [][]string `json:"-"`
}

// NewTemplate строит шаблон из сырого прямоугольника строк файла:
// первая строка — заголовки (хвостовые пустые ячейки срезаются),
// вторая — описания, остальные — данные. Файл без заголовков невалиден.
func NewTemplate(name string, rows [][]string) (*Template, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("template %s: empty file", name)
	}

	headers := append([]string(nil), rows[0]...)
	for len(headers) > 0 && strings.TrimSpace(headers[len(headers)-1]) == "" {
		headers = headers[:len(headers)-1]
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("template %s: no columns", name)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Template{Name: name, Headers: headers}
	if len(rows) > 1 {
		// описания выравниваем по числу колонок
		t.Descriptions = make([]string, len(headers))
		for i := range headers {
			if i < len(rows[1]) {
				t.Descriptions[i] = strings.TrimSpace(rows[1][i])
			}
		}
	}
	if len(rows) > 2 {
		t.DataRows = rows[2:]
	}
	return t, nil
}

// Options — внешние ручки одного прогона обогащения. Движок сам состояния
// не держит: индексы, каталог и оверрайды приходят аргументами.
type Options struct {
	Country       string             // трёхбуквенный код страны, "" — без предпочтения
	SkipOperation bool               // подтверждён пропуск колонки Operation
	Resolved      map[string]string  // нормализованный ключ -> финальные значения пиклиста
	Catalog       *reference.Catalog // справочные таблицы, может быть nil
}

// RowLabels — фиксированный порядок строк обогащённого шаблона.
// Это внешний контракт выгрузки, менять нельзя.
var RowLabels = [6]string{
	"Column Name", "Column Label", "Type", "Mandatory", "Max Length", "Picklist Values",
}

// Enriched — результат обогащения одного шаблона: шесть строк, выровненных
// по позициям исходных заголовков, плюс имя подобранной сущности.
type Enriched struct {
	Name       string   `json:"name"`
	EntityType string   `json:"entity_type,omitempty"`
	Headers    []string `json:"headers"`
	Labels     []string `json:"labels"`
	Types      []string `json:"types"`
	Mandatory  []string `json:"mandatory"`
	MaxLengths []string `json:"max_lengths"`
	Picklists  []string `json:"picklist_values"`
	Unmatched  []string `json:"unmatched,omitempty"` // заголовки без метаданных в словаре
}

// Rows отдаёт все шесть строк в порядке RowLabels.
func (e *Enriched) Rows() [6][]string {
	return [6][]string{e.Headers, e.Labels, e.Types, e.Mandatory, e.MaxLengths, e.Picklists}
}
