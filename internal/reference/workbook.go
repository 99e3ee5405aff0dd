package reference

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"beresta/internal/dict"
	"beresta/internal/template"
)

// Листы с пиклистами помечены в книге суффиксом имени.
const dataSheetSuffix = "(Data)"

// Заголовки, после которых первая строка CSV считается шапкой, а не данными.
var csvHeaderCells = map[string]struct{}{
	"code": {}, "id": {}, "value": {}, "key": {}, "externalcode": {},
}

// ParseSource разбирает один справочный источник по расширению файла.
// Ошибка любого источника восстановимая: вызывающий пропускает файл и едет дальше.
func ParseSource(filename string, data []byte, cat *Catalog) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSVTable(filename, data, cat)
	case ".xlsx", ".xls":
		return ParseWorkbook(data, cat)
	case ".yaml", ".yml":
		return ParseYAMLTable(filename, data, cat)
	default:
		return fmt.Errorf("unsupported reference format: %s", filepath.Ext(filename))
	}
}

// ParseCSVTable читает плоскую двухколоночную таблицу код/подпись.
// Имя таблицы — имя файла без расширения.
func ParseCSVTable(filename string, data []byte, cat *Catalog) error {
	base := filepath.Base(filename)
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "Picklist"
	}

	r := csv.NewReader(strings.NewReader(template.DecodeText(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read csv %s: %w", base, err)
	}
	if len(rows) == 0 {
		return nil
	}

	start := 0
	if _, ok := csvHeaderCells[strings.ToLower(strings.TrimSpace(cell(rows[0], 0)))]; ok {
		start = 1
	}

	var items []Item
	for _, row := range rows[start:] {
		code := strings.TrimSpace(cell(row, 0))
		if code == "" {
			continue
		}
		items = append(items, Item{Code: code, Label: strings.TrimSpace(cell(row, 1))})
	}
	cat.AddTable(name, items)
	return nil
}

// ParseWorkbook разбирает xlsx-книгу: каждый лист `...(Data)` несёт слева
// колонки-источники, справа — именованные таблицы пиклистов.
func ParseWorkbook(data []byte, cat *Catalog) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		if !strings.HasSuffix(sheet, dataSheetSuffix) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		parseDataSheet(rows, cat)
	}
	return nil
}

// Раскладка листа (строки с нуля):
//   строка 0 — технические имена (слева) и display-имена таблиц (справа, над ячейкой Code);
//   строка 1 — человеческие подписи (слева), литералы Code/Label (справа);
//   строка 2+ — данные. Код обязателен, подпись может быть пустой.
func parseDataSheet(rows [][]string, cat *Catalog) {
	row0, row1 := rows[0], rows[1]

	type tablePos struct {
		col  int
		name string
	}
	var positions []tablePos
	for c := range row1 {
		if !strings.EqualFold(strings.TrimSpace(row1[c]), "code") {
			continue
		}
		name := strings.TrimSpace(cell(row0, c))
		if name != "" {
			positions = append(positions, tablePos{col: c, name: name})
		}
	}
	if len(positions) == 0 {
		return
	}

	// таблицы этого листа: Code-колонка плюс соседняя Label-колонка
	sheetTables := make(map[string]string, len(positions)) // lower(name) -> name
	for _, pos := range positions {
		var items []Item
		for _, row := range rows[2:] {
			code := strings.TrimSpace(cell(row, pos.col))
			if code == "" {
				continue
			}
			items = append(items, Item{Code: code, Label: strings.TrimSpace(cell(row, pos.col+1))})
		}
		if len(items) > 0 {
			sheetTables[strings.ToLower(pos.name)] = pos.name
			cat.AddTable(pos.name, items)
		}
	}

	// автопривязка: левые колонки до первой Code-колонки, у которых заполнены обе
	// строки шапки; человеческая подпись матчится на display-имя таблицы без регистра
	firstCode := positions[0].col
	for c := 0; c < firstCode; c++ {
		tech := strings.TrimSpace(cell(row0, c))
		human := strings.TrimSpace(cell(row1, c))
		if tech == "" || human == "" {
			continue
		}
		if table, ok := sheetTables[strings.ToLower(human)]; ok {
			cat.MapColumn(dict.NormalizeKey(tech), table)
		}
	}
}

// cell — безопасный доступ: GetRows отдаёт рваные строки
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
