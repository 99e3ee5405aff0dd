package template

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadGrid разбирает файл шаблона в прямоугольник строк. Семантику строк
// (заголовки, описания, данные) пакет не знает — это дело вызывающего.
func ReadGrid(filename string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return readCSVGrid(filename, data)
	case ".xlsx", ".xls":
		return readXLSXGrid(filename, data)
	default:
		return nil, fmt.Errorf("unsupported template format: %s", filepath.Ext(filename))
	}
}

func readCSVGrid(filename string, data []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(DecodeText(data)))
	r.FieldsPerRecord = -1 // рваные строки допустимы
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", filepath.Base(filename), err)
	}
	return rows, nil
}

// Из книги берём только первый лист: шаблоны импорта одностраничные.
func readXLSXGrid(filename string, data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", filepath.Base(filename), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("template %s: no sheets", filepath.Base(filename))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", filepath.Base(filename), err)
	}
	return rows, nil
}
