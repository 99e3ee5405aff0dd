package template

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Имя листа в xlsx-выгрузке.
const exportSheet = "Import Template"

// WriteCSV пишет блок строк с подписями в первой колонке. Без шапки,
// с UTF-8 BOM в начале — иначе Excel ломает не-ASCII подписи.
func WriteCSV(labels []string, rows [][]string) ([]byte, error) {
	if len(labels) != len(rows) {
		return nil, fmt.Errorf("labels/rows mismatch: %d != %d", len(labels), len(rows))
	}
	var buf bytes.Buffer
	buf.Write(bomUTF8)
	w := csv.NewWriter(&buf)
	for i, row := range rows {
		if err := w.Write(append([]string{labels[i]}, row...)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX — тот же блок одним листом книги.
func WriteXLSX(labels []string, rows [][]string) ([]byte, error) {
	if len(labels) != len(rows) {
		return nil, fmt.Errorf("labels/rows mismatch: %d != %d", len(labels), len(rows))
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	for i, row := range rows {
		anchor, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		line := append([]string{labels[i]}, row...)
		if err := f.SetSheetRow(exportSheet, anchor, &line); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportName — имя файла выгрузки для исходного шаблона.
func ExportName(original, ext string) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_enriched." + ext
}

// ExportFile — один файл пакетной выгрузки.
type ExportFile struct {
	Name string
	Data []byte
}

// ZipFiles собирает файлы в zip в переданном порядке.
func ZipFiles(files []ExportFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
