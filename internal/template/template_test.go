package template

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "abc", DecodeText([]byte{0xEF, 0xBB, 0xBF, 'a', 'b', 'c'})) // BOM срезается
	assert.Equal(t, "héllo", DecodeText([]byte("héllo")))
	// невалидный UTF-8 трактуется как Latin-1
	assert.Equal(t, "café", DecodeText([]byte{'c', 'a', 'f', 0xE9}))
}

func TestReadGridCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFuserId,jobCode\nUser,Job\n1001,J1\n1002\n")
	rows, err := ReadGrid("EmpJob.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"userId", "jobCode"}, rows[0])
	assert.Equal(t, []string{"1002"}, rows[3]) // рваная строка проходит
}

func TestReadGridXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"userId", "gender"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"User", "Gender"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]string{"1001", "Male"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := ReadGrid("EmpJob.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"userId", "gender"}, rows[0])
	assert.Equal(t, []string{"1001", "Male"}, rows[2])
}

func TestReadGridUnsupported(t *testing.T) {
	_, err := ReadGrid("notes.pdf", []byte("x"))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	got, err := WriteCSV(
		[]string{"Column Name", "Type"},
		[][]string{{"userId", "gender"}, {"string", "picklist"}},
	)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, bomUTF8))
	assert.Equal(t, "Column Name,userId,gender\nType,string,picklist\n", string(got[len(bomUTF8):]))

	_, err = WriteCSV([]string{"a"}, nil)
	assert.Error(t, err)
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	data, err := WriteXLSX(
		[]string{"Column Name", "Type"},
		[][]string{{"userId"}, {"string"}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{exportSheet}, f.GetSheetList())
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Column Name", "userId"}, {"Type", "string"}}, rows)
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "EmpJob_enriched.csv", ExportName("EmpJob.csv", "csv"))
	assert.Equal(t, "EmpJob_enriched.xlsx", ExportName("upload/EmpJob.xlsx", "xlsx"))
	assert.Equal(t, "EmpJob_enriched.csv", ExportName("EmpJob", "csv"))
}

func TestZipFiles(t *testing.T) {
	data, err := ZipFiles([]ExportFile{
		{Name: "a_enriched.csv", Data: []byte("one")},
		{Name: "b_enriched.csv", Data: []byte("two")},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	// порядок сохраняется
	assert.Equal(t, "a_enriched.csv", zr.File[0].Name)
	assert.Equal(t, "b_enriched.csv", zr.File[1].Name)
}
