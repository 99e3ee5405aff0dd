package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beresta/internal/reference"
)

const sampleEDMX = `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx xmlns:edmx="http://schemas.microsoft.com/ado/2007/06/edmx" xmlns:sap="http://www.successfactors.com/edm/sap">
  <Schema xmlns="http://schemas.microsoft.com/ado/2008/09/edm">
    <EntityType Name="EmpJob">
      <Property Name="userId" Type="Edm.String" MaxLength="100" sap:required="true" sap:label="User ID"/>
      <Property Name="jobCode" Type="Edm.String" MaxLength="32" sap:label="Job Code"/>
      <Property Name="gender" Type="SFOData.GenderEnum" sap:label="Gender"/>
      <Property Name="startDate" Type="Edm.DateTime" sap:required="true" sap:label="Start Date"/>
    </EntityType>
    <EntityType Name="EmpCompensation">
      <Property Name="userId" Type="Edm.String" MaxLength="100" sap:required="true"/>
      <Property Name="payGroup" Type="Edm.String" MaxLength="32" sap:label="Pay Group"/>
    </EntityType>
  </Schema>
</edmx:Edmx>`

const sampleTemplateCSV = "userId,jobCode,gender,Operation\r\n" +
	"User,Job,Gender,Op\r\n" +
	"1001,J1,Male,insert\r\n" +
	"1002,J2,Female,insert\r\n"

func newTestServer(t *testing.T) (*gin.Engine, *Storage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	storage := NewStorage()
	storage.Blob = &LocalBlobStore{Root: t.TempDir()}
	storage.ConfigDir = t.TempDir()
	return NewRouter(storage), storage
}

func multipartFiles(t *testing.T, field string, files map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(r *gin.Engine, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	return do(r, method, path, strings.NewReader(body), "application/json")
}

func uploadDictionary(t *testing.T, r *gin.Engine) {
	t.Helper()
	body, ct := multipartFiles(t, "file", map[string]string{"metadata.xml": sampleEDMX})
	w := do(r, http.MethodPost, "/api/dictionary", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func uploadTemplate(t *testing.T, r *gin.Engine, name, content string) string {
	t.Helper()
	body, ct := multipartFiles(t, "files", map[string]string{name: content})
	w := do(r, http.MethodPost, "/api/templates", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Accepted []struct {
			ID       string   `json:"id"`
			Warnings []string `json:"warnings"`
		} `json:"accepted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Accepted, 1)
	return resp.Accepted[0].ID
}

type enrichedOut struct {
	Name       string   `json:"name"`
	EntityType string   `json:"entity_type"`
	Headers    []string `json:"headers"`
	Labels     []string `json:"labels"`
	Types      []string `json:"types"`
	Mandatory  []string `json:"mandatory"`
	MaxLengths []string `json:"max_lengths"`
	Picklists  []string `json:"picklist_values"`
	Unmatched  []string `json:"unmatched"`
}

func runEnrich(t *testing.T, r *gin.Engine) []enrichedOut {
	t.Helper()
	w := do(r, http.MethodPost, "/api/enrich", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Results []enrichedOut `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Results
}

func TestUploadDictionaryAndMeta(t *testing.T) {
	r, _ := newTestServer(t)
	uploadDictionary(t, r)

	w := do(r, http.MethodGet, "/api/meta/entities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []struct {
		Name       string `json:"name"`
		Properties int    `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "EmpJob", list[0].Name)
	assert.Equal(t, 4, list[0].Properties)

	// имя сущности регистронезависимое
	w = do(r, http.MethodGet, "/api/meta/entities/empjob", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Name       string `json:"name"`
		Properties []struct {
			Name string `json:"name"`
			Key  string `json:"key"`
			Type string `json:"type"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "EmpJob", detail.Name)
	assert.Equal(t, "userid", detail.Properties[0].Key)
	assert.Equal(t, "picklist", detail.Properties[2].Type)

	w = do(r, http.MethodGet, "/api/meta/entities/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplateUploadAndEnrich(t *testing.T) {
	r, _ := newTestServer(t)
	uploadDictionary(t, r)

	body, ct := multipartFiles(t, "files", map[string]string{"EmpJob.csv": sampleTemplateCSV})
	w := do(r, http.MethodPost, "/api/templates", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Accepted []struct {
			Name     string   `json:"name"`
			Columns  int      `json:"columns"`
			DataRows int      `json:"data_rows"`
			Warnings []string `json:"warnings"`
		} `json:"accepted"`
		Rejected []any `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Accepted, 1)
	assert.Empty(t, resp.Rejected)
	assert.Equal(t, 4, resp.Accepted[0].Columns)
	assert.Equal(t, 2, resp.Accepted[0].DataRows)
	// колонка Operation есть — предупреждаем про подтверждение пропуска
	require.Len(t, resp.Accepted[0].Warnings, 1)
	assert.Contains(t, resp.Accepted[0].Warnings[0], "Operation")

	results := runEnrich(t, r)
	require.Len(t, results, 1)
	got := results[0]

	assert.Equal(t, "EmpJob", got.EntityType)
	assert.Equal(t, []string{"User ID", "Job Code", "Gender", "Operation"}, got.Labels)
	assert.Equal(t, []string{"string", "picklist", "picklist", ""}, got.Types)
	assert.Equal(t, []string{"true", "false", "false", ""}, got.Mandatory)
	assert.Equal(t, []string{"100", "32", "", ""}, got.MaxLengths)
	assert.Equal(t, []string{"", "J1, J2", "Male, Female", ""}, got.Picklists)
	assert.Equal(t, []string{"Operation"}, got.Unmatched)

	// после подтверждения пропуска Operation уходит из Unmatched
	w = doJSON(r, http.MethodPut, "/api/settings", `{"country":"","skip_operation":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	got = runEnrich(t, r)[0]
	assert.Empty(t, got.Unmatched)
	assert.Equal(t, "string", got.Types[3])
	assert.Equal(t, "false", got.Mandatory[3])
}

func TestTemplateDelete(t *testing.T) {
	r, storage := newTestServer(t)
	uploadDictionary(t, r)
	id := uploadTemplate(t, r, "EmpJob.csv", sampleTemplateCSV)

	w := do(r, http.MethodDelete, "/api/templates/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, storage.Templates())

	w = do(r, http.MethodDelete, "/api/templates/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsValidation(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(r, http.MethodPut, "/api/settings", `{"country":"GB"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// код приводится к верхнему регистру
	w = doJSON(r, http.MethodPut, "/api/settings", `{"country":"gbr"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/settings", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Country       string `json:"country"`
		SkipOperation bool   `json:"skip_operation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "GBR", got.Country)
}

type gridRow struct {
	Key        string   `json:"key"`
	Headers    []string `json:"headers"`
	Type       string   `json:"type"`
	Mandatory  bool     `json:"mandatory"`
	Table      string   `json:"table"`
	RefValues  string   `json:"reference_values"`
	DataValues string   `json:"data_values"`
	Final      string   `json:"final_values"`
	Warnings   []string `json:"warnings"`
}

func fetchGrid(t *testing.T, r *gin.Engine) []gridRow {
	t.Helper()
	w := do(r, http.MethodGet, "/api/assignments", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var grid []gridRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grid))
	return grid
}

func TestAssignmentsGridAndOverride(t *testing.T) {
	r, _ := newTestServer(t)
	uploadDictionary(t, r)
	uploadTemplate(t, r, "EmpJob.csv", sampleTemplateCSV)

	grid := fetchGrid(t, r)

	// identity и Operation в грид не попадают, порядок = первое появление
	require.Len(t, grid, 2)
	assert.Equal(t, "jobcode", grid[0].Key)
	assert.Equal(t, "gender", grid[1].Key)
	assert.Equal(t, "Male, Female", grid[1].DataValues)
	// без таблицы справочника Final Values предзаполняются данными шаблона
	assert.Equal(t, "J1, J2", grid[0].Final)
	assert.Equal(t, "Male, Female", grid[1].Final)
	assert.False(t, grid[0].Mandatory)
	assert.Empty(t, grid[0].Warnings)

	// ненормализованный ключ отбивается
	w := doJSON(r, http.MethodPut, "/api/assignments", `{"Job Code":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// назначение перебивает значения из данных, дословно
	w = doJSON(r, http.MethodPut, "/api/assignments", `{"gender":"Male, Female, Unknown"}`)
	require.Equal(t, http.StatusOK, w.Code)

	got := runEnrich(t, r)[0]
	assert.Equal(t, "Male, Female, Unknown", got.Picklists[2])

	// пустое значение снимает назначение
	w = doJSON(r, http.MethodPut, "/api/assignments", `{"gender":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	got = runEnrich(t, r)[0]
	assert.Equal(t, "Male, Female", got.Picklists[2])
}

func TestAssignmentsMandatoryAndWarnings(t *testing.T) {
	const edmx = `<?xml version="1.0"?>
<edmx:Edmx xmlns:edmx="http://schemas.microsoft.com/ado/2007/06/edmx" xmlns:sap="http://www.successfactors.com/edm/sap">
  <Schema xmlns="http://schemas.microsoft.com/ado/2008/09/edm">
    <EntityType Name="EmpInfo">
      <Property Name="userId" Type="Edm.String" MaxLength="100" sap:required="true"/>
      <Property Name="gender" Type="SFOData.GenderEnum" sap:required="true" sap:label="Gender"/>
    </EntityType>
  </Schema>
</edmx:Edmx>`

	r, storage := newTestServer(t)
	body, ct := multipartFiles(t, "file", map[string]string{"metadata.xml": edmx})
	w := do(r, http.MethodPost, "/api/dictionary", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// шаблон без строк данных: обязательному пиклисту значения взять неоткуда
	uploadTemplate(t, r, "EmpInfo.csv", "userId,gender\r\nUser,Gender\r\n")

	grid := fetchGrid(t, r)
	require.Len(t, grid, 1)
	assert.Equal(t, "gender", grid[0].Key)
	assert.Equal(t, "picklist", grid[0].Type)
	assert.True(t, grid[0].Mandatory)
	assert.Empty(t, grid[0].Final)
	require.Len(t, grid[0].Warnings, 1)
	assert.Contains(t, grid[0].Warnings[0], "no values")

	// единственное значение — отдельное предупреждение
	w = doJSON(r, http.MethodPut, "/api/assignments", `{"gender":"Male"}`)
	require.Equal(t, http.StatusOK, w.Code)
	grid = fetchGrid(t, r)
	assert.Equal(t, "Male", grid[0].Final)
	require.Len(t, grid[0].Warnings, 1)
	assert.Contains(t, grid[0].Warnings[0], "single value")

	// привязанная таблица предзаполняет Final Values полными подписями
	cat := reference.NewCatalog()
	cat.AddTable("Gender", []reference.Item{{Code: "M", Label: "Ref Male"}, {Code: "F", Label: "Ref Female"}})
	cat.MapColumn("gender", "Gender")
	storage.ReplaceCatalog(cat, []string{"workbook.xlsx"})

	w = doJSON(r, http.MethodPut, "/api/assignments", `{"gender":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	grid = fetchGrid(t, r)
	assert.Equal(t, "Gender", grid[0].Table)
	assert.Equal(t, "Ref Male, Ref Female", grid[0].RefValues)
	assert.Equal(t, "Ref Male, Ref Female", grid[0].Final)
	assert.Empty(t, grid[0].Warnings)
}

func TestAssignmentsEntityContext(t *testing.T) {
	// тип колонки берём из лучшей сущности шаблона, а не из первой попавшейся
	// в документе: в AaaControl status — дата, в EmpGlobal — пиклист
	const edmx = `<?xml version="1.0"?>
<edmx:Edmx xmlns:edmx="http://schemas.microsoft.com/ado/2007/06/edmx" xmlns:sap="http://www.successfactors.com/edm/sap">
  <Schema xmlns="http://schemas.microsoft.com/ado/2008/09/edm">
    <EntityType Name="AaaControl">
      <Property Name="status" Type="Edm.DateTime"/>
    </EntityType>
    <EntityType Name="EmpGlobal">
      <Property Name="userId" Type="Edm.String" MaxLength="100" sap:required="true"/>
      <Property Name="status" Type="SFOData.EmployeeStatus" sap:required="true" sap:label="Status"/>
      <Property Name="startDate" Type="Edm.DateTime"/>
    </EntityType>
  </Schema>
</edmx:Edmx>`

	r, _ := newTestServer(t)
	body, ct := multipartFiles(t, "file", map[string]string{"metadata.xml": edmx})
	w := do(r, http.MethodPost, "/api/dictionary", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	uploadTemplate(t, r, "EmpGlobal.csv",
		"userId,status,startDate\r\nUser,Status,Start\r\n1001,Active,2020-01-01\r\n")

	grid := fetchGrid(t, r)
	require.Len(t, grid, 1)
	assert.Equal(t, "status", grid[0].Key)
	assert.Equal(t, "picklist", grid[0].Type)
	assert.True(t, grid[0].Mandatory)
	assert.Equal(t, "Active", grid[0].Final)
	require.Len(t, grid[0].Warnings, 1)
	assert.Contains(t, grid[0].Warnings[0], "single value")
}

func TestReferenceUpload(t *testing.T) {
	r, _ := newTestServer(t)
	uploadDictionary(t, r)
	uploadTemplate(t, r, "EmpJob.csv", sampleTemplateCSV)

	// CSV-справочник: имя таблицы = имя файла; привяжем колонку вручную
	body, ct := multipartFiles(t, "files", map[string]string{
		"Gender.csv": "code,label\nM,Ref Male\nF,Ref Female\n",
		"broken.pdf": "not a reference",
	})
	w := do(r, http.MethodPost, "/api/references", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Loaded  []string `json:"loaded"`
		Skipped []struct {
			File string `json:"file"`
		} `json:"skipped"`
		Tables int `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Gender.csv"}, resp.Loaded)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "broken.pdf", resp.Skipped[0].File)
	assert.Equal(t, 1, resp.Tables)

	w = do(r, http.MethodGet, "/api/meta/picklists", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tables []struct {
		Name  string `json:"name"`
		Items int    `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	require.Len(t, tables, 1)
	assert.Equal(t, "Gender", tables[0].Name)
	assert.Equal(t, 2, tables[0].Items)
}

func TestExport(t *testing.T) {
	r, _ := newTestServer(t)
	uploadDictionary(t, r)
	id := uploadTemplate(t, r, "EmpJob.csv", sampleTemplateCSV)

	// одиночный CSV: BOM, шесть строк, подпись строки в первой колонке
	w := do(r, http.MethodGet, "/api/export/"+id+"?format=csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "EmpJob_enriched.csv")
	data := w.Body.Bytes()
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimRight(string(data[3:]), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Column Name,"))
	assert.True(t, strings.HasPrefix(lines[5], "Picklist Values,"))

	// общий zip
	w = do(r, http.MethodGet, "/api/export?format=xlsx", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))

	// неизвестный формат
	w = do(r, http.MethodGet, "/api/export?format=pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// пустое состояние
	r2, _ := newTestServer(t)
	w = do(r2, http.MethodGet, "/api/export", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	r, _ := newTestServer(t)
	uploadDictionary(t, r)
	uploadTemplate(t, r, "EmpJob.csv", sampleTemplateCSV)

	w := doJSON(r, http.MethodPut, "/api/settings", `{"country":"GBR","skip_operation":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPut, "/api/assignments", `{"gender":"Male, Female"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/configs/uk-rollout/save", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// меняем всё и возвращаем из снапшота
	w = doJSON(r, http.MethodPut, "/api/settings", `{"country":"DEU","skip_operation":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPut, "/api/assignments", `{"gender":""}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/configs/uk-rollout/load", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/api/settings", nil, "")
	var got struct {
		Country       string `json:"country"`
		SkipOperation bool   `json:"skip_operation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "GBR", got.Country)
	assert.True(t, got.SkipOperation)

	w = do(r, http.MethodGet, "/api/configs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Equal(t, []string{"uk-rollout"}, names)

	w = do(r, http.MethodPost, "/api/configs/missing/load", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodPost, "/api/configs/bad,name/save", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDictLint(t *testing.T) {
	r, _ := newTestServer(t)

	const dirty = `<?xml version="1.0"?>
<edmx:Edmx xmlns:edmx="http://schemas.microsoft.com/ado/2007/06/edmx" xmlns:sap="http://www.successfactors.com/edm/sap">
  <Schema xmlns="http://schemas.microsoft.com/ado/2008/09/edm">
    <EntityType Name="EmpJob">
      <Property Name="user_id" Type="Edm.String"/>
      <Property Name="userId" Type="Edm.String"/>
      <Property Name="payload" Type="Edm.Stream"/>
    </EntityType>
  </Schema>
</edmx:Edmx>`

	body, ct := multipartFiles(t, "file", map[string]string{"metadata.xml": dirty})
	w := do(r, http.MethodPost, "/api/dictionary", body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/dictionary/lint", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Issues []SchemaIssue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Issues, 2)
	assert.Equal(t, "duplicate_key", resp.Issues[0].Code)
	assert.Equal(t, "userId", resp.Issues[0].Field)
	assert.Equal(t, "unknown_type", resp.Issues[1].Code)
}

func TestUploadDictionaryBadXML(t *testing.T) {
	r, _ := newTestServer(t)
	body, ct := multipartFiles(t, "file", map[string]string{"metadata.xml": "<EntityType><unclosed>"})
	w := do(r, http.MethodPost, "/api/dictionary", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
