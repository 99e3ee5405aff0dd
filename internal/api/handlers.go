package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"beresta/internal/enrich"
	"beresta/internal/template"
)

// GET /api/settings
func SettingsGetHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		country, skip := storage.Settings()
		c.JSON(http.StatusOK, gin.H{
			"country":        country,
			"skip_operation": skip,
		})
	}
}

// PUT /api/settings
func SettingsPutHandler(storage *Storage) gin.HandlerFunc {
	type req struct {
		Country       string `json:"country"`
		SkipOperation bool   `json:"skip_operation"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		country := strings.ToUpper(strings.TrimSpace(body.Country))
		if errs := ValidateCountry(country); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		storage.SetSettings(country, body.SkipOperation)
		c.JSON(http.StatusOK, gin.H{
			"country":        country,
			"skip_operation": body.SkipOperation,
		})
	}
}

// POST /api/enrich — прогон всех шаблонов, результат в JSON.
func EnrichHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := storage.EnrichAll()
		c.JSON(http.StatusOK, gin.H{
			"row_labels": enrich.RowLabels,
			"results":    results,
		})
	}
}

// renderEnriched — байты выгрузки одного шаблона в выбранном формате.
func renderEnriched(e *enrich.Enriched, format string) (name string, data []byte, err error) {
	rows := e.Rows()
	switch format {
	case "xlsx":
		data, err = template.WriteXLSX(enrich.RowLabels[:], rows[:])
		return template.ExportName(e.Name, "xlsx"), data, err
	default:
		data, err = template.WriteCSV(enrich.RowLabels[:], rows[:])
		return template.ExportName(e.Name, "csv"), data, err
	}
}

func exportFormat(c *gin.Context) (string, bool) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []FieldError{ferr(ErrBadInput, "format", "format must be csv or xlsx")},
		})
		return "", false
	}
	return format, true
}

// GET /api/export?format=csv|xlsx — zip со всеми выгрузками,
// порядок файлов = порядок загрузки шаблонов.
func ExportAllHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		format, ok := exportFormat(c)
		if !ok {
			return
		}

		results := storage.EnrichAll()
		if len(results) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no templates uploaded"})
			return
		}

		files := make([]template.ExportFile, 0, len(results))
		for _, e := range results {
			name, data, err := renderEnriched(e, format)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "render error", "details": err.Error()})
				return
			}
			files = append(files, template.ExportFile{Name: name, Data: data})
		}

		archive, err := template.ZipFiles(files)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "zip error", "details": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="templates_enriched.zip"`)
		c.Data(http.StatusOK, "application/zip", archive)
	}
}

// GET /api/export/:id?format=csv|xlsx — выгрузка одного шаблона.
func ExportOneHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		format, ok := exportFormat(c)
		if !ok {
			return
		}
		rec, found := storage.TemplateByID(c.Param("id"))
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}

		name, data, err := renderEnriched(storage.EnrichOne(rec), format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "render error", "details": err.Error()})
			return
		}

		mime := "text/csv; charset=utf-8"
		if format == "xlsx" {
			mime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, mime, data)
	}
}
