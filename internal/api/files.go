package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"beresta/internal/dict"
	"beresta/internal/enrich"
	"beresta/internal/template"
)

// POST /api/dictionary — multipart, поле "file" с xml-словарём схемы.
func UploadDictionaryHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart file not found (field name 'file')"})
			return
		}

		name, data, _, _, _, err := storage.readUpload(fh)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store error", "details": err.Error()})
			return
		}

		entities, err := dict.ParseMetadata(bytes.NewReader(data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrBadFile, "file", err.Error())},
			})
			return
		}

		storage.SetDictionary(entities, name)

		props := 0
		for _, e := range entities {
			props += len(e.Properties)
		}
		c.JSON(http.StatusOK, gin.H{
			"file":       name,
			"entities":   len(entities),
			"properties": props,
			"issues":     storage.DictLint(),
		})
	}
}

// GET /api/dictionary/lint
func LintHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"issues": storage.DictLint()})
	}
}

// POST /api/references — multipart, поле "files" (можно несколько).
// Битые файлы пропускаем, но перечисляем в ответе.
func UploadReferencesHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart files not found (field name 'files')"})
			return
		}

		var loaded []string
		var skipped []gin.H
		for _, fh := range form.File["files"] {
			name, data, _, _, _, err := storage.readUpload(fh)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "store error", "details": err.Error()})
				return
			}
			if err := storage.MergeReference(name, data); err != nil {
				skipped = append(skipped, gin.H{"file": name, "error": err.Error()})
				continue
			}
			loaded = append(loaded, name)
		}

		cat := storage.Catalog()
		c.JSON(http.StatusOK, gin.H{
			"loaded":  loaded,
			"skipped": skipped,
			"tables":  len(cat.Names),
			"columns": len(cat.Columns),
		})
	}
}

// POST /api/templates — multipart, поле "files" (можно несколько).
func UploadTemplatesHandler(storage *Storage) gin.HandlerFunc {
	type row struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Columns  int      `json:"columns"`
		DataRows int      `json:"data_rows"`
		Warnings []string `json:"warnings,omitempty"`
	}
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart files not found (field name 'files')"})
			return
		}

		var accepted []row
		var rejected []gin.H
		for _, fh := range form.File["files"] {
			name, data, key, size, hash, err := storage.readUpload(fh)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "store error", "details": err.Error()})
				return
			}

			grid, err := template.ReadGrid(name, data)
			if err != nil {
				rejected = append(rejected, gin.H{"file": name, "error": err.Error()})
				continue
			}
			tpl, err := enrich.NewTemplate(name, grid)
			if err != nil {
				rejected = append(rejected, gin.H{"file": name, "error": err.Error()})
				continue
			}

			rec := &TemplateRecord{
				Template:   tpl,
				StorageKey: key,
				Size:       size,
				Hash:       hash,
				Warnings:   TemplateWarnings(tpl),
			}
			id := storage.AddTemplate(rec)
			accepted = append(accepted, row{
				ID:       id,
				Name:     tpl.Name,
				Columns:  len(tpl.Headers),
				DataRows: len(tpl.DataRows),
				Warnings: rec.Warnings,
			})
		}

		c.JSON(http.StatusOK, gin.H{"accepted": accepted, "rejected": rejected})
	}
}

// GET /api/templates
func TemplateListHandler(storage *Storage) gin.HandlerFunc {
	type row struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Columns    int      `json:"columns"`
		DataRows   int      `json:"data_rows"`
		UploadedAt string   `json:"uploaded_at"`
		Warnings   []string `json:"warnings,omitempty"`
	}
	return func(c *gin.Context) {
		recs := storage.Templates()
		out := make([]row, 0, len(recs))
		for _, rec := range recs {
			out = append(out, row{
				ID:         rec.ID,
				Name:       rec.Template.Name,
				Columns:    len(rec.Template.Headers),
				DataRows:   len(rec.Template.DataRows),
				UploadedAt: rec.UploadedAt.Format("2006-01-02T15:04:05Z"),
				Warnings:   rec.Warnings,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// DELETE /api/templates/:id
func TemplateDeleteHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := storage.RemoveTemplate(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		if key != "" && storage.Blob != nil {
			_ = storage.Blob.Delete(key)
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /api/templates/:id/original — исходный файл как загрузили.
func DownloadOriginalHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := storage.TemplateByID(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		if storage.Blob == nil || rec.StorageKey == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "original not stored"})
			return
		}
		p, _ := storage.Blob.Path(rec.StorageKey)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rec.Template.Name))
		c.Header("Content-Type", "application/octet-stream")
		c.File(p)
	}
}
