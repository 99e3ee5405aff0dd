package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"beresta/internal/dict"
	"beresta/internal/reference"
)

type reloadReq struct {
	DictPath  string `json:"dict_path"`  // xml-словарь схемы
	EnumsRoot string `json:"enums_root"` // директория со справочниками enum
}

// POST /api/admin/reload — перечитать словарь и справочники с диска.
// Ничего не заменяем, пока оба источника не прочитались.
func AdminReloadHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reloadReq
		// пустое тело легально: ответим "nothing to reload" ниже
		if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}

		dictPath := strings.TrimSpace(req.DictPath)
		enumsRoot := strings.TrimSpace(req.EnumsRoot)
		if dictPath == "" && enumsRoot == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to reload: set dict_path and/or enums_root"})
			return
		}

		var entities []*dict.Entity
		if dictPath != "" {
			var err error
			entities, err = dict.LoadMetadataFile(dictPath)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "dictionary load error", "details": err.Error()})
				return
			}
		}

		var cat *reference.Catalog
		var skipped []string
		if enumsRoot != "" {
			cat = reference.NewCatalog()
			var err error
			skipped, err = reference.LoadEnumCatalog(enumsRoot, cat)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "enum load error", "details": err.Error()})
				return
			}
		}

		// оба источника прочитаны — заменяем
		if entities != nil {
			storage.SetDictionary(entities, filepath.Base(dictPath))
		}
		if cat != nil {
			storage.ReplaceCatalog(cat, []string{enumsRoot})
		}

		resp := gin.H{"ok": true}
		if entities != nil {
			resp["entities"] = len(entities)
			resp["issues"] = storage.DictLint()
		}
		if cat != nil {
			resp["tables"] = len(cat.Names)
			resp["skipped"] = skipped
		}
		c.JSON(http.StatusOK, resp)
	}
}
