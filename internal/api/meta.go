package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"beresta/internal/dict"
	"beresta/internal/enrich"
)

// ===== META HANDLERS =====

type metaEntityListItem struct {
	Name       string `json:"name"`
	Properties int    `json:"properties"`
}

// GET /api/meta/entities
func MetaEntitiesHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		lp := parseListParams(c.Request.URL.Query())

		entities := storage.Dictionary()
		out := make([]metaEntityListItem, 0, len(entities))
		for _, e := range entities {
			if !matchQ(e.Name, lp.Q) {
				continue
			}
			out = append(out, metaEntityListItem{Name: e.Name, Properties: len(e.Properties)})
		}
		c.Header("X-Total-Count", strconv.Itoa(len(out)))
		c.JSON(http.StatusOK, pageSlice(out, lp))
	}
}

type metaProperty struct {
	Name         string `json:"name"`
	Key          string `json:"key"` // нормализованный ключ матчинга
	RawType      string `json:"raw_type"`
	FriendlyType string `json:"type"`
	Required     string `json:"required,omitempty"`
	MaxLength    string `json:"max_length,omitempty"`
	Label        string `json:"label,omitempty"`
}

// GET /api/meta/entities/:name
func MetaEntityHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		canonical, ok := storage.EntityByName(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}

		var entity *dict.Entity
		for _, e := range storage.Dictionary() {
			if e.Name == canonical {
				entity = e
				break
			}
		}
		if entity == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}

		props := make([]metaProperty, 0, len(entity.Properties))
		for _, p := range entity.Properties {
			props = append(props, metaProperty{
				Name:         p.Name,
				Key:          dict.NormalizeKey(p.Name),
				RawType:      p.Type,
				FriendlyType: enrich.FriendlyType(p.Type),
				Required:     p.Required,
				MaxLength:    p.MaxLength,
				Label:        p.Label,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"name":       entity.Name,
			"properties": props,
		})
	}
}

type metaPicklistItem struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
}

// GET /api/meta/picklists
func MetaPicklistsHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		lp := parseListParams(c.Request.URL.Query())
		cat := storage.Catalog()

		out := make([]metaPicklistItem, 0, len(cat.Names))
		for _, name := range cat.Names {
			if !matchQ(name, lp.Q) {
				continue
			}
			out = append(out, metaPicklistItem{Name: name, Items: len(cat.Tables[name])})
		}
		c.Header("X-Total-Count", strconv.Itoa(len(out)))
		c.JSON(http.StatusOK, pageSlice(out, lp))
	}
}

// GET /api/meta/picklists/:name
func MetaPicklistHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		cat := storage.Catalog()

		items, ok := cat.Tables[name]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Picklist table not found"})
			return
		}

		// колонки, привязанные к этой таблице
		var columns []string
		for key, table := range cat.Columns {
			if table == name {
				columns = append(columns, key)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"name":    name,
			"items":   items,
			"columns": columns,
		})
	}
}
