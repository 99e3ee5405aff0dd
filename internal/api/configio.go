package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"beresta/internal/config"
	"beresta/internal/pg"
)

var configNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func validConfigName(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && configNameRe.MatchString(name)
}

func (s *Storage) snapshotPath(name string) string {
	return filepath.Join(s.ConfigDir, name+".json")
}

// POST /api/configs/:name/save — снапшот текущего состояния.
// С базой пишем туда, без базы — JSON-файлом.
func ConfigSaveHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if !validConfigName(name) {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrBadInput, "name", "letters, digits, dot, dash, underscore only")},
			})
			return
		}

		snap := storage.Snapshot()
		if storage.Configs != nil {
			if err := storage.Configs.Save(c.Request.Context(), name, snap); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "save error", "details": err.Error()})
				return
			}
		} else {
			if err := os.MkdirAll(storage.ConfigDir, 0o755); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "save error", "details": err.Error()})
				return
			}
			if err := config.SaveSnapshot(storage.snapshotPath(name), snap); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "save error", "details": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"name": name, "snapshot": snap})
	}
}

// POST /api/configs/:name/load — применить сохранённый снапшот.
// files_used в снапшоте информационный: файлы пользователь загружает сам.
func ConfigLoadHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if !validConfigName(name) {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrBadInput, "name", "letters, digits, dot, dash, underscore only")},
			})
			return
		}

		var (
			snap *config.Snapshot
			err  error
		)
		if storage.Configs != nil {
			snap, err = storage.Configs.Load(c.Request.Context(), name)
			if errors.Is(err, pg.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
				return
			}
		} else {
			snap, err = config.LoadSnapshot(storage.snapshotPath(name))
			if errors.Is(err, os.ErrNotExist) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
				return
			}
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "load error", "details": err.Error()})
			return
		}

		storage.ApplySnapshot(snap)
		c.JSON(http.StatusOK, gin.H{"name": name, "snapshot": snap})
	}
}

// GET /api/configs — имена сохранённых конфигураций.
func ConfigListHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storage.Configs != nil {
			names, err := storage.Configs.List(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "list error", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, names)
			return
		}

		entries, err := os.ReadDir(storage.ConfigDir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.JSON(http.StatusOK, []string{})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list error", "details": err.Error()})
			return
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
		sort.Strings(names)
		c.JSON(http.StatusOK, names)
	}
}
