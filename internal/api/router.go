// api/router.go
package api

import (
	"github.com/gin-gonic/gin"
)

func NewRouter(storage *Storage) *gin.Engine {
	r := gin.Default()

	apiGroup := r.Group("/api")
	{
		// словарь схемы
		apiGroup.POST("/dictionary", UploadDictionaryHandler(storage))
		apiGroup.GET("/dictionary/lint", LintHandler(storage))
		apiGroup.GET("/meta/entities", MetaEntitiesHandler(storage))
		apiGroup.GET("/meta/entities/:name", MetaEntityHandler(storage))

		// справочники
		apiGroup.POST("/references", UploadReferencesHandler(storage))
		apiGroup.GET("/meta/picklists", MetaPicklistsHandler(storage))
		apiGroup.GET("/meta/picklists/:name", MetaPicklistHandler(storage))

		// шаблоны
		apiGroup.POST("/templates", UploadTemplatesHandler(storage))
		apiGroup.GET("/templates", TemplateListHandler(storage))
		apiGroup.DELETE("/templates/:id", TemplateDeleteHandler(storage))
		apiGroup.GET("/templates/:id/original", DownloadOriginalHandler(storage))

		// настройки и назначения пиклистов
		apiGroup.GET("/settings", SettingsGetHandler(storage))
		apiGroup.PUT("/settings", SettingsPutHandler(storage))
		apiGroup.GET("/assignments", AssignmentsHandler(storage))
		apiGroup.PUT("/assignments", AssignmentsPutHandler(storage))

		// обогащение и выгрузка
		apiGroup.POST("/enrich", EnrichHandler(storage))
		apiGroup.GET("/export", ExportAllHandler(storage))
		apiGroup.GET("/export/:id", ExportOneHandler(storage))

		// сохранённые конфигурации
		apiGroup.GET("/configs", ConfigListHandler(storage))
		apiGroup.POST("/configs/:name/save", ConfigSaveHandler(storage))
		apiGroup.POST("/configs/:name/load", ConfigLoadHandler(storage))

		// админ
		apiGroup.POST("/admin/reload", AdminReloadHandler(storage))
	}

	return r
}

func RunServer(addr string, storage *Storage) {
	_ = NewRouter(storage).Run(addr)
}
