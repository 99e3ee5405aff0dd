package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"beresta/internal/dict"
	"beresta/internal/enrich"
)

// Превью подписей справочной таблицы в гриде. Полный список — в выгрузке.
const maxRefPreview = 5

type assignmentRow struct {
	Key             string   `json:"key"`
	Headers         []string `json:"headers"` // исходные написания по шаблонам
	Type            string   `json:"type"`
	Mandatory       bool     `json:"mandatory"`                  // required по словарю хотя бы в одном шаблоне
	Table           string   `json:"table,omitempty"`            // привязанная таблица справочника
	ReferenceValues string   `json:"reference_values,omitempty"` // превью подписей
	DataValues      string   `json:"data_values,omitempty"`      // превью из данных шаблонов
	FinalValues     string   `json:"final_values,omitempty"`     // что уйдёт в выгрузку
	Warnings        []string `json:"warnings,omitempty"`
}

// AssignmentCandidates строит грид назначений: все пиклистовые колонки всех
// шаблонов, схлопнутые по нормализованному ключу, в порядке первого появления.
// Identity и Operation в грид не попадают. Тип и mandatory считаем в контексте
// лучшей сущности каждого шаблона — как при обогащении.
func (s *Storage) AssignmentCandidates() []assignmentRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	templates := make([]*enrich.Template, 0, len(s.templates))
	for _, rec := range s.templates {
		templates = append(templates, rec.Template)
	}

	var order []string
	byKey := make(map[string]*assignmentRow)

	for _, t := range templates {
		var entityProps map[string]*dict.PropertyEntry
		if best := enrich.FindBestEntityType(t.Headers, s.byEntity, s.country); best != "" {
			entityProps = s.byEntity[best]
		}

		for _, header := range t.Headers {
			key := dict.NormalizeKey(header)
			if _, identity := enrich.IdentityLabels[key]; identity || key == enrich.OperationKey {
				continue
			}

			typ := "string"
			mandatory := false
			if meta := enrich.LookupProperty(header, entityProps, s.global); meta != nil {
				typ = enrich.FriendlyType(meta.Type)
				mandatory = meta.Required == "true"
			}
			if !enrich.IsPicklistColumn(key, typ) {
				continue
			}
			if typ == "string" {
				typ = enrich.TypePicklist
			}

			row, seen := byKey[key]
			if !seen {
				row = &assignmentRow{Key: key, Type: typ}
				byKey[key] = row
				order = append(order, key)
			}
			if mandatory {
				row.Mandatory = true
			}
			dup := false
			for _, h := range row.Headers {
				if h == header {
					dup = true
					break
				}
			}
			if !dup {
				row.Headers = append(row.Headers, header)
			}
		}
	}

	for _, key := range order {
		row := byKey[key]
		if table, ok := s.catalog.Columns[key]; ok {
			row.Table = table
			labels := s.catalog.Labels(table)
			if len(labels) > maxRefPreview {
				row.ReferenceValues = strings.Join(labels[:maxRefPreview], ", ") + ", ..."
			} else {
				row.ReferenceValues = strings.Join(labels, ", ")
			}
		}
		row.DataValues = enrich.GatherTemplateDataValues(key, templates)

		// Final Values предзаполняем: полные подписи привязанной таблицы,
		// иначе данные шаблонов; сохранённое назначение перебивает оба.
		finals := ""
		if row.Table != "" {
			finals = strings.Join(s.catalog.Labels(row.Table), ", ")
		}
		if finals == "" {
			finals = row.DataValues
		}
		if v, ok := s.overrides[key]; ok {
			finals = v
		}
		row.FinalValues = finals
		row.Warnings = picklistRowWarnings(row.Mandatory, finals)
	}

	out := make([]assignmentRow, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

// GET /api/assignments
func AssignmentsHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, storage.AssignmentCandidates())
	}
}

// PUT /api/assignments — тело {key: "values, ..."}; пустое значение снимает
// назначение. Значение пишется в выгрузку дословно.
func AssignmentsPutHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		if errs := ValidateAssignments(body); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		for key, values := range body {
			storage.SetOverride(key, strings.TrimSpace(values))
		}
		c.JSON(http.StatusOK, gin.H{"assignments": storage.Overrides()})
	}
}
