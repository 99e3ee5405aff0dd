package enrich

import "beresta/internal/dict"

// Transform строит обогащённый шаблон: подбирает тип сущности и для каждого
// заголовка по порядку заполняет шесть строк. Чистая функция — индексы и
// каталог только читаются, шаблон не меняется, ошибок не бывает: колонка без
// метаданных остаётся пустой и попадает в Unmatched.
func Transform(t *Template, global dict.GlobalIndex, byEntity dict.EntityIndex, opts Options) *Enriched {
	best := FindBestEntityType(t.Headers, byEntity, opts.Country)
	var entityProps map[string]*dict.PropertyEntry
	if best != "" {
		entityProps = byEntity[best]
	}

	n := len(t.Headers)
	out := &Enriched{
		Name:       t.Name,
		EntityType: best,
		Headers:    append([]string(nil), t.Headers...),
		Labels:     make([]string, 0, n),
		Types:      make([]string, 0, n),
		Mandatory:  make([]string, 0, n),
		MaxLengths: make([]string, 0, n),
		Picklists:  make([]string, 0, n),
	}

	for i, header := range t.Headers {
		key := dict.NormalizeKey(header)

		// identity-колонки: единые метаданные независимо от словаря
		if label, ok := IdentityLabels[key]; ok {
			out.append(label, "string", "true", "100", "")
			continue
		}

		// колонка Operation при подтверждённом пропуске
		if key == OperationKey && opts.SkipOperation {
			out.append("Operation", "string", "false", "", "")
			continue
		}

		meta := LookupProperty(header, entityProps, global)
		if meta == nil {
			// нет метаданных: подпись = заголовок, остальное пусто
			out.Unmatched = append(out.Unmatched, header)
			out.append(header, "", "", "", "")
			continue
		}

		label := meta.Label
		if label == "" {
			label = header
		}

		typ := FriendlyType(meta.Type)
		// апгрейд string -> picklist по имени колонки, чтобы строки Type и
		// Picklist Values всегда были согласованы
		if typ == "string" && IsPicklistColumn(key, "string") {
			typ = TypePicklist
		}

		var mandatory string
		if IsDurationColumn(key) {
			// длительности mandatory только при явном required в словаре
			if meta.Required == "true" {
				mandatory = "true"
			} else {
				mandatory = "false"
			}
		} else if meta.Required != "" {
			mandatory = meta.Required
		} else {
			mandatory = "false"
		}

		maxLen := meta.MaxLength
		if typ == "date" || typ == "time" {
			maxLen = "10"
		}

		picklist := ""
		if IsPicklistColumn(key, typ) {
			picklist = ResolvePicklistValues(key, i, t.DataRows, opts)
		}

		out.append(label, typ, mandatory, maxLen, picklist)
	}

	return out
}

func (e *Enriched) append(label, typ, mandatory, maxLen, picklist string) {
	e.Labels = append(e.Labels, label)
	e.Types = append(e.Types, typ)
	e.Mandatory = append(e.Mandatory, mandatory)
	e.MaxLengths = append(e.MaxLengths, maxLen)
	e.Picklists = append(e.Picklists, picklist)
}

// HasIdentityColumn — есть ли в шаблоне хоть одна identity-колонка.
// Шаблон без неё валиден, но заслуживает предупреждения.
func (t *Template) HasIdentityColumn() bool {
	for _, h := range t.Headers {
		if _, ok := IdentityLabels[dict.NormalizeKey(h)]; ok {
			return true
		}
	}
	return false
}

// HasOperationColumn — есть ли колонка Operation (для подтверждения пропуска).
func (t *Template) HasOperationColumn() bool {
	for _, h := range t.Headers {
		if dict.NormalizeKey(h) == OperationKey {
			return true
		}
	}
	return false
}
