package reference

import "beresta/internal/dict"

// Item — пара код/подпись одного значения пиклиста.
type Item struct {
	Code  string `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"name"`
}

// Catalog — накопленный результат разбора всех справочных источников:
// именованные таблицы код/подпись плюс автопривязка колонок к таблицам.
// После загрузки каталог только читается.
type Catalog struct {
	Tables  map[string][]Item // имя таблицы -> значения в порядке источника
	Names   []string          // имена таблиц в порядке первого появления
	Columns map[string]string // нормализованный ключ колонки -> имя таблицы
}

func NewCatalog() *Catalog {
	return &Catalog{
		Tables:  make(map[string][]Item),
		Columns: make(map[string]string),
	}
}

// AddTable вливает таблицу в каталог. Таблицы с одним именем объединяются
// по кодам: первый увиденный код побеждает, поздние дубли игнорируем.
func (c *Catalog) AddTable(name string, items []Item) {
	if name == "" || len(items) == 0 {
		return
	}
	existing, ok := c.Tables[name]
	if !ok {
		c.Tables[name] = append([]Item(nil), items...)
		c.Names = append(c.Names, name)
		return
	}
	seen := make(map[string]struct{}, len(existing))
	for _, it := range existing {
		seen[it.Code] = struct{}{}
	}
	for _, it := range items {
		if _, dup := seen[it.Code]; dup {
			continue
		}
		seen[it.Code] = struct{}{}
		existing = append(existing, it)
	}
	c.Tables[name] = existing
}

// MapColumn привязывает колонку к таблице. Первый источник побеждает.
func (c *Catalog) MapColumn(key, table string) {
	if key == "" || table == "" {
		return
	}
	if _, ok := c.Columns[key]; !ok {
		c.Columns[key] = table
	}
}

// TableFor — имя таблицы для заголовка колонки (по нормализованному ключу).
func (c *Catalog) TableFor(header string) (string, bool) {
	name, ok := c.Columns[dict.NormalizeKey(header)]
	return name, ok
}

// Labels — подписи таблицы в порядке таблицы, пустые выкидываем.
func (c *Catalog) Labels(table string) []string {
	items := c.Tables[table]
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Label != "" {
			out = append(out, it.Label)
		}
	}
	return out
}
