package api

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"beresta/internal/config"
	"beresta/internal/dict"
	"beresta/internal/enrich"
	"beresta/internal/pg"
	"beresta/internal/reference"
)

// TemplateRecord — загруженный шаблон плюс служебные метаданные.
type TemplateRecord struct {
	ID         string           `json:"id"`
	Template   *enrich.Template `json:"template"`
	StorageKey string           `json:"-"` // blob-ключ исходного файла
	Size       int64            `json:"size"`
	Hash       string           `json:"hash"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// Storage — in-memory состояние сервера: словарь схемы, справочный каталог,
// шаблоны в порядке загрузки и настройки прогона. Всё под одним RWMutex —
// объёмы маленькие, спорить за гранулярность незачем.
type Storage struct {
	mu sync.RWMutex

	entities []*dict.Entity
	global   dict.GlobalIndex
	byEntity dict.EntityIndex
	dictFile string

	catalog  *reference.Catalog
	refFiles []string

	templates []*TemplateRecord

	country       string
	skipOperation bool
	overrides     map[string]string // нормализованный ключ -> финальные значения пиклиста

	entropy io.Reader

	Blob      BlobStore // исходники загрузок; nil = не хранить
	Configs   *pg.Store // снапшоты в Postgres; nil = только JSON-файлы
	ConfigDir string    // каталог JSON-снапшотов
}

// NewStorage — пустое состояние, словарь и справочники грузятся потом.
func NewStorage() *Storage {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Storage{
		global:    dict.GlobalIndex{},
		byEntity:  dict.EntityIndex{},
		catalog:   reference.NewCatalog(),
		overrides: make(map[string]string),
		entropy:   ulid.Monotonic(src, 0),
	}
}

func (s *Storage) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// SetDictionary атомарно заменяет словарь схемы и его индексы.
func (s *Storage) SetDictionary(entities []*dict.Entity, fileName string) {
	global, byEntity := dict.BuildIndexes(entities)
	s.mu.Lock()
	s.entities = entities
	s.global = global
	s.byEntity = byEntity
	s.dictFile = fileName
	s.mu.Unlock()
}

// Dictionary отдаёт сущности словаря (слайс только читать).
func (s *Storage) Dictionary() []*dict.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities
}

// MergeReference вливает один справочный источник в каталог.
func (s *Storage) MergeReference(filename string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := reference.ParseSource(filename, data, s.catalog); err != nil {
		return err
	}
	s.refFiles = append(s.refFiles, filename)
	return nil
}

// ReplaceCatalog заменяет справочный каталог целиком (админский reload).
func (s *Storage) ReplaceCatalog(cat *reference.Catalog, files []string) {
	s.mu.Lock()
	s.catalog = cat
	s.refFiles = files
	s.mu.Unlock()
}

// Catalog отдаёт текущий каталог. Каталог после загрузки только читается.
func (s *Storage) Catalog() *reference.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// AddTemplate регистрирует шаблон и возвращает его id.
func (s *Storage) AddTemplate(rec *TemplateRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.newID()
	rec.UploadedAt = time.Now().UTC()
	s.templates = append(s.templates, rec)
	return rec.ID
}

// Templates — шаблоны в порядке загрузки.
func (s *Storage) Templates() []*TemplateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*TemplateRecord, len(s.templates))
	copy(out, s.templates)
	return out
}

// TemplateByID ищет шаблон по id.
func (s *Storage) TemplateByID(id string) (*TemplateRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.templates {
		if rec.ID == id {
			return rec, true
		}
	}
	return nil, false
}

// RemoveTemplate удаляет шаблон, порядок остальных не трогает.
// Возвращает blob-ключ исходника (вызывающий чистит blob сам).
func (s *Storage) RemoveTemplate(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.templates {
		if rec.ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return rec.StorageKey, true
		}
	}
	return "", false
}

// Settings — текущие настройки прогона.
func (s *Storage) Settings() (country string, skipOperation bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.country, s.skipOperation
}

// SetSettings обновляет настройки прогона.
func (s *Storage) SetSettings(country string, skipOperation bool) {
	s.mu.Lock()
	s.country = country
	s.skipOperation = skipOperation
	s.mu.Unlock()
}

// Overrides — копия текущих назначений пиклистов.
func (s *Storage) Overrides() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out
}

// SetOverride ставит или снимает (пустым значением) назначение пиклиста.
func (s *Storage) SetOverride(key, values string) {
	s.mu.Lock()
	if values == "" {
		delete(s.overrides, key)
	} else {
		s.overrides[key] = values
	}
	s.mu.Unlock()
}

// EnrichAll прогоняет все шаблоны через движок с текущими настройками.
func (s *Storage) EnrichAll() []*enrich.Enriched {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := enrich.Options{
		Country:       s.country,
		SkipOperation: s.skipOperation,
		Resolved:      s.overrides,
		Catalog:       s.catalog,
	}
	out := make([]*enrich.Enriched, 0, len(s.templates))
	for _, rec := range s.templates {
		out = append(out, enrich.Transform(rec.Template, s.global, s.byEntity, opts))
	}
	return out
}

// EnrichOne — то же для одного шаблона.
func (s *Storage) EnrichOne(rec *TemplateRecord) *enrich.Enriched {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := enrich.Options{
		Country:       s.country,
		SkipOperation: s.skipOperation,
		Resolved:      s.overrides,
		Catalog:       s.catalog,
	}
	return enrich.Transform(rec.Template, s.global, s.byEntity, opts)
}

// Snapshot собирает сохраняемую конфигурацию из текущего состояния.
func (s *Storage) Snapshot() *config.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []string
	if s.dictFile != "" {
		files = append(files, s.dictFile)
	}
	files = append(files, s.refFiles...)
	for _, rec := range s.templates {
		files = append(files, rec.Template.Name)
	}

	overrides := make(map[string]string, len(s.overrides))
	for k, v := range s.overrides {
		overrides[k] = v
	}

	return &config.Snapshot{
		SavedAt:           time.Now().UTC(),
		Country:           s.country,
		SkipOperation:     s.skipOperation,
		FilesUsed:         files,
		PicklistOverrides: overrides,
	}
}

// ApplySnapshot накатывает настройки и назначения из снапшота.
// FilesUsed информационный: файлы пользователь загружает сам.
func (s *Storage) ApplySnapshot(snap *config.Snapshot) {
	overrides := make(map[string]string, len(snap.PicklistOverrides))
	for k, v := range snap.PicklistOverrides {
		overrides[k] = v
	}
	s.mu.Lock()
	s.country = snap.Country
	s.skipOperation = snap.SkipOperation
	s.overrides = overrides
	s.mu.Unlock()
}
