package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"beresta/internal/config"
)

// ErrNotFound — конфигурации с таким именем нет.
var ErrNotFound = errors.New("config not found")

// Store хранит именованные снапшоты конфигураций в Postgres.
// База опциональна: без неё сервер живёт на JSON-файлах.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Init накатывает схему. Безопасно звать на каждом старте.
func (s *Store) Init() error {
	return ApplyDDL(s.db, DDL())
}

// Save сохраняет снапшот под именем, перетирая существующий.
func (s *Store) Save(ctx context.Context, name string, snap *config.Snapshot) error {
	files, err := json.Marshal(snap.FilesUsed)
	if err != nil {
		return err
	}
	overrides, err := json.Marshal(snap.PicklistOverrides)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
insert into beresta.configs (name, saved_at, country, skip_operation, files_used, picklist_assignments)
values ($1, $2, $3, $4, $5, $6)
on conflict (name) do update set
  saved_at = excluded.saved_at,
  country = excluded.country,
  skip_operation = excluded.skip_operation,
  files_used = excluded.files_used,
  picklist_assignments = excluded.picklist_assignments`,
		name, snap.SavedAt, snap.Country, snap.SkipOperation, files, overrides)
	if err != nil {
		return fmt.Errorf("save config %s: %w", name, err)
	}
	return nil
}

// Load читает снапшот по имени.
func (s *Store) Load(ctx context.Context, name string) (*config.Snapshot, error) {
	var (
		snap      config.Snapshot
		files     []byte
		overrides []byte
	)
	err := s.db.QueryRowContext(ctx, `
select saved_at, country, skip_operation, files_used, picklist_assignments
from beresta.configs where name = $1`, name).
		Scan(&snap.SavedAt, &snap.Country, &snap.SkipOperation, &files, &overrides)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", name, err)
	}
	if err := json.Unmarshal(files, &snap.FilesUsed); err != nil {
		return nil, fmt.Errorf("load config %s: %w", name, err)
	}
	if err := json.Unmarshal(overrides, &snap.PicklistOverrides); err != nil {
		return nil, fmt.Errorf("load config %s: %w", name, err)
	}
	return &snap, nil
}

// List отдаёт имена сохранённых конфигураций по алфавиту.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `select name from beresta.configs order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete удаляет снапшот. Отсутствие записи — ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `delete from beresta.configs where name = $1`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
