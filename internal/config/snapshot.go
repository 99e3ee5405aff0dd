package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Snapshot — сохранённая конфигурация прогона обогащения: всё, что нужно,
// чтобы воспроизвести результат на тех же входных файлах.
type Snapshot struct {
	SavedAt           time.Time         `json:"saved_at"`
	Country           string            `json:"country"`
	SkipOperation     bool              `json:"skip_operation"`
	FilesUsed         []string          `json:"files_used"`
	PicklistOverrides map[string]string `json:"picklist_assignments"`
}

// SaveSnapshot пишет снапшот в JSON-файл, перетирая существующий.
func SaveSnapshot(path string, s *Snapshot) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadSnapshot читает снапшот из JSON-файла.
func LoadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &s, nil
}
