package reference

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// enumDirectory — yaml-справочник: имя плюс пары код/подпись.
type enumDirectory struct {
	Name  string `yaml:"name"`
	Items []Item `yaml:"items"`
}

// ParseYAMLTable разбирает один yaml-справочник и вливает его в каталог.
// Имя таблицы — из самого файла, иначе из имени файла.
func ParseYAMLTable(filename string, data []byte, cat *Catalog) error {
	var dir enumDirectory
	if err := yaml.Unmarshal(data, &dir); err != nil {
		return err
	}
	name := dir.Name
	if name == "" {
		base := filepath.Base(filename)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	cat.AddTable(name, dir.Items)
	return nil
}

// LoadEnumCatalog читает все yaml-справочники из папки.
// Нечитаемый файл — не фатально: пропускаем и возвращаем список пропущенных.
func LoadEnumCatalog(dir string, cat *Catalog) (skipped []string, err error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		if err := ParseYAMLTable(name, data, cat); err != nil {
			skipped = append(skipped, name)
		}
	}
	return skipped, nil
}
