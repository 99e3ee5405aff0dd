package main

import (
	"fmt"
	"log"
	"path/filepath"

	"beresta/internal/api"
	"beresta/internal/config"
	"beresta/internal/dict"
	"beresta/internal/pg"
	"beresta/internal/reference"
)

func main() {
	cfg := config.LoadWithPath("beresta.json")

	storage := api.NewStorage()
	storage.Blob = &api.LocalBlobStore{Root: cfg.FilesRoot}
	storage.ConfigDir = filepath.Join(cfg.FilesRoot, "configs")
	storage.SetSettings(cfg.Country, cfg.SkipOperation)

	// словарь схемы с диска, если указан (иначе грузится через API)
	if cfg.DictPath != "" {
		entities, err := dict.LoadMetadataFile(cfg.DictPath)
		if err != nil {
			log.Fatalf("Ошибка загрузки словаря: %v", err)
		}
		storage.SetDictionary(entities, filepath.Base(cfg.DictPath))
		fmt.Printf("Загружено сущностей: %d\n", len(entities))
	}

	// yaml-справочники с диска, если указаны
	if cfg.EnumsDir != "" {
		cat := reference.NewCatalog()
		skipped, err := reference.LoadEnumCatalog(cfg.EnumsDir, cat)
		if err != nil {
			log.Fatalf("Ошибка загрузки справочников: %v", err)
		}
		storage.ReplaceCatalog(cat, []string{cfg.EnumsDir})
		fmt.Printf("Загружено справочных таблиц: %d (пропущено файлов: %d)\n", len(cat.Names), len(skipped))
	}

	// Postgres опционален: без него конфигурации живут в JSON-файлах
	if cfg.DBURL != "" {
		db, err := pg.Open(cfg.DBURL)
		if err != nil {
			log.Fatalf("Ошибка подключения к Postgres: %v", err)
		}
		store := pg.NewStore(db)
		if cfg.AutoMigrate {
			if err := store.Init(); err != nil {
				log.Fatalf("Ошибка наката схемы: %v", err)
			}
		}
		storage.Configs = store
	}

	fmt.Printf("Стартуем сервер Beresta на :%s...\n", cfg.Port)
	api.RunServer(":"+cfg.Port, storage)
}
