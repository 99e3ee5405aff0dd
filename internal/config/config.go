package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port     string `json:"port"`
	DictPath string `json:"dictPath"` // xml-словарь схемы, пусто = без автозагрузки
	EnumsDir string `json:"enumsDir"` // каталог yaml-справочников, пусто = без автозагрузки

	Country       string `json:"country"` // трёхбуквенный код страны по умолчанию
	SkipOperation bool   `json:"skipOperation"`

	DBURL       string `json:"dbUrl"` // пусто = конфигурации только в JSON-файлах
	AutoMigrate bool   `json:"autoMigrate"`

	// Локальное хранение исходников загрузок
	FilesRoot string `json:"filesRoot"`
}

func def() Config {
	return Config{
		Port:     "8080",
		DictPath: "",
		EnumsDir: "",

		Country:       "",
		SkipOperation: false,

		DBURL:       "",
		AutoMigrate: false,

		FilesRoot: "uploads",
	}
}

func loadJSON(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

// LoadWithPath читает JSON по указанному пути, потом применяет ENV и флаги.
func LoadWithPath(jsonPath string) Config {
	cfg := def()

	// JSON (если файл существует)
	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		if c2, err := loadJSON(jsonPath); err == nil {
			cfg = c2
		}
	}

	// ENV overrides
	cfg.Port = getenv("BERESTA_PORT", cfg.Port)
	cfg.DictPath = getenv("BERESTA_DICT_PATH", cfg.DictPath)
	cfg.EnumsDir = getenv("BERESTA_ENUMS_DIR", cfg.EnumsDir)
	cfg.Country = getenv("BERESTA_COUNTRY", cfg.Country)
	cfg.SkipOperation = getenvBool("BERESTA_SKIP_OPERATION", cfg.SkipOperation)
	cfg.DBURL = getenv("BERESTA_DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("BERESTA_AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.FilesRoot = getenv("BERESTA_FILES_ROOT", cfg.FilesRoot)

	// Flags overrides
	configPath := flag.String("config", jsonPath, "Path to config JSON")
	port := flag.String("port", cfg.Port, "HTTP port")
	dict := flag.String("dict", cfg.DictPath, "Path to schema dictionary XML")
	enums := flag.String("enums", cfg.EnumsDir, "Path to enums directory")
	country := flag.String("country", cfg.Country, "Default 3-letter country code")
	db := flag.String("db", cfg.DBURL, "Postgres URL (empty = JSON files only)")
	auto := flag.String("auto-migrate", strconv.FormatBool(cfg.AutoMigrate), "Apply schema on start (true/false)")
	files := flag.String("files-root", cfg.FilesRoot, "Local files root for uploads")

	flag.Parse()

	// Если через флаг передали другой конфиг — перечитаем
	if *configPath != jsonPath {
		return LoadWithPath(*configPath)
	}

	cfg.Port = strings.TrimSpace(*port)
	cfg.DictPath = strings.TrimSpace(*dict)
	cfg.EnumsDir = strings.TrimSpace(*enums)
	cfg.Country = strings.ToUpper(strings.TrimSpace(*country))
	cfg.DBURL = strings.TrimSpace(*db)
	cfg.AutoMigrate = strings.EqualFold(strings.TrimSpace(*auto), "true") ||
		strings.EqualFold(strings.TrimSpace(*auto), "1") ||
		strings.EqualFold(strings.TrimSpace(*auto), "yes")
	cfg.FilesRoot = strings.TrimSpace(*files)

	return cfg
}
