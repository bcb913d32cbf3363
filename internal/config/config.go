package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"songbook/internal/merge"
)

// IndexOff disables the results index when used as the DB path.
const IndexOff = "off"

type Config struct {
	OutDir            string
	CacheDir          string
	DB                string
	Embeddings        string
	Catalog           string
	Workers           int
	LexicalThreshold  float64
	SemanticThreshold float64
	Addr              string
}

type fileConfig struct {
	OutDir            string   `json:"outDir"`
	CacheDir          string   `json:"cacheDir"`
	DB                string   `json:"db"`
	Embeddings        string   `json:"embeddings"`
	Catalog           string   `json:"catalog"`
	Workers           int      `json:"workers"`
	LexicalThreshold  *float64 `json:"lexicalThreshold"`
	SemanticThreshold *float64 `json:"semanticThreshold"`
	Addr              string   `json:"addr"`
}

func init() {
	_ = godotenv.Load()
}

func Load() Config {
	fc := loadFileConfig()

	outDir := firstNonEmpty(os.Getenv("SONGBOOK_OUT_DIR"), fc.OutDir, "songbook-out")
	return Config{
		OutDir:            outDir,
		CacheDir:          firstNonEmpty(os.Getenv("SONGBOOK_CACHE_DIR"), fc.CacheDir, filepath.Join(outDir, "cache")),
		DB:                firstNonEmpty(os.Getenv("SONGBOOK_DB"), fc.DB, filepath.Join(outDir, "songbook.db")),
		Embeddings:        firstNonEmpty(os.Getenv("SONGBOOK_EMBEDDINGS"), fc.Embeddings),
		Catalog:           firstNonEmpty(os.Getenv("SONGBOOK_CATALOG"), fc.Catalog),
		Workers:           firstPositiveInt(os.Getenv("SONGBOOK_WORKERS"), fc.Workers, 4),
		LexicalThreshold:  firstFloat(os.Getenv("SONGBOOK_LEXICAL_THRESHOLD"), fc.LexicalThreshold, merge.DefaultLexicalThreshold),
		SemanticThreshold: firstFloat(os.Getenv("SONGBOOK_SEMANTIC_THRESHOLD"), fc.SemanticThreshold, merge.DefaultSemanticThreshold),
		Addr:              firstNonEmpty(os.Getenv("SONGBOOK_ADDR"), fc.Addr, ":8080"),
	}
}

// IndexPath is the results index path, empty when the index is off.
func (c Config) IndexPath() string {
	if strings.EqualFold(c.DB, IndexOff) {
		return ""
	}
	return c.DB
}

// Validate checks values a user can set out of range.
func (c Config) Validate() error {
	if c.LexicalThreshold < 0 || c.LexicalThreshold > 1 {
		return fmt.Errorf("lexical threshold must be between 0 and 1, got %v", c.LexicalThreshold)
	}
	if c.SemanticThreshold < 0 || c.SemanticThreshold > 1 {
		return fmt.Errorf("semantic threshold must be between 0 and 1, got %v", c.SemanticThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

func configPath() string {
	if p := os.Getenv("SONGBOOK_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "songbook", "config.json")
}

func loadFileConfig() fileConfig {
	path := configPath()
	if path == "" {
		return fileConfig{}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}
	}
	var fc fileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return fileConfig{}
	}
	return fc
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositiveInt(env string, file, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(env)); err == nil && n > 0 {
		return n
	}
	if file > 0 {
		return file
	}
	return def
}

// firstFloat keeps an explicit value even when out of range so that
// Validate can report it.
func firstFloat(env string, file *float64, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(env), 64); err == nil {
		return f
	}
	if file != nil {
		return *file
	}
	return def
}
