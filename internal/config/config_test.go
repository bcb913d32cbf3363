package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SONGBOOK_OUT_DIR", "SONGBOOK_CACHE_DIR", "SONGBOOK_DB", "SONGBOOK_EMBEDDINGS",
		"SONGBOOK_CATALOG", "SONGBOOK_WORKERS", "SONGBOOK_LEXICAL_THRESHOLD",
		"SONGBOOK_SEMANTIC_THRESHOLD", "SONGBOOK_ADDR",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("SONGBOOK_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	if cfg.OutDir != "songbook-out" || cfg.CacheDir != filepath.Join("songbook-out", "cache") {
		t.Fatalf("dirs=%q %q", cfg.OutDir, cfg.CacheDir)
	}
	if cfg.Workers != 4 || cfg.Addr != ":8080" {
		t.Fatalf("workers=%d addr=%q", cfg.Workers, cfg.Addr)
	}
	if cfg.LexicalThreshold != 0.60 || cfg.SemanticThreshold != 0.55 {
		t.Fatalf("thresholds=%v %v", cfg.LexicalThreshold, cfg.SemanticThreshold)
	}
	if cfg.IndexPath() != filepath.Join("songbook-out", "songbook.db") {
		t.Fatalf("index=%q", cfg.IndexPath())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"outDir":"/srv/songs","workers":8,"lexicalThreshold":0.7,"db":"off"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SONGBOOK_CONFIG", path)
	t.Setenv("SONGBOOK_WORKERS", "2")

	cfg := Load()
	if cfg.OutDir != "/srv/songs" || cfg.CacheDir != "/srv/songs/cache" {
		t.Fatalf("dirs=%q %q", cfg.OutDir, cfg.CacheDir)
	}
	if cfg.Workers != 2 {
		t.Fatalf("env should win: workers=%d", cfg.Workers)
	}
	if cfg.LexicalThreshold != 0.7 {
		t.Fatalf("lexical=%v", cfg.LexicalThreshold)
	}
	if cfg.IndexPath() != "" {
		t.Fatalf("index should be off: %q", cfg.IndexPath())
	}
}

func TestValidateThresholds(t *testing.T) {
	clearEnv(t)
	t.Setenv("SONGBOOK_SEMANTIC_THRESHOLD", "1.5")
	if err := Load().Validate(); err == nil {
		t.Fatalf("expected out of range error")
	}
	t.Setenv("SONGBOOK_SEMANTIC_THRESHOLD", "not a number")
	if cfg := Load(); cfg.SemanticThreshold != 0.55 {
		t.Fatalf("bad value should fall back: %v", cfg.SemanticThreshold)
	}
}

func TestFileZeroThresholdIsKept(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"lexicalThreshold":0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SONGBOOK_CONFIG", path)
	cfg := Load()
	if cfg.LexicalThreshold != 0 || cfg.SemanticThreshold != 0.55 {
		t.Fatalf("thresholds=%v %v", cfg.LexicalThreshold, cfg.SemanticThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero is in range: %v", err)
	}
}
