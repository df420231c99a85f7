package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("unexpected chunking defaults: %+v", cfg.Ingest)
	}
	if cfg.Search.MaxResults != 5 || cfg.Search.MinScore != 0.1 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Search.DisplayLimit != 3 || cfg.Search.SnippetLength != 300 {
		t.Errorf("unexpected formatting defaults: %+v", cfg.Search)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("INGEST_CHUNK_SIZE", "500")
	t.Setenv("INGEST_CHUNK_OVERLAP", "50")
	t.Setenv("INGEST_LOCK_TTL_SECONDS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ingest.ChunkSize != 500 || cfg.Ingest.ChunkOverlap != 50 {
		t.Errorf("env overrides not applied: %+v", cfg.Ingest)
	}
	if cfg.Ingest.LockTTL != 10*time.Second {
		t.Errorf("LockTTL = %v, want 10s", cfg.Ingest.LockTTL)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "search:\n  min_score: 0.25\n  max_results: 8\nserver:\n  port: \"9090\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Search.MinScore != 0.25 || cfg.Search.MaxResults != 8 {
		t.Errorf("yaml overlay not applied: %+v", cfg.Search)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	// untouched keys keep their env defaults
	if cfg.Ingest.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", cfg.Ingest.ChunkSize)
	}
}

func TestValidateRejectsOverlapNotBelowChunkSize(t *testing.T) {
	cases := []IngestConfig{
		{ChunkSize: 100, ChunkOverlap: 100},
		{ChunkSize: 100, ChunkOverlap: 150},
		{ChunkSize: 100, ChunkOverlap: -1},
		{ChunkSize: 0, ChunkOverlap: 0},
	}
	for _, ic := range cases {
		cfg := &Config{Ingest: ic}
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", ic)
		}
	}
}
