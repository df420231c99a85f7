package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), ".seed_cache.json")

	cache, err := loadCache(cacheFile)
	if err != nil {
		t.Fatalf("loadCache on missing file failed: %v", err)
	}
	if len(cache.ProcessedFiles) != 0 {
		t.Fatalf("missing cache file should load empty, got %d entries", len(cache.ProcessedFiles))
	}

	cache.ProcessedFiles["data/faq.md"] = ProcessedFile{
		FilePath:        "data/faq.md",
		FileHash:        "abc",
		KnowledgeBaseID: 3,
		DocumentID:      17,
		ProcessedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := saveCache(cacheFile, cache); err != nil {
		t.Fatalf("saveCache failed: %v", err)
	}

	loaded, err := loadCache(cacheFile)
	if err != nil {
		t.Fatalf("loadCache failed: %v", err)
	}
	if got := loaded.ProcessedFiles["data/faq.md"]; got.DocumentID != 17 || got.KnowledgeBaseID != 3 {
		t.Errorf("loaded entry = %+v", got)
	}
}

func TestSeedFilesAndHash(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"a.txt":       "refund policy",
		"b.md":        "# Shipping",
		"image.png":   "binary",
		"notes.TXT":   "upper-case extension",
		".seed_cache": "{}",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := seedFiles(dir)
	if err != nil {
		t.Fatalf("seedFiles failed: %v", err)
	}
	want := []string{"a.txt", "b.md", "notes.TXT"}
	if len(paths) != len(want) {
		t.Fatalf("seedFiles = %v, want %v", paths, want)
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], name)
		}
	}

	h1, err := calculateFileHash(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(h1) != 32 {
		t.Errorf("hash %q is not a hex md5 digest", h1)
	}
	h2, _ := calculateFileHash(filepath.Join(dir, "b.md"))
	if h1 == h2 {
		t.Error("different contents produced the same hash")
	}
}
