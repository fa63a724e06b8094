// File path: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDisablesPlatformFromFile(t *testing.T) {
	path := writeConfigFile(t, `
ingestion:
  reddit:
    enabled: false
  youtube:
    max_results: 7
`)
	t.Setenv("SOCIALRAG_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ingestion.Reddit.Enabled {
		t.Fatal("reddit still enabled despite enabled: false in config file")
	}
	// A section that never mentions the flag keeps the default.
	if !cfg.Ingestion.YouTube.Enabled {
		t.Fatal("youtube disabled although the file never set enabled")
	}
	if cfg.Ingestion.YouTube.MaxResults != 7 {
		t.Fatalf("youtube max results = %d, want 7", cfg.Ingestion.YouTube.MaxResults)
	}
	// Untouched sections keep all defaults.
	if !cfg.Ingestion.HackerNews.Enabled {
		t.Fatal("hackernews default lost")
	}
}

func TestLoadReenablesPlatformFromFile(t *testing.T) {
	path := writeConfigFile(t, `
ingestion:
  rss:
    enabled: true
    queries: ["dev-to"]
`)
	t.Setenv("SOCIALRAG_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Ingestion.RSS.Enabled {
		t.Fatal("rss not enabled")
	}
	if len(cfg.Ingestion.RSS.Queries) != 1 || cfg.Ingestion.RSS.Queries[0] != "dev-to" {
		t.Fatalf("rss queries = %v", cfg.Ingestion.RSS.Queries)
	}
}

func TestMergePlatformWithoutEnabledKeepsBase(t *testing.T) {
	base := PlatformConfig{Enabled: true, MaxResults: 50}
	merged := mergePlatform(base, PlatformConfig{MaxResults: 10})
	if !merged.Enabled {
		t.Fatal("merge flipped enabled without the override setting it")
	}
	if merged.MaxResults != 10 {
		t.Fatalf("max results = %d, want 10", merged.MaxResults)
	}

	off := PlatformConfig{Enabled: false, enabledSet: true}
	merged = mergePlatform(base, off)
	if merged.Enabled {
		t.Fatal("explicit enabled: false not applied by merge")
	}
}

func TestLoadRejectsInvalidChunkOverlap(t *testing.T) {
	path := writeConfigFile(t, `
embedding:
  chunk_size: 100
  chunk_overlap: 100
`)
	t.Setenv("SOCIALRAG_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("overlap equal to chunk size accepted")
	}
}
