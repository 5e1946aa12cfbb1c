package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SLUG_MAX_ATTEMPTS", "")

	cfg := Load()

	if cfg.StoreDriver != "memory" {
		t.Fatalf("store driver = %q, want memory in dev", cfg.StoreDriver)
	}
	if cfg.SlugMaxAttempts != DefaultSlugMaxAttempts {
		t.Fatalf("slug attempts = %d, want %d", cfg.SlugMaxAttempts, DefaultSlugMaxAttempts)
	}
	if cfg.OTelExporter != "none" {
		t.Fatalf("otel exporter = %q, want none", cfg.OTelExporter)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MAX_CONFLICT_RETRIES", "5")
	t.Setenv("SLUG_MAX_ATTEMPTS", "-4")

	cfg := Load()

	if cfg.StoreDriver != "mongo" {
		t.Fatalf("store driver = %q, want mongo", cfg.StoreDriver)
	}
	if cfg.MaxConflictRetries != 5 {
		t.Fatalf("conflict retries = %d, want 5", cfg.MaxConflictRetries)
	}
	// Non-positive values fall back to the default
	if cfg.SlugMaxAttempts != DefaultSlugMaxAttempts {
		t.Fatalf("slug attempts = %d, want default", cfg.SlugMaxAttempts)
	}
}

func TestLoad_ProductionDefaultsToPostgres(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("STORE_DRIVER", "")

	if got := Load().StoreDriver; got != "postgres" {
		t.Fatalf("store driver = %q, want postgres", got)
	}
}

func TestOpenLogFile_KeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"folio-2026-01-01T00-00-00.log",
		"folio-2026-01-02T00-00-00.log",
		"folio-2026-01-03T00-00-00.log",
		"other.log",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	now := func() time.Time { return time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC) }
	f, err := openLogFile(dir, 2, now)
	if err != nil {
		t.Fatalf("openLogFile: %v", err)
	}
	f.Close()

	if got, want := filepath.Base(f.Name()), "folio-2026-02-01T12-30-00.log"; got != want {
		t.Fatalf("log file = %s, want %s", got, want)
	}

	files, err := filepath.Glob(filepath.Join(dir, "folio-*.log"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	want := []string{
		filepath.Join(dir, "folio-2026-01-03T00-00-00.log"),
		filepath.Join(dir, "folio-2026-02-01T12-30-00.log"),
	}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("kept %v, want %v", files, want)
	}

	// Files outside the naming scheme are left alone
	if _, err := os.Stat(filepath.Join(dir, "other.log")); err != nil {
		t.Fatalf("other.log removed: %v", err)
	}
}
