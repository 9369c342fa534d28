package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
)

var envKeys = []string{
	"NPM_TOKEN",
	"DEPCHECK_REGISTRY",
	"DEPCHECK_REGISTRY_TOKEN",
	"DEPCHECK_CONCURRENCY",
	"DEPCHECK_TIMEOUT",
	"DEPCHECK_RETRIES",
	"DEPCHECK_PACKAGE_MANAGER",
	"DEPCHECK_CACHE_TTL",
	"DEPCHECK_CACHE_URL",
}

// clearEnv isolates a test from the caller's DEPCHECK_* variables.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.CacheEnabled() {
		t.Error("cache should be disabled by default")
	}
}

func TestLoadProjectFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	path := writeConfig(t, root, `
registry = "http://localhost:4873"
concurrency = 10
timeout = "5s"
retries = 2
package_manager = "pnpm"

[cache]
ttl = "1h"

[scan]
exclude_dirs = ["vendor"]
extensions = [".ts"]
`)

	cfg, err := Load("", root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := &Config{
		Registry:       "http://localhost:4873",
		Concurrency:    10,
		Timeout:        Duration{5 * time.Second},
		Retries:        2,
		PackageManager: "pnpm",
		Cache:          CacheConfig{TTL: Duration{time.Hour}},
		Scan:           ScanConfig{ExcludeDirs: []string{"vendor"}, Extensions: []string{".ts"}},
		Path:           path,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should be enabled with a ttl")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeConfig(t, root, `concurrency = 10`)

	t.Setenv("NPM_TOKEN", "npm-token")
	t.Setenv("DEPCHECK_REGISTRY_TOKEN", "depcheck-token")
	t.Setenv("DEPCHECK_CONCURRENCY", "4")
	t.Setenv("DEPCHECK_TIMEOUT", "2s")
	t.Setenv("DEPCHECK_CACHE_URL", "redis://localhost:6379/1")

	cfg, err := Load("", root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want env value 4", cfg.Concurrency)
	}
	if cfg.Timeout.Duration != 2*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.RegistryToken != "depcheck-token" {
		t.Errorf("RegistryToken = %q, DEPCHECK_REGISTRY_TOKEN should win over NPM_TOKEN", cfg.RegistryToken)
	}
	if cfg.Cache.URL != "redis://localhost:6379/1" {
		t.Errorf("Cache.URL = %q", cfg.Cache.URL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "syntax", content: `concurrency = `},
		{name: "unknown key", content: `concurency = 3`},
		{name: "bad duration", content: `timeout = "soon"`},
		{name: "zero concurrency", content: `concurrency = 0`},
		{name: "negative retries", content: `retries = -1`},
		{name: "bad registry scheme", content: `registry = "ftp://example.com"`},
		{name: "bad cache url", content: "[cache]\nurl = \"memcached://x\""},
		{name: "bad env int", env: map[string]string{"DEPCHECK_RETRIES": "many"}},
		{name: "bad env duration", env: map[string]string{"DEPCHECK_CACHE_TTL": "1 hour"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			root := t.TempDir()
			if tt.content != "" {
				writeConfig(t, root, tt.content)
			}

			_, err := Load("", root)
			if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), t.TempDir())
	if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	text, _ := d.MarshalText()
	if string(text) != "1m30s" {
		t.Errorf("MarshalText() = %q", text)
	}
}
