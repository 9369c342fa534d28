// Package config loads depcheck settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Defaults (see [Default])
//  2. A TOML file, either given explicitly or <project>/.depcheck.toml
//  3. DEPCHECK_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// # File Format
//
//	registry = "https://registry.npmjs.org"
//	concurrency = 25
//	timeout = "30s"
//	retries = 0
//	package_manager = "pnpm"
//
//	[cache]
//	ttl = "1h"
//	url = "redis://localhost:6379/0"
//
//	[scan]
//	exclude_dirs = ["node_modules", "dist", "vendor"]
//	extensions = [".js", ".ts"]
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
	"github.com/matzehuels/depcheck/pkg/integrations/npm"
)

// FileName is the per-project configuration file.
const FileName = ".depcheck.toml"

// Config holds every tunable of an audit run.
type Config struct {
	Registry       string   `toml:"registry"`
	RegistryToken  string   `toml:"registry_token"`
	Concurrency    int      `toml:"concurrency"`
	Timeout        Duration `toml:"timeout"`
	Retries        int      `toml:"retries"`
	PackageManager string   `toml:"package_manager"`

	Cache CacheConfig `toml:"cache"`
	Scan  ScanConfig  `toml:"scan"`

	// Path is the file the config was read from, empty when none was found.
	Path string `toml:"-"`
}

// CacheConfig controls the registry response cache.
type CacheConfig struct {
	TTL Duration `toml:"ttl"` // 0 disables caching
	URL string   `toml:"url"` // redis:// URL for a shared cache, file cache if empty
}

// ScanConfig overrides the usage scanner defaults.
type ScanConfig struct {
	ExcludeDirs []string `toml:"exclude_dirs"`
	Extensions  []string `toml:"extensions"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Registry:    npm.DefaultRegistry,
		Concurrency: 25,
		Timeout:     Duration{30 * time.Second},
	}
}

// Load resolves the configuration for a project rooted at root. An explicit
// path must exist; without one, <root>/.depcheck.toml is used if present.
func Load(path, root string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}
	if err := cfg.decodeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "load %s", path)
		}
	} else {
		cfg.Path = path
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New("unknown keys: " + strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "%s", key)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "%s", key)
		}
		return nil
	}

	str("NPM_TOKEN", &c.RegistryToken)
	str("DEPCHECK_REGISTRY", &c.Registry)
	str("DEPCHECK_REGISTRY_TOKEN", &c.RegistryToken)
	str("DEPCHECK_PACKAGE_MANAGER", &c.PackageManager)
	str("DEPCHECK_CACHE_URL", &c.Cache.URL)

	for _, err := range []error{
		num("DEPCHECK_CONCURRENCY", &c.Concurrency),
		num("DEPCHECK_RETRIES", &c.Retries),
		dur("DEPCHECK_TIMEOUT", &c.Timeout),
		dur("DEPCHECK_CACHE_TTL", &c.Cache.TTL),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if err := pkgerrors.ValidateURL(c.Registry); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "registry")
	}
	if c.Concurrency < 1 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Timeout.Duration <= 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "retries cannot be negative, got %d", c.Retries)
	}
	if c.Cache.TTL.Duration < 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "cache ttl cannot be negative")
	}
	if c.Cache.URL != "" && !strings.HasPrefix(c.Cache.URL, "redis://") && !strings.HasPrefix(c.Cache.URL, "rediss://") {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "cache url must use redis:// or rediss://")
	}
	return nil
}

// CacheEnabled reports whether registry responses should be cached.
func (c *Config) CacheEnabled() bool {
	return c.Cache.TTL.Duration > 0
}
