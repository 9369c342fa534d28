// Package cli implements the depcheck command-line interface.
//
// The root command audits the project's package.json against the npm
// registry, optionally reports unused runtime dependencies and applies
// updates through the project's package manager.
//
// # Commands
//
//   - depcheck [packages...]: audit all or the named dependencies
//   - cache clear|path: manage the registry response cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// Warnings go to stderr by default. --verbose (-v) switches to debug level
// and additionally traces registry requests and cache lookups.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcheck/pkg/buildinfo"
	"github.com/matzehuels/depcheck/pkg/cache"
	"github.com/matzehuels/depcheck/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depcheck"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer // report output, os.Stdout by default
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// EnableTracing registers hooks that log registry requests and cache
// lookups at debug level.
func (c *CLI) EnableTracing() {
	registerTraceHooks(c.Logger)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.auditCommand()
	root.Version = buildinfo.Version
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache selects the registry cache backend for cfg. Caching is off unless
// a TTL is configured; a shared Redis cache is used when a URL is set and
// reachable, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if !cfg.CacheEnabled() {
		return cache.NewNullCache()
	}
	if cfg.Cache.URL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.URL)
		if err == nil {
			c.Logger.Debug("using redis cache", "ttl", cfg.Cache.TTL)
			return rc
		}
		c.Logger.Warn("redis cache unavailable, falling back to file cache", "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	c.Logger.Debug("using file cache", "dir", dir, "ttl", cfg.Cache.TTL)
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/depcheck/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
