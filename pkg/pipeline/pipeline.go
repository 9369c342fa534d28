// Package pipeline provides the dependency audit pipeline for depcheck.
//
// This package wires the manifest reader, the batch resolver, the usage
// scanner and the reporter into one run so the CLI (and any other entry
// point) gets consistent behavior.
//
// # Architecture
//
// An audit run has three stages:
//
//  1. Manifest: read package.json from the project root
//  2. Resolve and scan, concurrently: registry lookups for every target
//     and, when requested, a usage scan of the source tree
//  3. Report: join both into ordered records
//
// Updates are a separate step driven by [Runner.Update] so callers can
// choose which records to apply.
//
// # Usage
//
//	runner := pipeline.NewRunner(npm.NewClient(npm.Options{}), installer, logger)
//	result, err := runner.Audit(ctx, pipeline.Options{Root: ".", CheckUnused: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range result.Records {
//	    fmt.Println(rec.Name, rec.Status)
//	}
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depcheck/pkg/audit"
	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
	"github.com/matzehuels/depcheck/pkg/manifest"
	"github.com/matzehuels/depcheck/pkg/usage"
)

// =============================================================================
// Options - Audit Configuration
// =============================================================================

// Options contains all configuration for one audit run.
type Options struct {
	// Root is the project directory holding package.json. Defaults to ".".
	Root string

	// Packages restricts the audit to these names, in this order. Empty
	// means every declared runtime and development dependency.
	Packages []string

	// CheckUnused runs the usage scanner and classifies runtime dependencies.
	CheckUnused bool

	// WindowSize is the number of parallel registry lookups.
	WindowSize int

	// Retries is the number of extra attempts for transient registry failures.
	Retries int

	// Scan tunes the usage scanner. Its Logger is filled in by the runner.
	Scan usage.Options

	// Progress observes resolver progress.
	Progress audit.ProgressFunc

	validated bool
}

// ValidateAndSetDefaults normalizes the root and fills in defaults. It is
// idempotent. Target names are not validated here: an undeclared name is
// reported as not installed and a malformed declared name as a per-package
// registry error.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Root == "" {
		o.Root = "."
	}
	abs, err := filepath.Abs(o.Root)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidPath, err, "project root %s", o.Root)
	}
	o.Root = abs

	if o.WindowSize <= 0 {
		o.WindowSize = audit.DefaultWindowSize
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	o.validated = true
	return nil
}

// UpdateOptions configures Runner.Update.
type UpdateOptions struct {
	DryRun bool
	// OnStart is called before each package is processed.
	OnStart func(name, version string)
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of an audit run.
type Result struct {
	// RunID identifies the run in logs and hooks.
	RunID string

	// Manifest is the parsed package.json.
	Manifest *manifest.Manifest

	// Records holds one entry per target, in target order.
	Records []audit.Record

	// Usage is the unused classification, nil unless CheckUnused was set.
	Usage *audit.UsageReport

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains audit execution statistics.
type Stats struct {
	Targets      int
	FilesScanned int
	Unreadable   int
	ResolveTime  time.Duration
	ScanTime     time.Duration
	TotalTime    time.Duration
}

// LogValues returns the stats as key/value pairs for structured logging.
func (s Stats) LogValues() []any {
	return []any{
		"targets", s.Targets,
		"files", s.FilesScanned,
		"resolve", s.ResolveTime.Round(time.Millisecond),
		"scan", s.ScanTime.Round(time.Millisecond),
		"total", s.TotalTime.Round(time.Millisecond),
	}
}

func loggerOrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
