package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depcheck/pkg/audit"
	"github.com/matzehuels/depcheck/pkg/manifest"
	"github.com/matzehuels/depcheck/pkg/observability"
	"github.com/matzehuels/depcheck/pkg/usage"
)

// Runner encapsulates audit execution.
// Both the CLI and tests use this to avoid duplicating the wiring.
//
// The Runner is stateless apart from its collaborators. Multiple goroutines
// can safely use the same Runner with different options.
type Runner struct {
	Fetcher   audit.LatestFetcher
	Installer audit.Installer
	Logger    *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
// installer may be nil when no updates will be applied.
func NewRunner(fetcher audit.LatestFetcher, installer audit.Installer, logger *log.Logger) *Runner {
	return &Runner{
		Fetcher:   fetcher,
		Installer: installer,
		Logger:    loggerOrDefault(logger),
	}
}

// Audit runs manifest → {resolve, scan} → report.
//
// Only an unusable manifest or an interrupted run fails the whole audit.
// Registry failures end up as StatusError records and unreadable source
// files are skipped.
func (r *Runner) Audit(ctx context.Context, opts Options) (result *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := r.Logger.With("run", runID[:8])
	hooks := observability.Audit()

	// Stage 1: Manifest
	m, err := manifest.Read(opts.Root)
	if err != nil {
		hooks.OnAuditComplete(ctx, runID, 0, time.Since(start), err)
		return nil, err
	}

	all := manifest.Options{IncludeDevDependencies: true}
	targets := opts.Packages
	if len(targets) == 0 {
		targets = m.Names(all)
	}
	declared := m.Lookup(all)

	hooks.OnAuditStart(ctx, runID, len(targets))
	defer func() {
		records := 0
		if result != nil {
			records = len(result.Records)
		}
		hooks.OnAuditComplete(ctx, runID, records, time.Since(start), err)
	}()
	logger.Info("auditing dependencies", "manifest", m.Path, "targets", len(targets), "unused", opts.CheckUnused)

	result = &Result{RunID: runID, Manifest: m}
	result.Stats.Targets = len(targets)

	// Stage 2: Resolve and scan
	var (
		results []audit.Result
		scanned *usage.Result
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resolveStart := time.Now()
		resolver := &audit.Resolver{
			Fetcher:    r.Fetcher,
			WindowSize: opts.WindowSize,
			Retries:    opts.Retries,
			Progress:   opts.Progress,
			Logger:     logger,
		}
		results = resolver.ResolveAll(gctx, targets, declared)
		result.Stats.ResolveTime = time.Since(resolveStart)
		logger.Debug("resolved versions", "targets", len(targets), "duration", result.Stats.ResolveTime)
		return nil
	})

	if opts.CheckUnused {
		g.Go(func() error {
			scanStart := time.Now()
			scanOpts := opts.Scan
			scanOpts.Logger = logger
			res, err := usage.Scan(gctx, opts.Root, scanOpts)
			result.Stats.ScanTime = time.Since(scanStart)

			files, packages := 0, 0
			if res != nil {
				files, packages = res.Files, len(res.Used)
			}
			observability.Audit().OnScanComplete(gctx, files, packages, result.Stats.ScanTime, err)
			if err != nil {
				return err
			}
			scanned = res
			logger.Debug("scanned sources", "files", files, "packages", packages, "duration", result.Stats.ScanTime)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Report
	if scanned != nil {
		result.Usage = audit.ClassifyUsage(m.Declared(manifest.Options{}), scanned.Used)
		result.Usage.Files = scanned.Files
		result.Stats.FilesScanned = scanned.Files
		result.Stats.Unreadable = len(scanned.Unreadable)
	}
	result.Records = audit.Report(results, result.Usage)
	result.Stats.TotalTime = time.Since(start)

	logger.Info("audit complete", result.Stats.LogValues()...)
	return result, nil
}

// Update applies the outdated records with the runner's installer.
func (r *Runner) Update(ctx context.Context, records []audit.Record, opts UpdateOptions) []audit.UpdateOutcome {
	u := &audit.Updater{
		Installer: r.Installer,
		DryRun:    opts.DryRun,
		Logger:    r.Logger,
		OnStart:   opts.OnStart,
	}
	return u.Apply(ctx, records)
}
