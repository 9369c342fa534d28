package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcheck/pkg/audit"
	"github.com/matzehuels/depcheck/pkg/config"
	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
	"github.com/matzehuels/depcheck/pkg/integrations/npm"
	"github.com/matzehuels/depcheck/pkg/pipeline"
	"github.com/matzehuels/depcheck/pkg/pm"
	"github.com/matzehuels/depcheck/pkg/usage"
)

// auditOpts holds the root command's flags.
type auditOpts struct {
	path           string
	config         string
	registry       string
	packageManager string
	update         bool
	dryRun         bool
	json           bool
	unused         bool
	interactive    bool
	noColor        bool
	concurrency    int
	retries        int
	timeout        time.Duration
	cacheTTL       time.Duration
}

// auditCommand creates the root audit command.
func (c *CLI) auditCommand() *cobra.Command {
	opts := &auditOpts{}

	cmd := &cobra.Command{
		Use:   appName + " [packages...]",
		Short: "Audit npm dependencies against the registry",
		Long: `Audit the dependencies declared in package.json.

Every dependency (or only the named packages) is looked up on the npm
registry and reported as up-to-date, outdated, not installed or error.
With --unused the source tree is scanned for import and require
statements and runtime dependencies nothing references are flagged.

Outdated packages can be moved to their latest version with --update,
which runs the project's package manager one package at a time.`,
		Example: `  # Audit every dependency in the current directory
  depcheck

  # Audit two packages of another project
  depcheck -p ./web react lodash

  # Report unused dependencies as JSON
  depcheck --unused --json

  # Show what an update would do
  depcheck --update --dry-run`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAudit(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.path, "path", "p", ".", "project directory containing package.json")
	f.BoolVarP(&opts.update, "update", "u", false, "update outdated packages to their latest version")
	f.BoolVarP(&opts.dryRun, "dry-run", "d", false, "show updates without running the package manager")
	f.BoolVar(&opts.json, "json", false, "print the report as JSON")
	f.BoolVar(&opts.unused, "unused", false, "report runtime dependencies no source file imports")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "choose which outdated packages to update (implies --update)")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.StringVar(&opts.config, "config", "", "config file (default <path>/"+config.FileName+")")
	f.StringVar(&opts.registry, "registry", "", "registry base URL")
	f.StringVar(&opts.packageManager, "package-manager", "", "npm, yarn, pnpm or bun (detected from lockfiles by default)")
	f.IntVar(&opts.concurrency, "concurrency", audit.DefaultWindowSize, "registry lookups per window")
	f.IntVar(&opts.retries, "retries", 0, "extra attempts for transient registry failures")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-request registry timeout (default 30s)")
	f.DurationVar(&opts.cacheTTL, "cache-ttl", 0, "cache registry responses for this long (0 disables)")

	return cmd
}

// loadConfig layers flags that were set explicitly over the config file and
// environment.
func (o *auditOpts) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.config, o.path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("registry") {
		cfg.Registry = o.registry
	}
	if flags.Changed("package-manager") {
		cfg.PackageManager = o.packageManager
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if flags.Changed("retries") {
		cfg.Retries = o.retries
	}
	if flags.Changed("timeout") {
		cfg.Timeout.Duration = o.timeout
	}
	if flags.Changed("cache-ttl") {
		cfg.Cache.TTL.Duration = o.cacheTTL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *CLI) runAudit(ctx context.Context, cmd *cobra.Command, packages []string, opts *auditOpts) error {
	if opts.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	if opts.interactive {
		opts.update = true
	}

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}

	manager, err := pm.Parse(cfg.PackageManager)
	if err != nil {
		return err
	}
	if manager == "" {
		manager = pm.Detect(opts.path)
	}

	store := c.newCache(ctx, cfg)
	defer store.Close()

	client := npm.NewClient(npm.Options{
		BaseURL:  cfg.Registry,
		Token:    cfg.RegistryToken,
		Timeout:  cfg.Timeout.Duration,
		Cache:    store,
		CacheTTL: cfg.Cache.TTL.Duration,
	})
	installer := &pm.Exec{Manager: manager, Dir: opts.path}
	runner := pipeline.NewRunner(client, installer, c.Logger)

	spinner := newSpinnerWithContext(ctx, "Reading manifest...")
	spinner.Start()
	prog := newProgress(c.Logger)

	result, err := runner.Audit(ctx, pipeline.Options{
		Root:        opts.path,
		Packages:    packages,
		CheckUnused: opts.unused,
		WindowSize:  cfg.Concurrency,
		Retries:     cfg.Retries,
		Scan: usage.Options{
			ExcludeDirs: cfg.Scan.ExcludeDirs,
			Extensions:  cfg.Scan.Extensions,
		},
		Progress: func(completed, total int) {
			spinner.SetMessage(fmt.Sprintf("Checking packages %d/%d...", completed, total))
		},
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Checked %d packages", len(result.Records)))

	if opts.json {
		if opts.update {
			c.Logger.Warn("updates are skipped in JSON mode")
		}
		return writeJSON(c.Out, result.Records)
	}

	c.printReport(result, opts.unused)

	if !opts.update {
		return nil
	}
	return c.runUpdates(ctx, runner, result.Records, opts)
}

// printReport writes the table, registry errors and summary footer.
func (c *CLI) printReport(result *pipeline.Result, showUnused bool) {
	title := result.Manifest.Name
	if title == "" {
		title = "Dependencies"
	}
	fmt.Fprintf(c.Out, "%s %s\n", StyleTitle.Render(title), StyleDim.Render(result.Manifest.Path))

	if len(result.Records) == 0 {
		printInfo(c.Out, "No dependencies declared")
		return
	}

	renderTable(c.Out, result.Records, showUnused)
	renderErrors(c.Out, result.Records)
	renderSummary(c.Out, reportSummary(result), showUnused)
	if result.Usage != nil {
		fmt.Fprintln(c.Out, StyleDim.Render(fmt.Sprintf("%d source files scanned", result.Usage.Files)))
	}
}

// runUpdates applies (or previews) the outdated records, one at a time.
func (c *CLI) runUpdates(ctx context.Context, runner *pipeline.Runner, records []audit.Record, opts *auditOpts) error {
	outdated := audit.Outdated(records)
	if len(outdated) == 0 {
		printNewline(c.Out)
		printSuccess(c.Out, "All packages are already up-to-date.")
		return nil
	}

	if opts.interactive {
		selected, err := selectUpdates(ctx, outdated)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			printInfo(c.Out, "No packages selected")
			return nil
		}
		outdated = selected
	}

	printNewline(c.Out)
	outcomes := runner.Update(ctx, outdated, pipeline.UpdateOptions{
		DryRun: opts.dryRun,
		OnStart: func(name, version string) {
			if opts.dryRun {
				printInfo(c.Out, "Would update %s %s %s", StyleValue.Render(name), iconArrow, StyleHighlight.Render(version))
				return
			}
			printInfo(c.Out, "Installing %s...", StyleValue.Render(name+"@"+version))
		},
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.dryRun {
		printNewline(c.Out)
		printDetail(c.Out, "Dry run: %d packages would be updated, nothing was changed", len(outcomes))
		return nil
	}

	failed := 0
	for _, o := range outcomes {
		if o.State == audit.UpdateFailed {
			failed++
			printError(c.Out, "%s: %s", o.Name, pkgerrors.UserMessage(o.Err))
		}
	}
	printNewline(c.Out)
	if failed > 0 {
		printWarning(c.Out, "%d of %d updates failed", failed, len(outcomes))
		return nil
	}
	printSuccess(c.Out, "Updated %d packages", len(outcomes))
	return nil
}
