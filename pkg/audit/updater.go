package audit

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
	"github.com/matzehuels/depcheck/pkg/observability"
)

// Installer installs one exact package version into a project.
type Installer interface {
	Install(ctx context.Context, name, version string) error
}

// UpdateState is the result of one update attempt.
type UpdateState int

const (
	UpdatePlanned UpdateState = iota // dry run, nothing executed
	UpdateApplied                    // install command succeeded
	UpdateFailed                     // install command failed
	UpdateSkipped                    // not attempted because ctx was done
)

func (s UpdateState) String() string {
	switch s {
	case UpdatePlanned:
		return "planned"
	case UpdateApplied:
		return "applied"
	case UpdateFailed:
		return "failed"
	case UpdateSkipped:
		return "skipped"
	}
	return "unknown"
}

// UpdateOutcome describes what happened to one outdated package.
type UpdateOutcome struct {
	Name     string
	Version  string // the latest version that was (or would be) installed
	State    UpdateState
	Err      error
	Duration time.Duration
}

// Updater moves outdated packages to their latest version, one at a time.
type Updater struct {
	Installer Installer
	DryRun    bool
	Logger    *log.Logger
	// OnStart is called before each package is processed.
	OnStart func(name, version string)
}

// Apply processes every StatusOutdated record in report order. A failed
// install is logged and recorded and the next package still runs.
func (u *Updater) Apply(ctx context.Context, records []Record) []UpdateOutcome {
	logger := u.Logger
	if logger == nil {
		logger = log.Default()
	}

	var outcomes []UpdateOutcome
	for _, r := range Outdated(records) {
		out := UpdateOutcome{Name: r.Name, Version: r.Latest}
		if u.OnStart != nil {
			u.OnStart(r.Name, r.Latest)
		}

		switch {
		case u.DryRun:
			out.State = UpdatePlanned
			logger.Debug("would update", "package", r.Name, "version", r.Latest)
		case ctx.Err() != nil:
			out.State = UpdateSkipped
			out.Err = ctx.Err()
		case u.Installer == nil:
			out.State = UpdateFailed
			out.Err = pkgerrors.New(pkgerrors.ErrCodeUpdateCommand, "no installer configured")
		default:
			start := time.Now()
			err := u.Installer.Install(ctx, r.Name, r.Latest)
			out.Duration = time.Since(start)
			if err != nil {
				out.State = UpdateFailed
				out.Err = pkgerrors.Wrap(pkgerrors.ErrCodeUpdateCommand, err, "update %s", r.Name)
				logger.Warn("update failed", "package", r.Name, "version", r.Latest, "err", err)
			} else {
				out.State = UpdateApplied
				logger.Info("updated", "package", r.Name, "version", r.Latest, "duration", out.Duration)
			}
		}

		observability.Audit().OnUpdate(ctx, r.Name, r.Latest, u.DryRun, out.Err)
		outcomes = append(outcomes, out)
	}
	return outcomes
}
