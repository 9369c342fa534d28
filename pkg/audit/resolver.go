package audit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depcheck/pkg/cache"
	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
	"github.com/matzehuels/depcheck/pkg/observability"
)

// DefaultWindowSize is the number of registry lookups in flight at once.
const DefaultWindowSize = 25

// DefaultRetryDelay is the initial backoff between retried lookups.
const DefaultRetryDelay = 500 * time.Millisecond

// LatestFetcher resolves a package name to its latest published version.
// Implementations must be safe for concurrent use.
type LatestFetcher interface {
	LatestVersion(ctx context.Context, name string) (string, error)
}

// ProgressFunc is told how many targets have completed so far. Calls are
// serialized and completed strictly increases from 1 to total.
type ProgressFunc func(completed, total int)

// Resolver maps target names to Results using a LatestFetcher.
type Resolver struct {
	Fetcher    LatestFetcher
	WindowSize int           // lookups per window, DefaultWindowSize if <= 0
	Retries    int           // extra attempts for transient failures
	RetryDelay time.Duration // initial backoff, DefaultRetryDelay if <= 0
	Progress   ProgressFunc  // optional
	Logger     *log.Logger   // nil uses log.Default()
}

// ResolveAll returns exactly one Result per target, in target order.
// Targets missing from declared, or declared with an empty range, are
// StatusNotInstalled and never reach the registry. A failed lookup becomes StatusError for that target only; once
// ctx is done every remaining target fails with the context error.
func (r *Resolver) ResolveAll(ctx context.Context, targets []string, declared map[string]string) []Result {
	size := r.WindowSize
	if size <= 0 {
		size = DefaultWindowSize
	}
	total := len(targets)
	results := make([]Result, total)

	var mu sync.Mutex
	completed := 0
	advance := func() {
		mu.Lock()
		defer mu.Unlock()
		completed++
		if r.Progress != nil {
			r.Progress(completed, total)
		}
	}

	for start := 0; start < total; start += size {
		end := min(start+size, total)
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = r.resolve(ctx, targets[i], declared)
				advance()
				return nil
			})
		}
		_ = g.Wait()
	}
	return results
}

func (r *Resolver) resolve(ctx context.Context, name string, declared map[string]string) Result {
	rng, ok := declared[name]
	if !ok || rng == "" {
		return Result{Name: name, Status: StatusNotInstalled}
	}
	installed := StripRangePrefix(rng)

	start := time.Now()
	latest, err := r.fetch(ctx, name)
	res := Result{Name: name, Installed: installed, Latest: latest}
	switch {
	case err != nil:
		res.Latest = ""
		res.Status = StatusError
		res.Error = pkgerrors.UserMessage(err)
		r.logger().Warn("registry lookup failed", "package", name, "err", res.Error)
	case installed == latest:
		res.Status = StatusUpToDate
	default:
		res.Status = StatusOutdated
	}

	observability.Audit().OnPackageResolved(ctx, name, res.Status.String(), time.Since(start), err)
	r.logger().Debug("resolved", "package", name, "installed", installed, "latest", res.Latest, "status", res.Status)
	return res
}

func (r *Resolver) fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrCodeRegistry, err, "fetch %s", name)
	}
	delay := r.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var latest string
	err := cache.RetryWithBackoff(ctx, r.Retries+1, delay, func() error {
		v, err := r.Fetcher.LatestVersion(ctx, name)
		latest = v
		return err
	})
	return latest, err
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// StripRangePrefix removes a single leading "^" or "~" from a version range.
func StripRangePrefix(rng string) string {
	if strings.HasPrefix(rng, "^") || strings.HasPrefix(rng, "~") {
		return rng[1:]
	}
	return rng
}
