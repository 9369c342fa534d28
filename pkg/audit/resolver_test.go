package audit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/depcheck/pkg/cache"
)

// fakeRegistry serves canned versions and records how it was called.
type fakeRegistry struct {
	latest  map[string]string
	fail    map[string]error
	latency func(name string) time.Duration

	mu       sync.Mutex
	calls    map[string]int
	inFlight int
	maxSeen  int
	events   []event
}

type event struct {
	name  string
	start bool
}

func (f *fakeRegistry) LatestVersion(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
	f.inFlight++
	f.maxSeen = max(f.maxSeen, f.inFlight)
	f.events = append(f.events, event{name, true})
	f.mu.Unlock()

	if f.latency != nil {
		time.Sleep(f.latency(name))
	}

	f.mu.Lock()
	f.inFlight--
	f.events = append(f.events, event{name, false})
	f.mu.Unlock()

	if err, ok := f.fail[name]; ok {
		return "", err
	}
	return f.latest[name], nil
}

func (f *fakeRegistry) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func TestResolveAllVersionComparison(t *testing.T) {
	tests := []struct {
		name   string
		latest string
		fail   error
		want   Result
	}{
		{
			name:   "caret up to date",
			latest: "1.2.0",
			want:   Result{Name: "pkg", Installed: "1.2.0", Latest: "1.2.0", Status: StatusUpToDate},
		},
		{
			name:   "caret outdated",
			latest: "1.3.0",
			want:   Result{Name: "pkg", Installed: "1.2.0", Latest: "1.3.0", Status: StatusOutdated},
		},
		{
			name: "registry failure",
			fail: errors.New("connection refused"),
			want: Result{Name: "pkg", Installed: "1.2.0", Status: StatusError, Error: "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistry{latest: map[string]string{"pkg": tt.latest}}
			if tt.fail != nil {
				reg.fail = map[string]error{"pkg": tt.fail}
			}
			r := &Resolver{Fetcher: reg}

			got := r.ResolveAll(context.Background(), []string{"pkg"}, map[string]string{"pkg": "^1.2.0"})
			if diff := cmp.Diff([]Result{tt.want}, got); diff != "" {
				t.Errorf("ResolveAll mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveAllNotInstalledMakesNoCall(t *testing.T) {
	reg := &fakeRegistry{latest: map[string]string{"react": "18.3.1"}}
	r := &Resolver{Fetcher: reg}

	got := r.ResolveAll(context.Background(), []string{"ghost", "react"}, map[string]string{"react": "18.3.1"})

	want := []Result{
		{Name: "ghost", Status: StatusNotInstalled},
		{Name: "react", Installed: "18.3.1", Latest: "18.3.1", Status: StatusUpToDate},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveAll mismatch (-want +got):\n%s", diff)
	}
	if n := reg.callCount("ghost"); n != 0 {
		t.Errorf("registry called %d times for undeclared target", n)
	}
}

func TestResolveAllEmptyRangeIsNotInstalled(t *testing.T) {
	reg := &fakeRegistry{latest: map[string]string{"foo": "1.0.0", "bar": "2.0.0"}}
	r := &Resolver{Fetcher: reg}

	got := r.ResolveAll(context.Background(), []string{"foo", "bar"}, map[string]string{"foo": "", "bar": "^2.0.0"})

	want := []Result{
		{Name: "foo", Status: StatusNotInstalled},
		{Name: "bar", Installed: "2.0.0", Latest: "2.0.0", Status: StatusUpToDate},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveAll mismatch (-want +got):\n%s", diff)
	}
	if n := reg.callCount("foo"); n != 0 {
		t.Errorf("registry called %d times for an empty range", n)
	}
}

func TestResolveAllPreservesOrderUnderLatencyAndFailure(t *testing.T) {
	const n = 40
	targets := make([]string, n)
	declared := make(map[string]string, n)
	latest := make(map[string]string, n)
	fail := make(map[string]error)
	delays := make(map[string]time.Duration, n)
	rng := rand.New(rand.NewSource(1))

	for i := range targets {
		name := fmt.Sprintf("pkg-%02d", i)
		targets[i] = name
		declared[name] = "~1.0.0"
		latest[name] = "1.0.0"
		delays[name] = time.Duration(rng.Intn(20)) * time.Millisecond
		if i%7 == 3 {
			fail[name] = errors.New("boom")
		}
	}
	reg := &fakeRegistry{
		latest:  latest,
		fail:    fail,
		latency: func(name string) time.Duration { return delays[name] },
	}

	got := (&Resolver{Fetcher: reg}).ResolveAll(context.Background(), targets, declared)

	if len(got) != n {
		t.Fatalf("len(results) = %d, want %d", len(got), n)
	}
	for i, res := range got {
		if res.Name != targets[i] {
			t.Errorf("results[%d].Name = %q, want %q", i, res.Name, targets[i])
		}
		wantStatus := StatusUpToDate
		if fail[targets[i]] != nil {
			wantStatus = StatusError
		}
		if res.Status != wantStatus {
			t.Errorf("results[%d].Status = %v, want %v", i, res.Status, wantStatus)
		}
	}
}

func TestResolveAllWindows(t *testing.T) {
	const n = 60
	targets := make([]string, n)
	declared := make(map[string]string, n)
	for i := range targets {
		targets[i] = fmt.Sprintf("pkg-%02d", i)
		declared[targets[i]] = "1.0.0"
	}
	reg := &fakeRegistry{latency: func(string) time.Duration { return 5 * time.Millisecond }}

	got := (&Resolver{Fetcher: reg}).ResolveAll(context.Background(), targets, declared)
	if len(got) != n {
		t.Fatalf("len(results) = %d, want %d", len(got), n)
	}
	if reg.maxSeen > DefaultWindowSize {
		t.Errorf("max in flight = %d, want <= %d", reg.maxSeen, DefaultWindowSize)
	}

	window := func(name string) int {
		for i, target := range targets {
			if target == name {
				return i / DefaultWindowSize
			}
		}
		return -1
	}

	// Every call of window k must finish before any call of window k+1 starts.
	finished := make(map[int]int)
	windows := make(map[int]bool)
	for _, ev := range reg.events {
		w := window(ev.name)
		windows[w] = true
		if ev.start {
			if w > 0 && finished[w-1] != min(DefaultWindowSize, n-(w-1)*DefaultWindowSize) {
				t.Fatalf("%s started before window %d finished", ev.name, w-1)
			}
			continue
		}
		finished[w]++
	}
	if len(windows) != 3 {
		t.Errorf("windows = %d, want 3", len(windows))
	}
}

func TestResolveAllCustomWindowSize(t *testing.T) {
	targets := []string{"a", "b", "c", "d", "e"}
	declared := map[string]string{"a": "1", "b": "1", "c": "1", "d": "1", "e": "1"}
	reg := &fakeRegistry{latency: func(string) time.Duration { return 2 * time.Millisecond }}

	(&Resolver{Fetcher: reg, WindowSize: 2}).ResolveAll(context.Background(), targets, declared)
	if reg.maxSeen > 2 {
		t.Errorf("max in flight = %d, want <= 2", reg.maxSeen)
	}
}

func TestResolveAllProgress(t *testing.T) {
	targets := make([]string, 30)
	declared := make(map[string]string)
	for i := range targets {
		targets[i] = fmt.Sprintf("p%d", i)
		if i%2 == 0 {
			declared[targets[i]] = "1.0.0"
		}
	}

	var seen []int
	r := &Resolver{
		Fetcher: &fakeRegistry{},
		Progress: func(completed, total int) {
			if total != len(targets) {
				t.Errorf("total = %d, want %d", total, len(targets))
			}
			seen = append(seen, completed)
		},
	}
	r.ResolveAll(context.Background(), targets, declared)

	if len(seen) != len(targets) {
		t.Fatalf("progress called %d times, want %d", len(seen), len(targets))
	}
	for i, c := range seen {
		if c != i+1 {
			t.Fatalf("progress[%d] = %d, want %d", i, c, i+1)
		}
	}
}

func TestResolveAllEmpty(t *testing.T) {
	got := (&Resolver{Fetcher: &fakeRegistry{}}).ResolveAll(context.Background(), nil, nil)
	if len(got) != 0 {
		t.Errorf("ResolveAll(nil) = %v", got)
	}
}

// flakyRegistry fails a fixed number of times before answering.
type flakyRegistry struct {
	failures int
	err      error
	calls    atomic.Int32
}

func (f *flakyRegistry) LatestVersion(ctx context.Context, name string) (string, error) {
	if int(f.calls.Add(1)) <= f.failures {
		return "", f.err
	}
	return "2.0.0", nil
}

func TestResolveAllRetries(t *testing.T) {
	tests := []struct {
		name       string
		retries    int
		failures   int
		err        error
		wantStatus Status
		wantCalls  int32
	}{
		{"no retries by default", 0, 1, cache.Retryable(errors.New("502")), StatusError, 1},
		{"retry transient", 2, 2, cache.Retryable(errors.New("502")), StatusOutdated, 3},
		{"retries exhausted", 1, 5, cache.Retryable(errors.New("502")), StatusError, 2},
		{"permanent not retried", 3, 5, errors.New("not found"), StatusError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &flakyRegistry{failures: tt.failures, err: tt.err}
			r := &Resolver{Fetcher: reg, Retries: tt.retries, RetryDelay: time.Millisecond}

			got := r.ResolveAll(context.Background(), []string{"x"}, map[string]string{"x": "1.0.0"})
			if got[0].Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got[0].Status, tt.wantStatus)
			}
			if n := reg.calls.Load(); n != tt.wantCalls {
				t.Errorf("calls = %d, want %d", n, tt.wantCalls)
			}
		})
	}
}

func TestResolveAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := &fakeRegistry{latest: map[string]string{"a": "1.0.0"}}
	got := (&Resolver{Fetcher: reg}).ResolveAll(ctx, []string{"a", "b"}, map[string]string{"a": "1.0.0", "b": "1.0.0"})

	if len(got) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(got))
	}
	for _, res := range got {
		if res.Status != StatusError || res.Error == "" {
			t.Errorf("%s: status = %v, error = %q", res.Name, res.Status, res.Error)
		}
	}
	if reg.callCount("a") != 0 {
		t.Error("registry should not be called after cancellation")
	}
}

func TestStripRangePrefix(t *testing.T) {
	tests := map[string]string{
		"^1.2.0":  "1.2.0",
		"~1.2.0":  "1.2.0",
		"1.2.0":   "1.2.0",
		"^^1.2.0": "^1.2.0",
		">=1.0.0": ">=1.0.0",
		"latest":  "latest",
		"":        "",
	}
	for in, want := range tests {
		if got := StripRangePrefix(in); got != want {
			t.Errorf("StripRangePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
