// Package pm runs the project's JavaScript package manager.
//
// [Detect] picks the manager from the lockfile checked into the project, and
// [Exec] installs an exact version with it, streaming the manager's own
// output to the terminal.
package pm

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
)

// Manager identifies a package manager.
type Manager string

const (
	NPM  Manager = "npm"
	Yarn Manager = "yarn"
	PNPM Manager = "pnpm"
	Bun  Manager = "bun"
)

// lockfiles in detection priority order.
var lockfiles = []struct {
	name    string
	manager Manager
}{
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
	{"package-lock.json", NPM},
	{"npm-shrinkwrap.json", NPM},
}

// Detect returns the manager whose lockfile exists in root, or NPM.
func Detect(root string) Manager {
	for _, lf := range lockfiles {
		if _, err := os.Stat(filepath.Join(root, lf.name)); err == nil {
			return lf.manager
		}
	}
	return NPM
}

// Parse validates a manager name from configuration. An empty name yields
// an empty Manager so callers can fall back to Detect.
func Parse(name string) (Manager, error) {
	switch m := Manager(strings.ToLower(strings.TrimSpace(name))); m {
	case NPM, Yarn, PNPM, Bun:
		return m, nil
	case "":
		return "", nil
	default:
		return "", pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "unknown package manager %q", name)
	}
}

// InstallArgs returns the arguments that install name at exactly version.
func (m Manager) InstallArgs(name, version string) []string {
	spec := name + "@" + version
	switch m {
	case Yarn, PNPM, Bun:
		return []string{"add", spec}
	default:
		return []string{"install", spec}
	}
}

// Command renders the install invocation for display.
func (m Manager) Command(name, version string) string {
	return string(m) + " " + strings.Join(m.InstallArgs(name, version), " ")
}

// Exec installs packages by running the manager binary in Dir.
type Exec struct {
	Manager Manager
	Dir     string    // project root, used as working directory
	Binary  string    // executable, the manager name if empty
	Stdout  io.Writer // os.Stdout if nil
	Stderr  io.Writer // os.Stderr if nil
}

// Install runs "<manager> install|add name@version" and waits for it.
func (e *Exec) Install(ctx context.Context, name, version string) error {
	if err := pkgerrors.ValidateNpmPackageName(name); err != nil {
		return err
	}
	m := e.Manager
	if m == "" {
		m = NPM
	}
	bin := e.Binary
	if bin == "" {
		bin = string(m)
	}

	cmd := exec.CommandContext(ctx, bin, m.InstallArgs(name, version)...)
	cmd.Dir = e.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = orDefault(e.Stdout, os.Stdout)
	cmd.Stderr = orDefault(e.Stderr, os.Stderr)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", m.Command(name, version), err)
	}
	return nil
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
