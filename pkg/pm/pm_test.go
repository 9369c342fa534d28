package pm

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  Manager
	}{
		{"no lockfile", nil, NPM},
		{"npm", []string{"package-lock.json"}, NPM},
		{"yarn", []string{"yarn.lock"}, Yarn},
		{"pnpm", []string{"pnpm-lock.yaml"}, PNPM},
		{"bun binary lockfile", []string{"bun.lockb"}, Bun},
		{"bun text lockfile", []string{"bun.lock"}, Bun},
		{"pnpm wins over npm", []string{"package-lock.json", "pnpm-lock.yaml"}, PNPM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if got := Detect(dir); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Manager
		wantErr bool
	}{
		{"npm", NPM, false},
		{" Yarn ", Yarn, false},
		{"PNPM", PNPM, false},
		{"bun", Bun, false},
		{"", "", false},
		{"cargo", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("Parse(%q) = %q, %v", tt.in, got, err)
		}
		if err != nil && !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidConfig) {
			t.Errorf("Parse(%q) code = %q", tt.in, pkgerrors.GetCode(err))
		}
	}
}

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		m    Manager
		want []string
	}{
		{NPM, []string{"install", "lodash@4.17.21"}},
		{Yarn, []string{"add", "lodash@4.17.21"}},
		{PNPM, []string{"add", "lodash@4.17.21"}},
		{Bun, []string{"add", "lodash@4.17.21"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.m.InstallArgs("lodash", "4.17.21")); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.m, diff)
		}
	}
	if got := Yarn.Command("@scope/pkg", "1.0.0"); got != "yarn add @scope/pkg@1.0.0" {
		t.Errorf("Command() = %q", got)
	}
}

// fakeManager writes a shell script that records its arguments and working
// directory, then exits with code.
func fakeManager(t *testing.T, code int) (bin, log string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	log = filepath.Join(dir, "calls.log")
	bin = filepath.Join(dir, "fake-pm")
	script := "#!/bin/sh\necho \"$(pwd) $*\" >> " + log + "\necho installing\nexit " + string(rune('0'+code)) + "\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin, log
}

func TestExecInstall(t *testing.T) {
	bin, logPath := fakeManager(t, 0)
	project := t.TempDir()
	var stdout bytes.Buffer

	e := &Exec{Manager: PNPM, Dir: project, Binary: bin, Stdout: &stdout, Stderr: &stdout}
	if err := e.Install(context.Background(), "left-pad", "1.3.0"); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	calls, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(string(calls))
	realProject, _ := filepath.EvalSymlinks(project)
	if got != project+" add left-pad@1.3.0" && got != realProject+" add left-pad@1.3.0" {
		t.Errorf("invocation = %q", got)
	}
	if !strings.Contains(stdout.String(), "installing") {
		t.Errorf("manager output not passed through: %q", stdout.String())
	}
}

func TestExecInstallFailure(t *testing.T) {
	bin, _ := fakeManager(t, 3)
	var sink bytes.Buffer
	e := &Exec{Manager: NPM, Dir: t.TempDir(), Binary: bin, Stdout: &sink, Stderr: &sink}

	err := e.Install(context.Background(), "left-pad", "1.3.0")
	if err == nil {
		t.Fatal("Install() should fail on non-zero exit")
	}
	if !strings.Contains(err.Error(), "npm install left-pad@1.3.0") {
		t.Errorf("error should name the command: %v", err)
	}
}

func TestExecInstallRejectsBadName(t *testing.T) {
	e := &Exec{Binary: "/nonexistent"}
	err := e.Install(context.Background(), "; rm -rf /", "1.0.0")
	if !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidPackage) {
		t.Errorf("error = %v, want INVALID_PACKAGE", err)
	}
}
