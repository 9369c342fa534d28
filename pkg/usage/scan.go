package usage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
)

// DefaultExcludeDirs are never descended into. Hidden directories are
// skipped as well.
var DefaultExcludeDirs = []string{"node_modules", "dist", "build", "coverage", "out", "bower_components"}

// DefaultExtensions are the source file extensions that get scanned.
var DefaultExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts", ".vue", ".svelte"}

// Options configures a Scan.
type Options struct {
	ExcludeDirs []string    // directory names to skip, DefaultExcludeDirs if nil
	Extensions  []string    // file extensions to read, DefaultExtensions if nil
	Logger      *log.Logger // receives per-file read failures
}

// Index is the set of package names referenced by a source tree.
type Index map[string]struct{}

// Add records name as referenced.
func (idx Index) Add(name string) { idx[name] = struct{}{} }

// Has reports whether name is referenced.
func (idx Index) Has(name string) bool {
	_, ok := idx[name]
	return ok
}

// Names returns the referenced names in sorted order.
func (idx Index) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of a Scan.
type Result struct {
	Used       Index
	Files      int      // source files read
	Unreadable []string // source files skipped after a read error
}

// Scan walks root and indexes every package referenced by its source files.
// Files that cannot be read are logged and skipped; the walk itself only
// fails when root is unusable or ctx is cancelled.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidPath, err, "scan root %s", root)
	}
	if !info.IsDir() {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidPath, "scan root %s is not a directory", root)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	excluded := toSet(opts.ExcludeDirs, DefaultExcludeDirs, false)
	extensions := toSet(opts.Extensions, DefaultExtensions, true)

	res := &Result{Used: make(Index)}
	skip := func(path string, err error) {
		err = pkgerrors.Wrap(pkgerrors.ErrCodeScanRead, err, "read %s", path)
		logger.Warn("skipping unreadable path", "path", path, "err", err)
		res.Unreadable = append(res.Unreadable, path)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			skip(path, err)
			return nil
		}

		if d.IsDir() {
			if path != root && (excluded[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			skip(path, err)
			return nil
		}
		res.Files++
		for _, name := range Extract(string(data)) {
			res.Used.Add(name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func toSet(values, defaults []string, lower bool) map[string]bool {
	if values == nil {
		values = defaults
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if lower {
			v = strings.ToLower(v)
		}
		set[v] = true
	}
	return set
}
