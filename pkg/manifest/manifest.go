// Package manifest reads the declared dependencies of a JavaScript project.
//
// Only the "dependencies" and "devDependencies" groups of package.json form
// the audit universe. Both groups are decoded in file order so that reports
// list packages the way the author wrote them.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
)

// FileName is the manifest file looked up in the project root.
const FileName = "package.json"

// Dependency is one declared name and its version range.
type Dependency struct {
	Name  string
	Range string
	Dev   bool // declared in devDependencies
}

// Manifest is a parsed package.json.
type Manifest struct {
	Name            string
	Version         string
	Path            string // file the manifest was read from, empty for Parse
	Dependencies    []Dependency
	DevDependencies []Dependency
}

// Options selects which dependency groups are visible.
type Options struct {
	IncludeDevDependencies bool
}

// Read loads <root>/package.json. If root is itself a file it is read
// directly. A missing file is reported as MANIFEST_NOT_FOUND, anything that
// prevents decoding as INVALID_MANIFEST.
func Read(root string) (*Manifest, error) {
	path := root
	if info, err := os.Stat(root); err == nil && info.IsDir() {
		path = filepath.Join(root, FileName)
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeManifestNotFound, "could not find %s", path)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "could not read %s", path)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "could not parse %s", path)
	}
	m.Path = path
	return m, nil
}

// Parse decodes a package.json document. Duplicate names inside one group
// resolve the way JSON.parse does: the last value wins, the first position
// is kept.
func Parse(r io.Reader) (*Manifest, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	m := &Manifest{}
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "name":
			m.Name, err = optionalString(dec)
		case "version":
			m.Version, err = optionalString(dec)
		case "dependencies":
			m.Dependencies, err = decodeGroup(dec, false)
		case "devDependencies":
			m.DevDependencies, err = decodeGroup(dec, true)
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return m, nil
}

// Declared returns the visible dependencies in declaration order. With dev
// dependencies included the runtime group comes first; a name present in
// both groups takes the development range and keeps its runtime position.
func (m *Manifest) Declared(opts Options) []Dependency {
	out := make([]Dependency, 0, len(m.Dependencies)+len(m.DevDependencies))
	out = append(out, m.Dependencies...)
	if opts.IncludeDevDependencies {
		for _, d := range m.DevDependencies {
			out = upsert(out, d)
		}
	}
	return out
}

// Lookup returns the visible dependencies keyed by name.
func (m *Manifest) Lookup(opts Options) map[string]string {
	declared := m.Declared(opts)
	out := make(map[string]string, len(declared))
	for _, d := range declared {
		out[d.Name] = d.Range
	}
	return out
}

// Names returns the visible dependency names in declaration order.
func (m *Manifest) Names(opts Options) []string {
	declared := m.Declared(opts)
	out := make([]string, len(declared))
	for i, d := range declared {
		out[i] = d.Name
	}
	return out
}

func decodeGroup(dec *json.Decoder, dev bool) ([]Dependency, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var deps []Dependency
	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return nil, err
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		rng, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: version range must be a string", name)
		}
		deps = upsert(deps, Dependency{Name: name, Range: rng, Dev: dev})
	}
	return deps, expectDelim(dec, '}')
}

func upsert(deps []Dependency, d Dependency) []Dependency {
	for i := range deps {
		if deps[i].Name == d.Name {
			deps[i] = d
			return deps
		}
	}
	return append(deps, d)
}

func optionalString(dec *json.Decoder) (string, error) {
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
