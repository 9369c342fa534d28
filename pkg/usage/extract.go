package usage

import (
	"regexp"
	"sort"
	"strings"
)

var (
	requireRe = regexp.MustCompile(`\brequire\s*\(\s*(?:"([^"\n]+)"|'([^'\n]+)')\s*\)`)

	// fromRe spans newlines so multi-line import lists are matched.
	fromRe = regexp.MustCompile(`\b(?:import|export)\s+[^'";]*?\sfrom\s*(?:"([^"\n]+)"|'([^'\n]+)')`)

	sideEffectRe = regexp.MustCompile(`\bimport\s*(?:"([^"\n]+)"|'([^'\n]+)')`)
)

// RequireSpecifiers returns the arguments of every require call with a
// literal string argument, in source order.
func RequireSpecifiers(src string) []string {
	return specifiers(src, requireRe)
}

// ImportSpecifiers returns the module specifiers of ES import and
// re-export statements, in source order.
func ImportSpecifiers(src string) []string {
	return specifiers(src, fromRe, sideEffectRe)
}

// Extract returns the unique package names referenced by src.
func Extract(src string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, specs := range [][]string{ImportSpecifiers(src), RequireSpecifiers(src)} {
		for _, spec := range specs {
			name, ok := PackageName(spec)
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// PackageName maps a module specifier to the package providing it.
// It reports false for specifiers that do not name an installed package.
func PackageName(spec string) (string, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", false
	}
	switch spec[0] {
	case '.', '/', '#':
		return "", false
	}

	parts := strings.Split(spec, "/")
	if strings.Contains(parts[0], ":") {
		return "", false
	}
	if spec[0] == '@' {
		if len(parts) < 2 || len(parts[0]) < 2 || parts[1] == "" {
			return "", false
		}
		return parts[0] + "/" + parts[1], true
	}
	return parts[0], true
}

type match struct {
	pos  int
	spec string
}

// specifiers collects the quoted group of every match of res, ordered by
// position in src.
func specifiers(src string, res ...*regexp.Regexp) []string {
	var matches []match
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
			if m[2] >= 0 {
				matches = append(matches, match{m[0], src[m[2]:m[3]]})
			} else {
				matches = append(matches, match{m[0], src[m[4]:m[5]]})
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.spec
	}
	return out
}
