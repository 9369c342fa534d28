package usage

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRequireSpecifiers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"double quotes", `const a = require("left-pad");`, []string{"left-pad"}},
		{"single quotes", `const a = require('lodash/fp');`, []string{"lodash/fp"}},
		{"spaces", `require ( 'x' )`, []string{"x"}},
		{"several", "require('a')\nrequire(\"b\")", []string{"a", "b"}},
		{"computed", `require(name)`, nil},
		{"template literal", "require(`x`)", nil},
		{"mismatched quotes", `require("x')`, nil},
		{"identifier suffix", `myrequire("x")`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, RequireSpecifiers(tt.src)); diff != "" {
				t.Errorf("RequireSpecifiers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImportSpecifiers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"default", `import React from "react";`, []string{"react"}},
		{"named", `import { a, b } from 'pkg';`, []string{"pkg"}},
		{"namespace", `import * as fs from "fs-extra"`, []string{"fs-extra"}},
		{"type only", `import type { Foo } from "@scope/types"`, []string{"@scope/types"}},
		{"side effect", `import "./styles.css";`, []string{"./styles.css"}},
		{"re-export", `export { x } from "lib";`, []string{"lib"}},
		{"star re-export", `export * from 'barrel'`, []string{"barrel"}},
		{"multi-line", "import {\n  a,\n  b,\n} from \"multi\";", []string{"multi"}},
		{"source order", "import 'first'\nimport x from 'second'\nimport 'third'", []string{"first", "second", "third"}},
		{"dynamic import ignored", `const m = await import("lazy")`, nil},
		{"local export ignored", `export const from = 1;`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ImportSpecifiers(tt.src)); diff != "" {
				t.Errorf("ImportSpecifiers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		spec   string
		want   string
		wantOK bool
	}{
		{"left-pad", "left-pad", true},
		{"lodash/fp", "lodash", true},
		{"@scope/pkg", "@scope/pkg", true},
		{"@scope/pkg/sub/path", "@scope/pkg", true},
		{" react ", "react", true},
		{"./local-helper", "", false},
		{"../up", "", false},
		{".", "", false},
		{"/abs/path", "", false},
		{"#internal", "", false},
		{"node:fs", "", false},
		{"https://cdn.example.com/x.js", "", false},
		{"@scope", "", false},
		{"@scope/", "", false},
		{"@/components/Button", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, ok := PackageName(tt.spec)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PackageName(%q) = (%q, %v), want (%q, %v)", tt.spec, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	src := `
import a from "@scope/pkg/sub";
const b = require('left-pad');
const c = require("./local-helper");
import "left-pad";
import fs from "node:fs";
`
	want := []string{"@scope/pkg", "left-pad"}
	if diff := cmp.Diff(want, Extract(src)); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}
