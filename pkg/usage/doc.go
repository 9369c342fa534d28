// Package usage finds which third-party packages a source tree references.
//
// # Overview
//
// [Scan] walks a project directory, reads every JavaScript or TypeScript
// source file and collects the top-level package name of each module
// specifier into an [Index]. The audit compares the index against the
// manifest's runtime dependencies to report declarations nothing imports.
//
// # Extraction Rules
//
// Specifiers are found lexically with two rules, exposed as pure functions:
//
//   - [RequireSpecifiers]: require("x") and require('x')
//   - [ImportSpecifiers]: import ... from "x", import "x", export ... from "x"
//
// [PackageName] reduces a specifier to the package that provides it:
// "@scope/pkg/sub" becomes "@scope/pkg" and "lodash/fp" becomes "lodash".
// Relative and absolute paths, subpath imports ("#internal") and scheme
// prefixed specifiers such as "node:fs" are local and produce no name.
//
// # Approximation
//
// This is not a module resolver. Known sources of error:
//
//   - Matches inside comments and string literals count as references
//   - Dynamic import() and computed require arguments are not seen
//   - Re-exports through barrel files are attributed to the barrel only
//   - Conditional requires count even when the branch never runs
//   - Bundler aliases look like package names unless they start with "@/"
//
// A package reported as unused should be checked by hand before removal.
package usage
