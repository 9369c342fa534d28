// Package audit turns declared dependencies into an audit report.
//
// # Pipeline
//
// An audit has three steps, each a separate type in this package:
//
//	Resolver.ResolveAll  targets → []Result   (registry, windowed)
//	Report               []Result + usage → []Record
//	Updater.Apply        []Record → []UpdateOutcome  (optional)
//
// [ClassifyUsage] derives the unused runtime dependencies from a usage
// index; [Summarize] counts a report for display.
//
// # Resolution
//
// [Resolver] resolves targets in consecutive windows of at most
// [DefaultWindowSize] parallel registry calls. A window is joined before the
// next one starts. Results keep the order of the targets no matter when each
// call finishes, and a failed call only marks its own target as
// [StatusError].
//
// Versions are compared as strings after removing one leading "^" or "~"
// from the declared range. "^1.2.0" is up to date when the registry's latest
// is exactly "1.2.0" and outdated otherwise. No semver range logic applies.
package audit
