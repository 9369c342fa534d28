// Package pkg provides the core libraries for depcheck, an npm dependency
// auditor.
//
// # Overview
//
// depcheck compares the dependencies declared in a project's package.json
// with the versions the npm registry tags as latest, optionally flags runtime
// dependencies no source file imports, and can move outdated packages to
// their latest version through the project's package manager.
//
// # Architecture
//
// The data flow of one audit run:
//
//	package.json
//	     ↓
//	[manifest] (declared dependencies)
//	     ↓
//	[audit] Resolver ──── registry ([integrations/npm])
//	[usage] Scan     ──── source tree       (concurrently)
//	     ↓
//	[audit] Report (ordered records)
//	     ↓
//	[audit] Updater (optional, sequential, via [pm])
//
// [pipeline] wires these stages together for the CLI.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/depcheck/pkg/integrations/npm"
//	    "github.com/matzehuels/depcheck/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(npm.NewClient(npm.Options{}), nil, nil)
//	result, err := runner.Audit(ctx, pipeline.Options{Root: "./web", CheckUnused: true})
//	if err != nil {
//	    return err // only a missing or invalid package.json ends a run
//	}
//	for _, rec := range result.Records {
//	    fmt.Println(rec.Name, rec.Installed, rec.Latest, rec.Status)
//	}
//
// # Main Packages
//
// [manifest] - Reads package.json, keeping declaration order and merging
// runtime and development dependencies.
//
// [audit] - Status taxonomy, the windowed batch resolver, the reporter and
// the update executor.
//
// [usage] - Lexical import/require extraction and the source tree scan.
//
// [integrations] - Shared HTTP client with status classification and caching;
// [integrations/npm] implements the registry lookup.
//
// [cache] - Null, file and Redis response caches plus retry helpers.
//
// [config] - TOML configuration with environment overrides.
//
// [pm] - Package manager detection and install command execution.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for audit, HTTP and cache events.
//
// [manifest]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/manifest
// [audit]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/audit
// [usage]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/usage
// [integrations]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/integrations
// [integrations/npm]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/integrations/npm
// [cache]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/config
// [pm]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/pm
// [errors]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/depcheck/pkg/pipeline
package pkg
