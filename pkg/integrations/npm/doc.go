// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// The audit only needs one fact per package: the version the registry tags
// as "latest". [Client.LatestVersion] fetches the abbreviated package
// document and reads dist-tags.latest from it.
//
// # Usage
//
//	client := npm.NewClient(npm.Options{Timeout: 30 * time.Second})
//	latest, err := client.LatestVersion(ctx, "@scope/pkg")
//
// Scoped names are sent as a single escaped path segment (@scope%2Fpkg).
//
// # Private Registries
//
// Set [Options.BaseURL] to point at a mirror or a private registry and
// [Options.Token] to send a bearer token with every request.
//
// # Caching
//
// Caching is off unless [Options.Cache] is set. Entries are keyed by
// registry and package name and expire after [Options.CacheTTL].
package npm
