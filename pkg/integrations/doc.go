// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// The shared [Client] type wraps net/http with the behavior every registry
// client needs:
//
//   - A per-request timeout, so one slow registry call cannot stall an audit
//   - Status classification: 404 maps to [ErrNotFound], 429 and 5xx map to a
//     retryable [ErrNetwork], anything else non-200 to a plain [ErrNetwork]
//   - Optional response caching via [cache.Cache]
//   - Request events through the observability HTTP hooks
//
// The client never retries on its own. Retries are a policy of the batch
// resolver, which inspects [cache.IsRetryable] on the returned error.
//
// Registry specific clients live in subpackages:
//
//   - [npm]: latest-version lookups against an npm compatible registry
//
// [npm]: github.com/matzehuels/depcheck/pkg/integrations/npm
// [cache.Cache]: github.com/matzehuels/depcheck/pkg/cache.Cache
// [cache.IsRetryable]: github.com/matzehuels/depcheck/pkg/cache.IsRetryable
package integrations
