package npm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/depcheck/pkg/buildinfo"
	"github.com/matzehuels/depcheck/pkg/cache"
	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
	"github.com/matzehuels/depcheck/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// abbreviatedMetadata asks the registry for the install-time document,
// which still carries dist-tags but drops readmes and per-version details.
const abbreviatedMetadata = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

// Options configures a Client. The zero value talks to the public registry
// without caching and with the default timeout.
type Options struct {
	BaseURL  string        // registry root, DefaultRegistry if empty
	Token    string        // bearer token for private registries
	Timeout  time.Duration // per-request timeout
	Cache    cache.Cache   // response cache, nil disables caching
	CacheTTL time.Duration // lifetime of cached latest versions
	Keyer    cache.Keyer   // cache key derivation, DefaultKeyer if nil
}

// Client looks up the latest published version of npm packages.
// It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
}

// NewClient creates a registry client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultRegistry
	}
	keyer := opts.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	headers := map[string]string{
		"Accept":     abbreviatedMetadata,
		"User-Agent": "depcheck/" + buildinfo.Version,
	}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}
	return &Client{
		Client:  integrations.NewClient(opts.Cache, opts.CacheTTL, opts.Timeout, headers),
		baseURL: base,
		keyer:   keyer,
	}
}

// BaseURL returns the registry root the client queries.
func (c *Client) BaseURL() string { return c.baseURL }

// LatestVersion returns the version the registry tags as "latest" for name.
// Every failure is returned as a REGISTRY_ERROR; a missing package, a
// non-success status and a document without dist-tags.latest all qualify.
// Transient failures keep their retryable marker in the error chain.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := pkgerrors.ValidateNpmPackageName(name); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrCodeRegistry, err, "fetch %s", name)
	}

	var doc registryResponse
	err := c.Cached(ctx, c.keyer.RegistryKey(c.baseURL, name), &doc, func() error {
		return c.fetch(ctx, name, &doc)
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrCodeRegistry, err, "fetch %s", name)
	}
	return doc.DistTags.Latest, nil
}

func (c *Client) fetch(ctx context.Context, name string, doc *registryResponse) error {
	if err := c.Get(ctx, c.packageURL(name), doc); err != nil {
		return err
	}
	if doc.DistTags.Latest == "" {
		return fmt.Errorf("%w: no latest dist-tag", integrations.ErrMalformed)
	}
	return nil
}

// packageURL escapes the scope separator so "@scope/pkg" becomes a single
// path segment, which is what every npm compatible registry expects.
func (c *Client) packageURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

type registryResponse struct {
	DistTags distTags `json:"dist-tags"`
}

type distTags struct {
	Latest string `json:"latest"`
}
