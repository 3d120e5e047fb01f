// Package npm fetches package metadata from the npm registry.
//
// One Fetch issues the packument request and the weekly-downloads request
// concurrently, parses both defensively (registries return loosely-typed
// JSON), and caches the merged result so a package appearing at many tree
// positions costs one network round trip per process.
package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/depscope/depscope/pkg/cache"
	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/httputil"
)

const (
	// DefaultRegistryURL is the public npm registry.
	DefaultRegistryURL = "https://registry.npmjs.org"

	// DefaultDownloadsURL is the npm downloads API, point query, last week.
	DefaultDownloadsURL = "https://api.npmjs.org/downloads/point/last-week"

	// DefaultCacheTTL bounds how long registry responses are reused.
	DefaultCacheTTL = 24 * time.Hour

	httpTimeout = 10 * time.Second
)

// Client is an npm registry client implementing [deps.Fetcher].
type Client struct {
	http         *http.Client
	cache        cache.Cache
	registryURL  string
	downloadsURL string
	cacheTTL     time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithRegistryURL overrides the packument endpoint base URL.
func WithRegistryURL(u string) Option {
	return func(c *Client) { c.registryURL = strings.TrimSuffix(u, "/") }
}

// WithDownloadsURL overrides the downloads endpoint base URL.
func WithDownloadsURL(u string) Option {
	return func(c *Client) { c.downloadsURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCacheTTL overrides how long responses stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// NewClient creates a Client storing responses in the given cache.
// A nil cache disables caching.
func NewClient(store cache.Cache, opts ...Option) *Client {
	if store == nil {
		store = cache.NewNullCache()
	}
	c := &Client{
		http:         &http.Client{Timeout: httpTimeout},
		cache:        store,
		registryURL:  DefaultRegistryURL,
		downloadsURL: DefaultDownloadsURL,
		cacheTTL:     DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves registry metadata for the latest version of name.
// It implements [deps.Fetcher].
func (c *Client) Fetch(ctx context.Context, name string, refresh bool) (*deps.Package, error) {
	name = strings.TrimSpace(name)
	if err := errors.ValidateNpmPackageName(name); err != nil {
		return nil, err
	}

	var pkg deps.Package
	err := c.cached(ctx, "npm:"+name, refresh, &pkg, func() error {
		return c.fetch(ctx, name, &pkg)
	})
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// cached retrieves a value from cache or executes fetch and caches the
// result. If refresh is true, the cache is bypassed and fetch always runs.
func (c *Client) cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			if json.Unmarshal(data, v) == nil {
				return nil
			}
		}
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, c.cacheTTL)
	}
	return nil
}

// fetch issues the packument and downloads requests concurrently and
// merges them into out. Download counts are best effort: a failure there
// leaves zero rather than failing the package.
func (c *Client) fetch(ctx context.Context, name string, out *deps.Package) error {
	var doc packument
	var weekly int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.getJSON(gctx, c.registryURL+"/"+encodeName(name), &doc); err != nil {
			if errors.Is(err, errors.ErrCodePackageNotFound) {
				return errors.Wrap(errors.ErrCodePackageNotFound, err, "npm package %s", name)
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var dl downloadsResponse
		if err := c.getJSON(gctx, c.downloadsURL+"/"+encodeName(name), &dl); err == nil {
			weekly = dl.Downloads
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	pkg, err := doc.toPackage(name)
	if err != nil {
		return err
	}
	pkg.Downloads = weekly
	*out = *pkg
	return nil
}

// getJSON performs an HTTP GET and JSON-decodes the response into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request %s", rawURL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "get %s", rawURL))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedResponse, err, "decode %s", rawURL)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodePackageNotFound, "not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return httputil.Retryable(&errors.RateLimitedError{RetryAfter: retryAfter})
	case resp.StatusCode >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "status %d", resp.StatusCode))
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d", resp.StatusCode)
	}
}

// encodeName escapes a package name for use as a URL path segment.
// Scoped names keep their @ but the slash becomes %2F, which both the
// registry and the downloads API expect.
func encodeName(name string) string {
	return url.PathEscape(name)
}

type downloadsResponse struct {
	Downloads int    `json:"downloads"`
	Package   string `json:"package"`
}

// packument is the registry's per-package document, reduced to the fields
// the resolver consumes. Loosely-typed fields (license, repository,
// deprecated) stay `any` and are normalized in toPackage.
type packument struct {
	Name        string                    `json:"name"`
	DistTags    distTags                  `json:"dist-tags"`
	Versions    map[string]versionDetails `json:"versions"`
	Maintainers []person                  `json:"maintainers"`
	Time        map[string]time.Time      `json:"time"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Description  string          `json:"description"`
	License      any             `json:"license"`
	Repository   any             `json:"repository"`
	Homepage     string          `json:"homepage"`
	Deprecated   any             `json:"deprecated"`
	Dependencies json.RawMessage `json:"dependencies"`
	Maintainers  []person        `json:"maintainers"`
	Dist         dist            `json:"dist"`
}

type dist struct {
	UnpackedSize int64 `json:"unpackedSize"`
}

type person struct {
	Name string `json:"name"`
}

// toPackage normalizes the packument into the resolver's Package shape,
// applying the documented defaults for missing fields.
func (d *packument) toPackage(name string) (*deps.Package, error) {
	latest := d.DistTags.Latest
	if latest == "" {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "%s: no latest dist-tag", name)
	}
	v, ok := d.Versions[latest]
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "%s: version %s not in packument", name, latest)
	}

	depNames, err := orderedKeys(v.Dependencies)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "%s: dependencies", name)
	}

	pkg := &deps.Package{
		Name:         d.Name,
		Version:      latest,
		Dependencies: depNames,
		Description:  v.Description,
		License:      extractLicense(v.License),
		Maintainers:  personNames(v.Maintainers, d.Maintainers),
		UnpackedSize: v.Dist.UnpackedSize,
		Deprecated:   isDeprecated(v.Deprecated),
		Homepage:     v.Homepage,
		Repository:   extractField(v.Repository, "url"),
	}
	if pkg.Name == "" {
		pkg.Name = name
	}
	if t, ok := d.Time[latest]; ok {
		pkg.LastPublish = &t
	}
	return pkg, nil
}

// orderedKeys returns the keys of a JSON object in declaration order.
// encoding/json maps lose ordering, and the resolver promises children in
// registry-declared order, so the object is walked token by token.
func orderedKeys(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("non-string object key")
		}
		keys = append(keys, key)

		var skip any
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// extractLicense handles both modern string licenses and the legacy
// {"type": "...", "url": "..."} object form.
func extractLicense(v any) string {
	return extractField(v, "type")
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

// isDeprecated interprets npm's deprecated field, which is either a bool
// or the deprecation message itself.
func isDeprecated(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	}
	return false
}

// personNames prefers the version-level maintainer list, falling back to
// the packument-level one.
func personNames(version, doc []person) []string {
	people := version
	if len(people) == 0 {
		people = doc
	}
	names := make([]string, 0, len(people))
	for _, p := range people {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// Ensure Client implements deps.Fetcher.
var _ deps.Fetcher = (*Client)(nil)
