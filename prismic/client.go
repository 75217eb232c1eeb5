// Package prismic is a small client for the Prismic REST API v2. It resolves
// the master ref, searches documents by type or UID, and follows the opaque
// next_page URLs the API hands out.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eringen/spacetraveling/logctx"
)

// ErrNotFound is returned by ByUID when no document carries the given UID.
var ErrNotFound = errors.New("prismic: document not found")

// ErrNoMasterRef is returned when the API info lists no master ref.
var ErrNoMasterRef = errors.New("prismic: no master ref")

// StatusError reports a non-2xx answer from the API.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prismic: %s returned status %d", e.URL, e.Code)
}

// Config holds the connection settings for a repository.
type Config struct {
	Endpoint    string        // https://<repo>.cdn.prismic.io/api/v2
	AccessToken string        // optional, for private repositories
	Timeout     time.Duration // per request (default 10s)
	RefTTL      time.Duration // how long a resolved master ref is reused (default 30s)
}

// Observer is told about every API round trip. It is how metrics get wired
// without this package importing them.
type Observer func(op string, d time.Duration, err error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithObserver registers a callback invoked after each request.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observe = o
	}
}

// Client talks to one repository. It is safe for concurrent use.
type Client struct {
	endpoint *url.URL
	token    string
	http     *http.Client
	refTTL   time.Duration
	observe  Observer
	now      func() time.Time

	mu    sync.Mutex
	ref   string
	refAt time.Time
}

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q is not an absolute URL", cfg.Endpoint)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RefTTL <= 0 {
		cfg.RefTTL = 30 * time.Second
	}

	c := &Client{
		endpoint: u,
		token:    cfg.AccessToken,
		refTTL:   cfg.RefTTL,
		now:      time.Now,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MasterRef returns the ref of the published content, reusing a recent answer.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	const op = "prismic.MasterRef"

	c.mu.Lock()
	if c.ref != "" && c.now().Sub(c.refAt) < c.refTTL {
		ref := c.ref
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	var info apiInfo
	if err := c.getJSON(ctx, "api", c.withToken(*c.endpoint).String(), &info); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	for _, r := range info.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.ref, c.refAt = r.Ref, c.now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", fmt.Errorf("%s: %w", op, ErrNoMasterRef)
}

// ByType returns the first page (or opts.Page) of documents of docType.
func (c *Client) ByType(ctx context.Context, docType string, opts QueryOptions) (*Response, error) {
	q := fmt.Sprintf(`[[at(document.type,%q)]]`, docType)
	return c.search(ctx, "by_type", q, opts)
}

// ByUID returns the single document of docType whose UID is uid.
func (c *Client) ByUID(ctx context.Context, docType, uid string) (*Document, error) {
	const op = "prismic.ByUID"

	q := fmt.Sprintf(`[[at(my.%s.uid,%q)]]`, docType, uid)
	resp, err := c.search(ctx, "by_uid", q, QueryOptions{PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%s: %s/%s: %w", op, docType, uid, ErrNotFound)
	}
	doc := resp.Results[0]
	return &doc, nil
}

// Page fetches the page named by an opaque next_page cursor. Relative cursors
// resolve against the endpoint. The access token is applied here, so cursors
// never need to carry it.
func (c *Client) Page(ctx context.Context, nextPage string) (*Response, error) {
	const op = "prismic.Page"

	u, err := c.resolve(nextPage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u = c.withToken(*stripToken(u))
	var resp Response
	if err := c.getJSON(ctx, "page", u.String(), &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp.scrubCursors()
	return &resp, nil
}

// cursorParams are the query parameters a next_page URL may carry.
var cursorParams = map[string]bool{
	"ref":                  true,
	"q":                    true,
	"page":                 true,
	"pageSize":             true,
	"orderings":            true,
	"lang":                 true,
	"fetchLinks":           true,
	"integrationFieldsRef": true,
	"access_token":         true,
}

// SameOrigin reports whether cursor is a search URL of this client's API:
// same scheme and host (or relative), the documents/search path and only
// the query parameters the API itself puts in next_page.
func (c *Client) SameOrigin(cursor string) bool {
	u, err := url.Parse(cursor)
	if err != nil {
		return false
	}
	if u.IsAbs() {
		if !strings.EqualFold(u.Scheme, c.endpoint.Scheme) || !strings.EqualFold(u.Host, c.endpoint.Host) {
			return false
		}
	} else if u.Host != "" {
		return false
	}
	resolved := c.endpoint.ResolveReference(u)
	if resolved.Path != strings.TrimSuffix(c.endpoint.Path, "/")+"/documents/search" {
		return false
	}
	for key := range resolved.Query() {
		if !cursorParams[key] {
			return false
		}
	}
	return true
}

// StripToken removes the access_token parameter from a URL. Strings that do
// not parse come back empty.
func StripToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return stripToken(u).String()
}

func stripToken(u *url.URL) *url.URL {
	cp := *u
	v := cp.Query()
	if v.Has("access_token") {
		v.Del("access_token")
		cp.RawQuery = v.Encode()
	}
	return &cp
}

func (c *Client) search(ctx context.Context, kind, q string, opts QueryOptions) (*Response, error) {
	op := "prismic.search." + kind

	ref, err := c.MasterRef(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := *c.endpoint
	u.Path += "/documents/search"
	v := url.Values{}
	v.Set("ref", ref)
	v.Set("q", q)
	if opts.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		v.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Orderings != "" {
		v.Set("orderings", opts.Orderings)
	}
	if c.token != "" {
		v.Set("access_token", c.token)
	}
	u.RawQuery = v.Encode()

	var resp Response
	if err := c.getJSON(ctx, kind, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp.scrubCursors()
	return &resp, nil
}

func (c *Client) resolve(cursor string) (*url.URL, error) {
	if cursor == "" {
		return nil, errors.New("empty cursor")
	}
	u, err := url.Parse(cursor)
	if err != nil {
		return nil, fmt.Errorf("parse cursor: %w", err)
	}
	return c.endpoint.ResolveReference(u), nil
}

func (c *Client) withToken(u url.URL) *url.URL {
	if c.token != "" {
		v := u.Query()
		v.Set("access_token", c.token)
		u.RawQuery = v.Encode()
	}
	return &u
}

func (c *Client) getJSON(ctx context.Context, kind, src string, dst any) (err error) {
	start := time.Now()
	if c.observe != nil {
		defer func() { c.observe(kind, time.Since(start), err) }()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("new_request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logctx.From(ctx).Warn("prismic_http_error",
			slog.String("kind", kind),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: redact(req.URL)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// redact drops the access token from URLs that end up in errors and logs.
func redact(u *url.URL) string {
	cp := *u
	v := cp.Query()
	if v.Has("access_token") {
		v.Set("access_token", "REDACTED")
		cp.RawQuery = v.Encode()
	}
	return cp.String()
}
