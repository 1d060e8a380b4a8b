// Package source talks to the third-party perfume site: the suggestions
// search endpoint and the product detail pages. It owns outbound request
// shape, rate limiting, and failure translation; nothing else in the
// pipeline touches the site directly.
package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/insanerask77/tienda-perfumes/internal/model"
	"github.com/insanerask77/tienda-perfumes/internal/resilience"
)

const (
	defaultBaseURL    = "https://dupesradar.com"
	defaultSearchPath = "/wp-content/plugins/ajax-search-for-woocommerce-premium/includes/Engines/TNTSearchMySQL/Endpoints/search.php"
	defaultUserAgent  = "tienda-perfumes/1.0"

	// maxBodyBytes caps detail-page reads; product pages are well under this.
	maxBodyBytes = 2 << 20
)

// Client defines the source-site operations used by the pipeline.
type Client interface {
	// Search returns the raw candidates for one term. Candidates are not
	// filtered here; the pipeline decides what is usable.
	Search(ctx context.Context, term string) ([]model.Candidate, error)
	// FetchDetail returns the raw HTML of one product detail page.
	FetchDetail(ctx context.Context, pageURL string) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the site base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithSearchPath overrides the search endpoint path.
func WithSearchPath(p string) Option {
	return func(c *httpClient) { c.searchPath = p }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithUserAgent sets the User-Agent header on outbound requests.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) { c.userAgent = ua }
}

// WithRateLimit replaces the request rate limiter.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithRetry replaces the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

type httpClient struct {
	baseURL    string
	searchPath string
	userAgent  string
	http       *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// NewClient creates a source client with conservative defaults: 15s
// timeout, 2 req/s against the remote site, 3 attempts on transient
// failures.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:    defaultBaseURL,
		searchPath: defaultSearchPath,
		userAgent:  defaultUserAgent,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(2, 4),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResponse mirrors the suggestions payload of the search endpoint.
type searchResponse struct {
	Suggestions []model.Candidate `json:"suggestions"`
}

func (c *httpClient) Search(ctx context.Context, term string) ([]model.Candidate, error) {
	reqURL := c.baseURL + c.searchPath + "?s=" + url.QueryEscape(term)

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrapf(err, "source: decode search response for %q", term)
	}
	return result.Suggestions, nil
}

func (c *httpClient) FetchDetail(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		// Some suggestions carry no URL; reject before any request.
		return "", ErrEmptyURL
	}

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// get issues one rate-limited GET with retries on transient failures.
// Non-2xx responses become *TransportError, wrapped as transient for
// 408/429/5xx so the retry policy can tell them apart from hard 4xx.
func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	cfg := c.retry
	cfg.OnRetry = resilience.RetryLogger("source.get")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "source: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "source: create request %s", reqURL)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "*/*")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(&TransportError{URL: reqURL, Err: err}, 0)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			terr := &TransportError{URL: reqURL, StatusCode: resp.StatusCode}
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(terr, resp.StatusCode)
			}
			return nil, terr
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, resilience.NewTransientError(&TransportError{URL: reqURL, Err: err}, 0)
		}
		return body, nil
	})
}
