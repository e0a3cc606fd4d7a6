package commercetools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/vsinha/pluanalyzer/pkg/infrastructure/config"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/metrics"
	apperrors "github.com/vsinha/pluanalyzer/pkg/shared/errors"
)

// tokenExpiryBuffer refreshes tokens this long before they expire
const tokenExpiryBuffer = 60 * time.Second

// Client talks to the storefront's project API with client credentials
type Client struct {
	cfg        config.CommerceToolsConfig
	apiBase    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	fetches    *atomic.Int64
	limiter    *rate.Limiter
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient sets the client used for API and token calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics counts every call in the collector
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for per-call debug output
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NormalizeURL adds https:// when no scheme is given and drops trailing slashes
func NormalizeURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}

// NewClient creates a client; it fails when credentials are incomplete
func NewClient(cfg config.CommerceToolsConfig, opts ...Option) (*Client, error) {
	if !cfg.Configured() {
		return nil, apperrors.NewUnavailableError("CommerceTools credentials not configured")
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	c := &Client{
		cfg:        cfg,
		apiBase:    NormalizeURL(cfg.APIURL) + "/" + cfg.ProjectKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		fetches:    new(atomic.Int64),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     NormalizeURL(cfg.AuthURL) + "/oauth/token",
		Scopes: []string{
			"view_products:" + cfg.ProjectKey,
			"view_orders:" + cfg.ProjectKey,
			"view_stores:" + cfg.ProjectKey,
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	counted := &countingTokenSource{src: cc.TokenSource(tokenCtx), fetches: c.fetches}
	c.tokens = oauth2.ReuseTokenSourceWithExpiry(nil, counted, tokenExpiryBuffer)

	return c, nil
}

// countingTokenSource counts the token requests that actually reach the auth server
type countingTokenSource struct {
	src     oauth2.TokenSource
	fetches *atomic.Int64
}

func (s *countingTokenSource) Token() (*oauth2.Token, error) {
	s.fetches.Add(1)
	return s.src.Token()
}

// token returns a valid access token, recording an auth call when one was fetched
func (c *Client) token(log *RequestLog) (string, error) {
	before := c.fetches.Load()
	tok, err := c.tokens.Token()
	if fetched := c.fetches.Load() - before; fetched > 0 {
		c.record(log, ModuleAuth, "oauth_token", int(fetched))
	}
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.ErrorDescription != "" {
			return "", apperrors.NewUpstreamError("Authentication failed: " + rErr.ErrorDescription)
		}
		if rErr != nil && rErr.Response != nil {
			return "", apperrors.NewUpstreamError("Authentication failed: " + http.StatusText(rErr.Response.StatusCode))
		}
		return "", apperrors.NewUpstreamError("Authentication failed", err.Error())
	}
	return tok.AccessToken, nil
}

// Authenticate makes sure a token can be obtained
func (c *Client) Authenticate(ctx context.Context, log *RequestLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.token(log)
	return err
}

func (c *Client) record(log *RequestLog, module, operation string, count int) {
	total := log.Record(module, operation, count)
	c.metrics.ObserveSubrequest(module)
	c.logger.Debug("storefront subrequest",
		"module", module,
		"operation", operation,
		"count", count,
		"total", total,
	)
}

// errorBody is the error envelope returned by the API
type errorBody struct {
	Message string `json:"message"`
}

// getJSON performs a GET with retry on 429 and 503 and decodes the body into out
func (c *Client) getJSON(ctx context.Context, log *RequestLog, module, path string, query map[string]string, out any) error {
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		accessToken, err := c.token(log)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
		if err != nil {
			return fmt.Errorf("create request failed: %w", err)
		}
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		operation := "fetch_page"
		if attempt > 1 {
			operation = fmt.Sprintf("fetch_page_retry%d", attempt)
		}
		c.record(log, module, operation, 1)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return apperrors.NewUpstreamError("Request failed: " + err.Error())
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return fmt.Errorf("read body failed: %w", readErr)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("unmarshal %s response failed: %w", module, err)
			}
			return nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable
		if retryable && attempt < c.cfg.MaxRetries {
			delay := c.cfg.RetryBaseDelay * time.Duration(1<<attempt)
			c.logger.Warn("storefront request throttled, retrying",
				"module", module,
				"status", resp.StatusCode,
				"attempt", attempt,
				"delay", delay,
			)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		var eb errorBody
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			message = eb.Message
		}
		return apperrors.NewUpstreamError("Request failed: "+message, fmt.Sprintf("status %d", resp.StatusCode))
	}
	return apperrors.NewUpstreamError("Max retries exceeded")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pagedResult is the common envelope of paged API queries
type pagedResult[T any] struct {
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Count   int `json:"count"`
	Total   int `json:"total"`
	Results []T `json:"results"`
}

// paginate walks a paged query by offset until total results have been read
func paginate[T any](
	ctx context.Context,
	c *Client,
	log *RequestLog,
	module, path string,
	query map[string]string,
	limit int,
	page func(results []T, fetched, total int),
) error {
	offset := 0
	for {
		params := make(map[string]string, len(query)+2)
		for k, v := range query {
			params[k] = v
		}
		params["limit"] = fmt.Sprint(limit)
		params["offset"] = fmt.Sprint(offset)

		var result pagedResult[T]
		if err := c.getJSON(ctx, log, module, path, params, &result); err != nil {
			return err
		}

		offset += len(result.Results)
		page(result.Results, offset, result.Total)

		if len(result.Results) == 0 || offset >= result.Total {
			return nil
		}
	}
}
