// Package cargurus provides the price-trends API client and the extraction
// of raw price points from its loosely-typed responses.
package cargurus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

const (
	// DefaultBaseURL is the price-trends research endpoint.
	DefaultBaseURL = "https://www.cargurus.com/research/price-trends"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

	// One request per second between chunk fetches. The limiter's burst of
	// 1 means the first request goes out immediately and each subsequent
	// request waits out the courtesy interval.
	courtesyRequestsPerSecond = 1

	sessionCookieName = "JSESSIONID"
	dataRouteParam    = "routes/($intl).research.price-trends.$makeModelSlug"

	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// Client fetches historical price data for one vehicle entity per call.
// Fetches are strictly sequential; the embedded rate limiter enforces the
// courtesy pause between chunk requests.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	baseURL       string
	sessionCookie string
	userAgent     string
	retryAttempts int
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithCourtesyRate overrides the pacing between requests.
func WithCourtesyRate(requestsPerSecond float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1) }
}

// WithRetryAttempts enables bounded retries for transient transport failures.
// Zero (the default) disables retrying entirely; the courtesy pacing is
// preventive, not reactive.
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) { c.retryAttempts = attempts }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a price-trends client authenticated by a JSESSIONID
// session cookie.
func NewClient(sessionCookie string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:       rate.NewLimiter(rate.Limit(courtesyRequestsPerSecond), 1),
		baseURL:       DefaultBaseURL,
		sessionCookie: sessionCookie,
		userAgent:     defaultUserAgent,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPriceHistory requests the price history for one vehicle entity over
// one calendar-month chunk and returns the decoded response document.
//
// Authentication problems (HTTP 401/403 or a redirect to a login page) fail
// with kind AuthenticationFailed, HTTP 429 with RateLimited, and network
// errors or 5xx responses with TransportFailure. All are fatal for the run.
func (c *Client) FetchPriceHistory(ctx context.Context, modelPath, entityID string, chunk models.DateRange) (any, error) {
	const op = "cargurus.FetchPriceHistory"

	if modelPath == "" {
		return nil, errkind.New(errkind.InvalidArgument, op, "model path cannot be empty")
	}
	if entityID == "" {
		return nil, errkind.New(errkind.InvalidArgument, op, "entity ID cannot be empty")
	}
	if err := chunk.Validate(); err != nil {
		return nil, errkind.Wrap(errkind.InvalidArgument, op, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errkind.Wrap(errkind.TransportFailure, op, err)
	}

	requestURL := c.buildURL(modelPath, entityID, chunk)

	c.logger.Debug("fetching price history",
		"model_path", modelPath,
		"entity_id", entityID,
		"chunk", chunk.String())

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errkind.Wrap(errkind.UnexpectedResponseFormat, op, err)
	}
	return doc, nil
}

// HealthCheck verifies the session cookie is still accepted by issuing a
// minimal request for the most recent day and checking the response shape.
// An empty result is healthy; authentication, transport, and format problems
// are reported before a long run wastes its chunk fetches on them.
func (c *Client) HealthCheck(ctx context.Context, modelPath, entityID string) error {
	const op = "cargurus.HealthCheck"

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	chunk := models.DateRange{Start: now.AddDate(0, 0, -1), End: now}
	doc, err := c.FetchPriceHistory(healthCtx, modelPath, entityID, chunk)
	if err != nil {
		return errkind.Wrap(errkind.KindOf(err), op, err)
	}
	if _, err := ExtractPricePoints(doc); err != nil && !errkind.IsKind(err, errkind.NoDataAvailable) {
		return errkind.Wrap(errkind.KindOf(err), op, err)
	}
	return nil
}

func (c *Client) buildURL(modelPath, entityID string, chunk models.DateRange) string {
	params := url.Values{}
	params.Set("entityIds", entityID)
	params.Set("startDate", strconv.FormatInt(chunk.Start.UnixMilli(), 10))
	params.Set("endDate", strconv.FormatInt(chunk.End.UnixMilli(), 10))
	params.Set("_data", dataRouteParam)
	return c.baseURL + "/" + url.PathEscape(modelPath) + "?" + params.Encode()
}

// get performs the HTTP request, optionally retrying transient transport
// failures when retries are enabled.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	if c.retryAttempts <= 0 {
		return c.getOnce(ctx, requestURL)
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = initialRetryDelay
	strategy.MaxInterval = maxRetryDelay
	strategy.MaxElapsedTime = 0

	var body []byte
	operation := func() error {
		b, err := c.getOnce(ctx, requestURL)
		if err != nil {
			if errkind.IsKind(err, errkind.TransportFailure) {
				c.logger.Warn("transient transport failure, will retry", "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		body = b
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(strategy, uint64(c.retryAttempts)), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) getOnce(ctx context.Context, requestURL string) ([]byte, error) {
	const op = "cargurus.get"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errkind.Wrap(errkind.InvalidArgument, op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Cookie", sessionCookieName+"="+c.sessionCookie)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errkind.Wrap(errkind.TransportFailure, op, err)
	}
	defer resp.Body.Close()

	// The upstream answers an expired session with a redirect to a login
	// page rather than a 401.
	if isLoginURL(resp.Request.URL) {
		return nil, errkind.New(errkind.AuthenticationFailed, op,
			"session redirected to login page, provide a valid JSESSIONID")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errkind.Newf(errkind.AuthenticationFailed, op,
			"invalid session cookie (status %d), provide a valid JSESSIONID", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errkind.New(errkind.RateLimited, op,
			"rate limited by upstream, try again later")
	case resp.StatusCode >= 500:
		return nil, errkind.Newf(errkind.TransportFailure, op,
			"server error %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, errkind.Newf(errkind.TransportFailure, op,
			"unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errkind.Wrap(errkind.TransportFailure, op, err)
	}
	return body, nil
}

func isLoginURL(u *url.URL) bool {
	if u == nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.String()), "login")
}

// String implements fmt.Stringer without exposing the session cookie.
func (c *Client) String() string {
	return fmt.Sprintf("cargurus.Client{baseURL: %s}", c.baseURL)
}
