// Package source contains the upstream listing adapters. Each adapter fetches
// raw data for a single ZIP code from one provider and normalizes it into
// domain.RawListing records tagged with the adapter's source ID. Providers
// differ in completeness: only some report occupancy or foreclosure state, and
// adapters must report "unknown" rather than fabricate a negative.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"propscout/internal/domain"
)

// Adapter is one upstream listing source.
type Adapter interface {
	// Name returns the stable source identifier used to tag records.
	Name() string

	// Fetch returns every listing the source reports for the ZIP code.
	// Individual malformed records are logged and skipped; an error is
	// returned only when the source produced no usable payload at all.
	Fetch(ctx context.Context, zipCode string) ([]domain.RawListing, error)
}

// Result is the outcome of one adapter call, collected by the fetch
// orchestrator. Exactly one of Listings or Err is meaningful.
type Result struct {
	SourceID string
	Listings []domain.RawListing
	Err      error
}

const (
	// requestTimeout bounds a single upstream HTTP request.
	requestTimeout = 30 * time.Second

	// maxRetries is the number of additional attempts after a rate-limited
	// response. Backoff doubles from backoffBase: 1s, 2s, 4s.
	maxRetries  = 3
	backoffBase = 1 * time.Second
)

// Client is the HTTP client shared by all adapters. It retries rate-limited
// requests with exponential backoff and maps upstream failures to domain
// sentinel errors.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client with the standard request timeout.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger.With(slog.String("component", "source")),
	}
}

// Get performs a GET request with the given headers and returns the response
// body. HTTP 429 responses are retried up to maxRetries times with
// exponential backoff before being reported as domain.ErrRateLimited; all
// other failures are terminal on the first occurrence.
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		body, err := c.doGet(ctx, url, header)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRateLimited(err) || attempt == maxRetries {
			break
		}

		wait := backoffBase << attempt
		c.logger.WarnContext(ctx, "rate limited, backing off",
			slog.String("url", url),
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

func (c *Client) doGet(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP 429", domain.ErrRateLimited)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, body)
	}
}

func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
