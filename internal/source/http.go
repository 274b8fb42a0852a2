package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aendu/latin-events/internal/config"
	"github.com/aendu/latin-events/internal/logger"
)

// maxBodySize caps a single response body.
const maxBodySize = 16 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client performs GET requests with a per-request timeout, a fixed
// User-Agent and exponential backoff on transient failures.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxRetries int
	initial    time.Duration
	maxBackoff time.Duration
}

// NewClient creates a Client from the HTTP settings.
func NewClient(cfg config.HTTP) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		initial:    cfg.Backoff,
		maxBackoff: cfg.MaxBackoff,
	}
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if c.initial > 0 {
		exp.InitialInterval = c.initial
	}
	if c.maxBackoff > 0 {
		exp.MaxInterval = c.maxBackoff
	}
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)
}

// Get fetches rawURL with params merged into its query and returns the body.
// 4xx responses other than 429 fail immediately; network errors, 429 and
// 5xx are retried.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, header http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	target := u.String()

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		b, err := c.do(ctx, target, header)
		if err != nil {
			if isPermanent(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("request failed, retrying", logger.Fields{
			"url":     target,
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	if err := backoff.RetryNotify(op, c.newBackOff(ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

// isPermanent reports whether err carries a status that retrying cannot fix.
func isPermanent(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && !se.Temporary()
}

func (c *Client) do(ctx context.Context, target string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
