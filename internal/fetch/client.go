// Package fetch talks to the two public statistics APIs the dashboard reads:
// IBGE's aggregates service (SIDRA) and Banco Central's SGS time series.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Duddu64/economia/internal/dataset"
)

// Timeout bounds every request. No retry is attempted after it expires.
const Timeout = 30 * time.Second

const (
	DefaultIBGEBaseURL = "https://servicodados.ibge.gov.br/api/v3/agregados"
	DefaultBCBBaseURL  = "https://api.bcb.gov.br/dados/serie"
	defaultUserAgent   = "economia-painel/1.0"
)

// Client issues GET requests against the IBGE and BCB endpoints.
type Client struct {
	http      *http.Client
	ibgeBase  string
	bcbBase   string
	userAgent string
	log       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithIBGEBaseURL points the aggregates calls at base.
func WithIBGEBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.ibgeBase = base
		}
	}
}

// WithBCBBaseURL points the time-series calls at base.
func WithBCBBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.bcbBase = base
		}
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout replaces the request time bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client with the public endpoints and a 30s timeout.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: Timeout},
		ibgeBase:  DefaultIBGEBaseURL,
		bcbBase:   DefaultBCBBaseURL,
		userAgent: defaultUserAgent,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Close releases idle keep-alive connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// get performs one GET and returns the body of a 2xx answer. Every failure
// is a *dataset.NetworkError.
func (c *Client) get(ctx context.Context, op, url string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &dataset.NetworkError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.String("url", url), zap.Error(err))
		return nil, &dataset.NetworkError{Op: op, URL: url, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		c.log.Warn("unexpected status", zap.String("op", op), zap.String("url", url), zap.Int("status", res.StatusCode))
		return nil, &dataset.NetworkError{
			Op:         op,
			URL:        url,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", res.Status),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &dataset.NetworkError{Op: op, URL: url, Err: fmt.Errorf("error reading response body: %w", err)}
	}
	c.log.Debug("request done",
		zap.String("op", op),
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))
	return body, nil
}
