package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultMarket is the market used to restrict catalog lookups.
	DefaultMarket = "US"

	// DefaultTimeout bounds every catalog HTTP call.
	DefaultTimeout = 10 * time.Second
)

// CredentialSource hands out bearer tokens for the catalog API.
type CredentialSource interface {
	Acquire(ctx context.Context) (*oauth2.Token, error)
}

// Invalidator is implemented by credential sources that cache tokens. A
// session calls Invalidate when the catalog rejects its token, so the next
// session acquires a fresh one.
type Invalidator interface {
	Invalidate()
}

// Catalog opens authenticated sessions against the catalog API. It owns the
// transport shared by all sessions, including the rate limiter.
type Catalog struct {
	credentials CredentialSource
	base        http.RoundTripper
	transport   http.RoundTripper
	limiter     *rate.Limiter
	timeout     time.Duration
	baseURL     string
	market      string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithBaseURL points the catalog at an alternative API root.
func WithBaseURL(url string) Option {
	return func(c *Catalog) {
		c.baseURL = url
	}
}

// WithMarket sets the market used for top tracks, albums and album tracks.
func WithMarket(market string) Option {
	return func(c *Catalog) {
		if market != "" {
			c.market = market
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit limits catalog calls to r per second with the given burst,
// across all sessions. A non-positive r disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Catalog) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithTransport sets the base round tripper. Defaults to [http.DefaultTransport].
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Catalog) {
		if rt != nil {
			c.base = rt
		}
	}
}

// NewCatalog creates a Catalog that authenticates with credentials.
func NewCatalog(credentials CredentialSource, opts ...Option) *Catalog {
	c := &Catalog{
		credentials: credentials,
		base:        http.DefaultTransport,
		timeout:     DefaultTimeout,
		market:      DefaultMarket,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transport = c.base
	if c.limiter != nil {
		c.transport = &limitedTransport{base: c.base, limiter: c.limiter}
	}
	return c
}

// Market returns the configured market.
func (c *Catalog) Market() string {
	return c.market
}

// Session acquires one credential and returns a Client that uses it for all
// of its calls. Credential errors are wrapped, not classified.
func (c *Catalog) Session(ctx context.Context) (*Client, error) {
	token, err := c.credentials.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring credential: %w", err)
	}

	httpClient := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Base:   c.transport,
			Source: oauth2.StaticTokenSource(token),
		},
	}

	var opts []spotify.ClientOption
	if c.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.baseURL))
	}

	client := New(spotify.New(httpClient, opts...), c.market)
	if inv, ok := c.credentials.(Invalidator); ok {
		client.onUnauthorized = inv.Invalidate
	}
	return client, nil
}
