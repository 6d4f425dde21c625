// Package auth obtains bearer tokens for the Spotify Web API using the
// client-credentials grant.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrMissingCredentials is returned when the client id or secret is empty.
	ErrMissingCredentials = errors.New("missing client id or client secret")

	// ErrAuthFailed is returned when the token endpoint rejects the client or cannot be reached.
	ErrAuthFailed = errors.New("authentication failed")
)

// Provider exchanges a static client identity for short-lived bearer tokens.
//
// With caching enabled (the default) a token is reused until it nears expiry.
// Refreshes are serialised: concurrent callers that find the cache empty wait
// for a single exchange instead of each starting their own.
type Provider struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	cache      *TokenCache
	caching    bool

	refreshMu sync.Mutex
}

// Option configures a Provider.
type Option func(*Provider)

// WithTokenURL overrides the token endpoint. Defaults to Spotify's accounts service.
func WithTokenURL(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.config.TokenURL = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for the token exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithCaching turns token reuse on or off. When off, every Acquire performs
// a fresh exchange.
func WithCaching(enabled bool) Option {
	return func(p *Provider) {
		p.caching = enabled
	}
}

// New creates a Provider for the given client identity.
// Returns ErrMissingCredentials if either value is empty.
func New(clientID, clientSecret string, opts ...Option) (*Provider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	p := &Provider{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      NewTokenCache(),
		caching:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Acquire returns a bearer token valid for at least the next few seconds.
// Errors wrap ErrAuthFailed.
func (p *Provider) Acquire(ctx context.Context) (*oauth2.Token, error) {
	if !p.caching {
		return p.exchange(ctx)
	}

	if token := p.cache.Load(); token != nil {
		return token, nil
	}

	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	if token := p.cache.Load(); token != nil {
		return token, nil
	}

	token, err := p.exchange(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.Save(token)
	return token, nil
}

// Invalidate drops any cached token so the next Acquire performs an exchange.
func (p *Provider) Invalidate() {
	p.cache.Delete()
}

// exchange performs one client-credentials round trip: HTTP Basic auth with
// the client identity and grant_type=client_credentials as a form body.
func (p *Provider) exchange(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting token: %w", ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned an empty access token", ErrAuthFailed)
	}
	return token, nil
}
