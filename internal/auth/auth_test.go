package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// tokenServer fakes the accounts service token endpoint.
type tokenServer struct {
	*httptest.Server
	calls     atomic.Int32
	expiresIn int
	status    int
	delay     time.Duration
}

func newTokenServer(t *testing.T, expiresIn int) *tokenServer {
	t.Helper()
	ts := &tokenServer{expiresIn: expiresIn, status: http.StatusOK}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.calls.Add(1)

		if ts.delay > 0 {
			time.Sleep(ts.delay)
		}

		id, secret, ok := r.BasicAuth()
		if !ok || id != "client-id" || secret != "client-secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_client"})
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if ts.status != http.StatusOK {
			w.WriteHeader(ts.status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "Bearer",
			"expires_in":   ts.expiresIn,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestProvider(t *testing.T, ts *tokenServer, opts ...Option) *Provider {
	t.Helper()
	opts = append([]Option{WithTokenURL(ts.URL), WithHTTPClient(ts.Client())}, opts...)
	p, err := New("client-id", "client-secret", opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"both missing", "", ""},
		{"id missing", "", "secret"},
		{"secret missing", "id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.secret)
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("New() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}

func TestAcquire_ExchangesClientCredentials(t *testing.T) {
	ts := newTokenServer(t, 3600)
	p := newTestProvider(t, ts)

	token, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if token.AccessToken != "token-1" {
		t.Errorf("AccessToken = %q, want token-1", token.AccessToken)
	}
	if token.Expiry.IsZero() {
		t.Error("Expiry is zero, want expiry from expires_in")
	}
}

func TestAcquire_ReusesCachedToken(t *testing.T) {
	ts := newTokenServer(t, 3600)
	p := newTestProvider(t, ts)

	for i := 0; i < 3; i++ {
		token, err := p.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire() #%d error = %v", i, err)
		}
		if token.AccessToken != "token-1" {
			t.Errorf("Acquire() #%d AccessToken = %q, want token-1", i, token.AccessToken)
		}
	}

	if got := ts.calls.Load(); got != 1 {
		t.Errorf("token endpoint calls = %d, want 1", got)
	}
}

func TestAcquire_RefreshesExpiredToken(t *testing.T) {
	// One second is inside oauth2's expiry delta, so the token is stale at once.
	ts := newTokenServer(t, 1)
	p := newTestProvider(t, ts)

	first, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	second, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}

	if first.AccessToken == second.AccessToken {
		t.Errorf("tokens equal (%q), want a refreshed token", first.AccessToken)
	}
	if got := ts.calls.Load(); got != 2 {
		t.Errorf("token endpoint calls = %d, want 2", got)
	}
}

func TestAcquire_CachingDisabled(t *testing.T) {
	ts := newTokenServer(t, 3600)
	p := newTestProvider(t, ts, WithCaching(false))

	for i := 0; i < 3; i++ {
		if _, err := p.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() #%d error = %v", i, err)
		}
	}

	if got := ts.calls.Load(); got != 3 {
		t.Errorf("token endpoint calls = %d, want 3", got)
	}
}

func TestAcquire_ConcurrentCallersShareOneExchange(t *testing.T) {
	ts := newTokenServer(t, 3600)
	ts.delay = 50 * time.Millisecond
	p := newTestProvider(t, ts)

	const callers = 10
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := p.Acquire(context.Background())
			errs[i] = err
			if token != nil {
				tokens[i] = token.AccessToken
			}
		}(i)
	}
	wg.Wait()

	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if tokens[i] != "token-1" {
			t.Errorf("caller %d token = %q, want token-1", i, tokens[i])
		}
	}
	if got := ts.calls.Load(); got != 1 {
		t.Errorf("token endpoint calls = %d, want 1", got)
	}
}

func TestAcquire_Invalidate(t *testing.T) {
	ts := newTokenServer(t, 3600)
	p := newTestProvider(t, ts)

	if _, err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	p.Invalidate()
	token, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() after Invalidate error = %v", err)
	}

	if token.AccessToken != "token-2" {
		t.Errorf("AccessToken = %q, want token-2", token.AccessToken)
	}
}

func TestAcquire_Failures(t *testing.T) {
	t.Run("rejected client", func(t *testing.T) {
		ts := newTokenServer(t, 3600)
		p, err := New("wrong-id", "wrong-secret", WithTokenURL(ts.URL), WithHTTPClient(ts.Client()))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		_, err = p.Acquire(context.Background())
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("Acquire() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("issuer error", func(t *testing.T) {
		ts := newTokenServer(t, 3600)
		ts.status = http.StatusServiceUnavailable
		p := newTestProvider(t, ts)

		_, err := p.Acquire(context.Background())
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("Acquire() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("issuer unreachable", func(t *testing.T) {
		ts := newTokenServer(t, 3600)
		url := ts.URL
		ts.Close()

		p, err := New("client-id", "client-secret", WithTokenURL(url))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		_, err = p.Acquire(context.Background())
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("Acquire() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("failure is not cached", func(t *testing.T) {
		ts := newTokenServer(t, 3600)
		ts.status = http.StatusInternalServerError
		p := newTestProvider(t, ts)

		if _, err := p.Acquire(context.Background()); err == nil {
			t.Fatal("Acquire() error = nil, want error")
		}

		ts.status = http.StatusOK
		if _, err := p.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() after recovery error = %v", err)
		}
	})
}

func TestTokenCache(t *testing.T) {
	tests := []struct {
		name  string
		token *oauth2.Token
		want  bool
	}{
		{
			name:  "valid token",
			token: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)},
			want:  true,
		},
		{
			name:  "no expiry",
			token: &oauth2.Token{AccessToken: "a"},
			want:  true,
		},
		{
			name:  "expired token",
			token: &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(-time.Minute)},
			want:  false,
		},
		{
			name:  "empty access token",
			token: &oauth2.Token{Expiry: time.Now().Add(time.Hour)},
			want:  false,
		},
		{
			name:  "nil token",
			token: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewTokenCache()
			cache.Save(tt.token)

			got := cache.Load() != nil
			if got != tt.want {
				t.Errorf("Load() present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenCache_Delete(t *testing.T) {
	cache := NewTokenCache()
	cache.Save(&oauth2.Token{AccessToken: "a"})
	cache.Delete()

	if cache.Load() != nil {
		t.Error("Load() after Delete() returned a token")
	}
}
