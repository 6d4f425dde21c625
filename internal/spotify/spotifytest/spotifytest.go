// Package spotifytest provides an in-process fake of the Spotify accounts
// service and catalog API for tests.
package spotifytest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/justestif/guess-the-song/internal/spotify"
)

// Endpoint names accepted by [Server.Calls] and [Server.LastQuery].
const (
	EndpointToken       = "token"
	EndpointSearch      = "search"
	EndpointTopTracks   = "top-tracks"
	EndpointAlbums      = "albums"
	EndpointAlbumTracks = "album-tracks"
)

// Fake client identity. AccessToken is the static token of [Server.NewCatalog]
// and the prefix of tokens issued by the accounts endpoint.
const (
	ClientID     = "test-client-id"
	ClientSecret = "test-client-secret"
	AccessToken  = "fake-access-token"
)

// IssuedToken is the n-th token (counting from 1) the accounts endpoint hands out.
func IssuedToken(n int) string {
	return fmt.Sprintf("%s-%d", AccessToken, n)
}

// Image is a fixture image.
type Image struct {
	URL    string
	Height int
	Width  int
}

// Album is a fixture album.
type Album struct {
	ID     string
	Name   string
	Images []Image
}

// Track is a fixture track. Album is only rendered by endpoints that embed it.
type Track struct {
	ID      string
	Name    string
	Album   Album
	Artists []string
}

// Artist is a fixture artist.
type Artist struct {
	ID         string
	Name       string
	Popularity int
	Genres     []string
	Images     []Image
}

// Catalog is the fixture data the fake serves.
type Catalog struct {
	Artists     []Artist           // any artist search
	TrackSearch map[string][]Track // track search, keyed by the exact q parameter
	TopTracks   map[string][]Track // by artist id
	Albums      map[string][]Album // by artist id
	AlbumTracks map[string][]Track // by album id

	FailSearch      bool
	FailTopTracks   bool
	FailAlbums      bool
	FailAlbumTracks map[string]bool // by album id
	RejectToken     bool
	RevokedTokens   map[string]bool // bearer tokens answered with 401
}

// Server is a running fake.
type Server struct {
	*httptest.Server

	data *Catalog

	mu        sync.Mutex
	calls     map[string]int
	lastQuery map[string]url.Values
	issued    int
	rejected  int
}

// NewServer starts a fake serving data. It is closed when the test ends.
func NewServer(t testing.TB, data *Catalog) *Server {
	t.Helper()

	if data == nil {
		data = &Catalog{}
	}

	s := &Server{
		data:      data,
		calls:     make(map[string]int),
		lastQuery: make(map[string]url.Values),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", s.token)
	mux.HandleFunc("GET /v1/search", s.authorized(s.search))
	mux.HandleFunc("GET /v1/artists/{id}/top-tracks", s.authorized(s.topTracks))
	mux.HandleFunc("GET /v1/artists/{id}/albums", s.authorized(s.albums))
	mux.HandleFunc("GET /v1/albums/{id}/tracks", s.authorized(s.albumTracks))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// APIURL is the catalog base URL to pass to [spotify.WithBaseURL].
func (s *Server) APIURL() string {
	return s.URL + "/v1/"
}

// TokenURL is the token endpoint URL.
func (s *Server) TokenURL() string {
	return s.URL + "/api/token"
}

// NewCatalog returns a catalog pointed at the fake, authenticated with a
// static token. Extra options are applied after the defaults.
func (s *Server) NewCatalog(opts ...spotify.Option) *spotify.Catalog {
	opts = append([]spotify.Option{
		spotify.WithBaseURL(s.APIURL()),
		spotify.WithTransport(s.Client().Transport),
	}, opts...)
	return spotify.NewCatalog(StaticToken(AccessToken), opts...)
}

// Calls reports how many requests hit endpoint.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// TotalCalls reports how many requests hit any endpoint.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// LastQuery returns the query parameters of the latest request to endpoint.
func (s *Server) LastQuery(endpoint string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[endpoint]
}

func (s *Server) record(endpoint string, r *http.Request) {
	s.mu.Lock()
	s.calls[endpoint]++
	s.lastQuery[endpoint] = r.URL.Query()
	s.mu.Unlock()
}

// Unauthorized reports how many catalog requests were refused for a revoked token.
func (s *Server) Unauthorized() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejected
}

// StaticToken is a credential source that always returns the same token.
type StaticToken string

// Acquire implements [spotify.CredentialSource].
func (s StaticToken) Acquire(context.Context) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: string(s), TokenType: "Bearer"}, nil
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	s.record(EndpointToken, r)

	id, secret, ok := r.BasicAuth()
	if s.data.RejectToken || !ok || id != ClientID || secret != ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "Invalid client",
		})
		return
	}

	s.mu.Lock()
	s.issued++
	token := IssuedToken(s.issued)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		if s.data.RevokedTokens[token] {
			s.mu.Lock()
			s.rejected++
			s.mu.Unlock()
			writeError(w, http.StatusUnauthorized, "The access token expired")
			return
		}
		next(w, r)
	}
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.record(EndpointSearch, r)

	if s.data.FailSearch {
		writeError(w, http.StatusInternalServerError, "search unavailable")
		return
	}

	q := r.URL.Query()
	switch q.Get("type") {
	case "artist":
		items := make([]any, 0, len(s.data.Artists))
		for _, a := range s.data.Artists {
			items = append(items, artistJSON(a))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"artists": map[string]any{"items": items, "total": len(items)},
		})
	case "track":
		found := s.data.TrackSearch[q.Get("q")]
		items := make([]any, 0, len(found))
		for _, t := range found {
			items = append(items, trackJSON(t, true))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"tracks": map[string]any{"items": items, "total": len(items)},
		})
	default:
		writeError(w, http.StatusBadRequest, "unsupported type")
	}
}

func (s *Server) topTracks(w http.ResponseWriter, r *http.Request) {
	s.record(EndpointTopTracks, r)

	if s.data.FailTopTracks {
		writeError(w, http.StatusBadGateway, "top tracks unavailable")
		return
	}

	found := s.data.TopTracks[r.PathValue("id")]
	items := make([]any, 0, len(found))
	for _, t := range found {
		items = append(items, trackJSON(t, true))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": items})
}

func (s *Server) albums(w http.ResponseWriter, r *http.Request) {
	s.record(EndpointAlbums, r)

	if s.data.FailAlbums {
		writeError(w, http.StatusBadGateway, "albums unavailable")
		return
	}

	found := s.data.Albums[r.PathValue("id")]
	items := make([]any, 0, len(found))
	for _, a := range found {
		items = append(items, albumJSON(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) albumTracks(w http.ResponseWriter, r *http.Request) {
	s.record(EndpointAlbumTracks, r)

	id := r.PathValue("id")
	if s.data.FailAlbumTracks[id] {
		writeError(w, http.StatusInternalServerError, "album tracks unavailable")
		return
	}

	found := s.data.AlbumTracks[id]
	items := make([]any, 0, len(found))
	for _, t := range found {
		items = append(items, trackJSON(t, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func imagesJSON(images []Image) []any {
	out := make([]any, 0, len(images))
	for _, img := range images {
		out = append(out, map[string]any{"url": img.URL, "height": img.Height, "width": img.Width})
	}
	return out
}

func albumJSON(a Album) map[string]any {
	return map[string]any{
		"id":         a.ID,
		"name":       a.Name,
		"album_type": "album",
		"images":     imagesJSON(a.Images),
	}
}

func artistJSON(a Artist) map[string]any {
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}
	return map[string]any{
		"id":         a.ID,
		"name":       a.Name,
		"popularity": a.Popularity,
		"genres":     genres,
		"images":     imagesJSON(a.Images),
	}
}

func trackJSON(t Track, withAlbum bool) map[string]any {
	artists := make([]any, 0, len(t.Artists))
	for _, name := range t.Artists {
		artists = append(artists, map[string]any{"id": strings.ToLower(strings.ReplaceAll(name, " ", "-")), "name": name})
	}

	out := map[string]any{
		"id":      t.ID,
		"name":    t.Name,
		"artists": artists,
	}
	if withAlbum {
		out["album"] = albumJSON(t.Album)
	}
	return out
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"status": status, "message": message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
