package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/justestif/guess-the-song/internal/artists"
	"github.com/justestif/guess-the-song/internal/tracks"
)

// maxBodyBytes caps the submit-form request body.
const maxBodyBytes = 1 << 16

// ArtistSearcher finds artist candidates for a partial name.
type ArtistSearcher interface {
	Search(ctx context.Context, query string) ([]artists.Candidate, error)
}

// TrackAggregator gathers a track pool for an artist.
type TrackAggregator interface {
	Aggregate(ctx context.Context, artistName, artistID string) (*tracks.Pool, error)
}

// TrackSelector picks one track from a pool.
type TrackSelector interface {
	Select(pool *tracks.Pool, artistName string) (tracks.SelectionResult, error)
}

// Handlers contains HTTP handlers for the game backend.
type Handlers struct {
	searcher   ArtistSearcher
	aggregator TrackAggregator
	selector   TrackSelector
	logger     *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(searcher ArtistSearcher, aggregator TrackAggregator, selector TrackSelector, logger *log.Logger) *Handlers {
	return &Handlers{
		searcher:   searcher,
		aggregator: aggregator,
		selector:   selector,
		logger:     logger,
	}
}

// submitRequest is the body of POST /submit-form.
type submitRequest struct {
	Artist   string `json:"artist"`
	ArtistID string `json:"artistId,omitempty"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// SearchArtists returns artist candidates for the q parameter (GET /search-artists).
func (h *Handlers) SearchArtists(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	candidates, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("searching artists", "query", query, "err", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to search artists")
		return
	}

	h.writeJSON(w, http.StatusOK, candidates)
}

// SubmitForm picks a random track for the submitted artist (POST /submit-form).
func (h *Handlers) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.ArtistID = strings.TrimSpace(req.ArtistID)
	if strings.TrimSpace(req.Artist) == "" {
		h.writeError(w, http.StatusBadRequest, "Artist is required")
		return
	}

	pool, err := h.aggregator.Aggregate(r.Context(), req.Artist, req.ArtistID)
	if err != nil {
		h.logger.Error("aggregating tracks", "artist", req.Artist, "artist_id", req.ArtistID, "err", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch tracks")
		return
	}

	result, err := h.selector.Select(pool, req.Artist)
	if errors.Is(err, tracks.ErrEmptyPool) {
		h.writeError(w, http.StatusNotFound, "Could not find any tracks")
		return
	}
	if err != nil {
		h.logger.Error("selecting track", "artist", req.Artist, "err", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to pick a track")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// writeJSON sends v with status. The header is already out when encoding
// fails, so the failure can only be logged.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("writing response", "status", status, "err", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
