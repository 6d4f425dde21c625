// Package artists resolves free-text queries into candidate artists for autocomplete.
package artists

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/justestif/guess-the-song/internal/spotify"
)

const (
	// MinQueryLength is the shortest query that reaches the catalog.
	MinQueryLength = 2

	// MaxCandidates caps the number of candidates returned.
	MaxCandidates = 10

	maxGenres = 3
)

// Candidate is an artist offered to the player for disambiguation.
type Candidate struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	Image      *string  `json:"image"`
}

// Catalog opens catalog sessions.
type Catalog interface {
	Session(ctx context.Context) (*spotify.Client, error)
}

// Service implements artist search against the catalog.
type Service struct {
	catalog Catalog
}

// NewService creates a new artist search service.
func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Search returns up to MaxCandidates artists matching query, in the catalog's
// relevance order. Queries shorter than MinQueryLength characters return an
// empty result without touching the network.
func (s *Service) Search(ctx context.Context, query string) ([]Candidate, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []Candidate{}, nil
	}

	client, err := s.catalog.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}

	found, err := client.SearchArtists(ctx, query, MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}

	candidates := make([]Candidate, 0, len(found))
	for _, a := range found {
		candidates = append(candidates, toCandidate(a))
	}
	return candidates, nil
}

// toCandidate keeps the first three genres and the first image, if any.
func toCandidate(a spotify.Artist) Candidate {
	genres := a.Genres
	if len(genres) > maxGenres {
		genres = genres[:maxGenres]
	}
	genres = append([]string{}, genres...)

	var image *string
	if len(a.Images) > 0 {
		url := a.Images[0].URL
		image = &url
	}

	return Candidate{
		ID:         a.ID,
		Name:       a.Name,
		Popularity: a.Popularity,
		Genres:     genres,
		Image:      image,
	}
}
