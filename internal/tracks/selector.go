package tracks

import (
	"errors"
	"math/rand/v2"

	"github.com/justestif/guess-the-song/internal/spotify"
)

// ErrEmptyPool is returned when there is nothing to pick from.
var ErrEmptyPool = errors.New("could not find any tracks")

// SelectionResult is the track handed to the player.
type SelectionResult struct {
	Artist string           `json:"artist"`
	Track  string           `json:"track"`
	Album  spotify.AlbumRef `json:"album"`
}

// Selector picks one track uniformly at random from a pool.
type Selector struct {
	intn func(n int) int
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithRand sets the source of random indexes. intn must return a value in [0, n).
func WithRand(intn func(n int) int) SelectorOption {
	return func(s *Selector) {
		if intn != nil {
			s.intn = intn
		}
	}
}

// NewSelector creates a Selector backed by math/rand/v2.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{intn: rand.IntN}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select picks a track and shapes the response. artistName is echoed back as
// given, even when the pool was built from a catalog id.
func (s *Selector) Select(pool *Pool, artistName string) (SelectionResult, error) {
	if pool == nil || pool.Len() == 0 {
		return SelectionResult{}, ErrEmptyPool
	}

	track := pool.At(s.intn(pool.Len()))
	return SelectionResult{
		Artist: artistName,
		Track:  track.Name,
		Album:  track.Album,
	}, nil
}
