// Package tracks gathers a varied pool of an artist's tracks and picks one at random.
package tracks

import "github.com/justestif/guess-the-song/internal/spotify"

// Pool is a duplicate-free, discovery-ordered collection of tracks keyed by id.
// The first track added with a given id wins.
type Pool struct {
	tracks []spotify.Track
	seen   map[string]struct{}
}

// NewPool creates an empty pool sized for about n tracks.
func NewPool(n int) *Pool {
	return &Pool{
		tracks: make([]spotify.Track, 0, n),
		seen:   make(map[string]struct{}, n),
	}
}

// Add appends t unless a track with the same id is already present.
// Tracks without an id are rejected. Reports whether t was added.
func (p *Pool) Add(t spotify.Track) bool {
	if t.ID == "" {
		return false
	}
	if _, ok := p.seen[t.ID]; ok {
		return false
	}
	p.seen[t.ID] = struct{}{}
	p.tracks = append(p.tracks, t)
	return true
}

// AddAll adds each track in order and returns how many were new.
func (p *Pool) AddAll(tracks []spotify.Track) int {
	added := 0
	for _, t := range tracks {
		if p.Add(t) {
			added++
		}
	}
	return added
}

// Len returns the number of tracks in the pool.
func (p *Pool) Len() int {
	return len(p.tracks)
}

// At returns the i-th track in discovery order.
func (p *Pool) At(i int) spotify.Track {
	return p.tracks[i]
}

// Contains reports whether a track with id is in the pool.
func (p *Pool) Contains(id string) bool {
	_, ok := p.seen[id]
	return ok
}

// Tracks returns a copy of the pool's tracks in discovery order.
func (p *Pool) Tracks() []spotify.Track {
	return append([]spotify.Track(nil), p.tracks...)
}
