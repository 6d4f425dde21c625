package tracks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/guess-the-song/internal/logging"
	"github.com/justestif/guess-the-song/internal/spotify"
)

// Defaults for aggregation limits.
const (
	DefaultAlbumSample     = 3
	DefaultAlbumLimit      = 20
	DefaultAlbumTrackLimit = 10
	DefaultSearchLimit     = 50
)

// Catalog opens catalog sessions.
type Catalog interface {
	Session(ctx context.Context) (*spotify.Client, error)
}

// Aggregator builds track pools from several catalog endpoints.
type Aggregator struct {
	catalog         Catalog
	logger          *log.Logger
	albumSample     int
	albumLimit      int
	albumTrackLimit int
	searchLimit     int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used to report skipped albums.
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAlbumSample sets how many of the artist's albums are opened for tracks.
// It also bounds how many album fetches run at once.
func WithAlbumSample(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.albumSample = n
		}
	}
}

// WithAlbumLimit sets how many albums are listed per artist.
func WithAlbumLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.albumLimit = n
		}
	}
}

// WithAlbumTrackLimit sets how many tracks are fetched per album.
func WithAlbumTrackLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.albumTrackLimit = n
		}
	}
}

// WithSearchLimit sets the result cap of the name-search fallback.
func WithSearchLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.searchLimit = n
		}
	}
}

// NewAggregator creates a new Aggregator.
func NewAggregator(catalog Catalog, opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog:         catalog,
		logger:          logging.Discard(),
		albumSample:     DefaultAlbumSample,
		albumLimit:      DefaultAlbumLimit,
		albumTrackLimit: DefaultAlbumTrackLimit,
		searchLimit:     DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate gathers a pool of tracks for an artist. With an artist id the pool
// combines top tracks and tracks from the first few albums; without one it
// falls back to a track search on the exact artist name.
//
// One credential is used for every call made. The pool may be empty.
func (a *Aggregator) Aggregate(ctx context.Context, artistName, artistID string) (*Pool, error) {
	client, err := a.catalog.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating tracks: %w", err)
	}

	if artistID == "" {
		return a.fromSearch(ctx, client, artistName)
	}
	return a.fromArtist(ctx, client, artistID)
}

// fromArtist fetches top tracks and albums together, then the tracks of the
// sampled albums. Top tracks go first so their fuller metadata wins on
// duplicate ids.
func (a *Aggregator) fromArtist(ctx context.Context, client *spotify.Client, artistID string) (*Pool, error) {
	var (
		top    []spotify.Track
		albums []spotify.AlbumRef
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		top, err = client.TopTracks(gctx, artistID)
		return err
	})
	g.Go(func() error {
		var err error
		albums, err = client.ArtistAlbums(gctx, artistID, a.albumLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregating tracks for artist %s: %w", artistID, err)
	}

	if len(albums) > a.albumSample {
		albums = albums[:a.albumSample]
	}
	perAlbum := a.fetchAlbumTracks(ctx, client, albums)

	size := len(top)
	for _, tracks := range perAlbum {
		size += len(tracks)
	}

	pool := NewPool(size)
	pool.AddAll(top)
	for _, tracks := range perAlbum {
		pool.AddAll(tracks)
	}

	a.logger.Debug("aggregated tracks",
		"artist_id", artistID,
		"top_tracks", len(top),
		"albums", len(albums),
		"pool", pool.Len(),
	)
	return pool, nil
}

// fetchAlbumTracks fetches each album's tracks concurrently, at most
// albumSample at a time. Results are indexed like albums. A failed album is
// logged and contributes nothing.
func (a *Aggregator) fetchAlbumTracks(ctx context.Context, client *spotify.Client, albums []spotify.AlbumRef) [][]spotify.Track {
	results := make([][]spotify.Track, len(albums))

	var g errgroup.Group
	g.SetLimit(a.albumSample)
	for i, album := range albums {
		g.Go(func() error {
			tracks, err := client.AlbumTracks(ctx, album, a.albumTrackLimit)
			if err != nil {
				a.logger.Warn("skipping album", "album", album.ID, "name", album.Name, "err", err)
				return nil
			}
			results[i] = tracks
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fromSearch builds the pool from a track search on the exact artist name.
func (a *Aggregator) fromSearch(ctx context.Context, client *spotify.Client, artistName string) (*Pool, error) {
	tracks, err := client.SearchTracks(ctx, ArtistQuery(artistName), a.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching tracks for %q: %w", artistName, err)
	}

	pool := NewPool(len(tracks))
	pool.AddAll(tracks)
	return pool, nil
}

// ArtistQuery wraps name in the catalog's exact-phrase artist filter. The
// filter has no escape syntax, so double quotes and invalid UTF-8 are dropped.
func ArtistQuery(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = strings.ReplaceAll(name, `"`, "")
	return `artist:"` + name + `"`
}
