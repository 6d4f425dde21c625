package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// TopTracks returns the artist's top tracks in the configured market.
// The catalog caps this list (typically at 10).
func (c *Client) TopTracks(ctx context.Context, artistID string) ([]Track, error) {
	full, err := c.api.GetArtistsTopTracks(ctx, spotify.ID(artistID), c.market)
	if err != nil {
		return nil, c.upstream(fmt.Sprintf("fetching top tracks for artist %s", artistID), err)
	}

	tracks := make([]Track, 0, len(full))
	for _, t := range full {
		tracks = append(tracks, convertFullTrack(t))
	}
	return tracks, nil
}

// AlbumTracks returns up to limit tracks of album. The album-tracks endpoint
// does not embed album context, so every track is annotated with album.
func (c *Client) AlbumTracks(ctx context.Context, album AlbumRef, limit int) ([]Track, error) {
	page, err := c.api.GetAlbumTracks(ctx, spotify.ID(album.ID), c.marketOpts(spotify.Limit(limit))...)
	if err != nil {
		return nil, c.upstream(fmt.Sprintf("fetching tracks for album %s", album.ID), err)
	}

	tracks := make([]Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, Track{
			ID:      string(t.ID),
			Name:    t.Name,
			Album:   album,
			Artists: convertArtists(t.Artists),
		})
	}
	return tracks, nil
}

// SearchTracks runs a track-type search and returns up to limit tracks.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, c.upstream("searching tracks", err)
	}

	tracks := []Track{}
	if res.Tracks == nil {
		return tracks, nil
	}

	for _, t := range res.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(t))
	}
	return tracks, nil
}

// convertFullTrack converts a Spotify FullTrack to a Track.
func convertFullTrack(t spotify.FullTrack) Track {
	return Track{
		ID:      string(t.ID),
		Name:    t.Name,
		Album:   convertAlbum(t.Album),
		Artists: convertArtists(t.Artists),
	}
}
