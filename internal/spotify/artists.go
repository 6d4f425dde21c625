package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// releaseGroups are the album groups sampled for an artist. Appearances on
// other artists' records are left out.
var releaseGroups = []spotify.AlbumType{
	spotify.AlbumTypeAlbum,
	spotify.AlbumTypeSingle,
	spotify.AlbumTypeCompilation,
}

// SearchArtists runs an artist-type search and returns up to limit artists in
// the catalog's relevance order.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeArtist, spotify.Limit(limit))
	if err != nil {
		return nil, c.upstream("searching artists", err)
	}

	artists := []Artist{}
	if res.Artists == nil {
		return artists, nil
	}

	for _, a := range res.Artists.Artists {
		artists = append(artists, Artist{
			ID:         string(a.ID),
			Name:       a.Name,
			Popularity: int(a.Popularity),
			Genres:     a.Genres,
			Images:     convertImages(a.Images),
		})
	}
	return artists, nil
}

// ArtistAlbums returns up to limit of the artist's albums, singles and
// compilations, in the order the catalog lists them.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string, limit int) ([]AlbumRef, error) {
	page, err := c.api.GetArtistAlbums(ctx, spotify.ID(artistID), releaseGroups, c.marketOpts(spotify.Limit(limit))...)
	if err != nil {
		return nil, c.upstream(fmt.Sprintf("fetching albums for artist %s", artistID), err)
	}

	albums := make([]AlbumRef, 0, len(page.Albums))
	for _, a := range page.Albums {
		albums = append(albums, convertAlbum(a))
	}
	return albums, nil
}
