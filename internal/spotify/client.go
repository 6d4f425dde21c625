// Package spotify provides a wrapper around the Spotify Web API catalog endpoints.
package spotify

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
)

// ErrUpstream wraps every failed catalog call: network errors, non-2xx
// responses and undecodable bodies alike.
var ErrUpstream = errors.New("catalog request failed")

// Client wraps the Spotify API client with the catalog lookups used by the game.
// A Client is bound to a single bearer token; get one from [Catalog.Session].
type Client struct {
	api    *spotify.Client
	market string

	// onUnauthorized runs when the catalog answers 401.
	onUnauthorized func()
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, market string) *Client {
	return &Client{api: api, market: market}
}

// marketOpts returns the market restriction, if one is configured.
func (c *Client) marketOpts(opts ...spotify.RequestOption) []spotify.RequestOption {
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}
	return opts
}

// upstream wraps err as ErrUpstream. A rejected token is reported to the
// credential source; the current call still fails.
func (c *Client) upstream(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}

func convertImages(images []spotify.Image) []Image {
	out := make([]Image, 0, len(images))
	for _, img := range images {
		out = append(out, Image{
			URL:    img.URL,
			Height: int(img.Height),
			Width:  int(img.Width),
		})
	}
	return out
}

func convertAlbum(a spotify.SimpleAlbum) AlbumRef {
	return AlbumRef{
		ID:     string(a.ID),
		Name:   a.Name,
		Images: convertImages(a.Images),
	}
}

func convertArtists(artists []spotify.SimpleArtist) []ArtistSummary {
	out := make([]ArtistSummary, 0, len(artists))
	for _, a := range artists {
		out = append(out, ArtistSummary{ID: string(a.ID), Name: a.Name})
	}
	return out
}
