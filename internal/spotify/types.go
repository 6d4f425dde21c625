package spotify

// Image describes one rendition of a cover or artist picture.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// AlbumRef is the album context attached to a track.
type AlbumRef struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// ArtistSummary is the short artist form embedded in tracks.
type ArtistSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track is a catalog track. Two tracks with the same ID are the same track,
// whichever endpoint produced them.
type Track struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Album   AlbumRef        `json:"album"`
	Artists []ArtistSummary `json:"artists"`
}

// Artist is a full artist as returned by artist search.
type Artist struct {
	ID         string
	Name       string
	Popularity int
	Genres     []string
	Images     []Image
}
