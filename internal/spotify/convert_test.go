package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestConvertImages(t *testing.T) {
	tests := []struct {
		name   string
		images []spotify.Image
		want   []Image
	}{
		{
			name:   "nil becomes empty",
			images: nil,
			want:   []Image{},
		},
		{
			name: "keeps order and sizes",
			images: []spotify.Image{
				{URL: "https://img/large", Height: 640, Width: 640},
				{URL: "https://img/small", Height: 64, Width: 64},
			},
			want: []Image{
				{URL: "https://img/large", Height: 640, Width: 640},
				{URL: "https://img/small", Height: 64, Width: 64},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertImages(tt.images)
			if got == nil {
				t.Fatal("convertImages() = nil, want non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d images, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("image[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestConvertArtists(t *testing.T) {
	got := convertArtists([]spotify.SimpleArtist{
		{ID: "a1", Name: "Thomas Bangalter"},
		{ID: "a2", Name: "Guy-Manuel de Homem-Christo"},
	})

	want := []ArtistSummary{
		{ID: "a1", Name: "Thomas Bangalter"},
		{ID: "a2", Name: "Guy-Manuel de Homem-Christo"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d artists, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("artist[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestConvertAlbum(t *testing.T) {
	got := convertAlbum(spotify.SimpleAlbum{
		ID:     "al1",
		Name:   "Discovery",
		Images: []spotify.Image{{URL: "https://img/discovery"}},
	})

	if got.ID != "al1" || got.Name != "Discovery" {
		t.Errorf("convertAlbum() = %+v, want al1 Discovery", got)
	}
	if len(got.Images) != 1 || got.Images[0].URL != "https://img/discovery" {
		t.Errorf("Images = %+v, want one image", got.Images)
	}
}
