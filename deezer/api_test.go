package deezer

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

const trackFixture = `{
	"id": 3135556,
	"type": "track",
	"title": "T",
	"link": "L",
	"duration": "200",
	"md5_image": "abc",
	"contributors": [
		{"id": 27, "type": "artist", "name": "A", "link": "AL"}
	],
	"artist": {"id": 27, "name": "A", "link": "AL", "type": "artist"}
}`

const playlistFixture = `{
	"id": 908622995,
	"type": "playlist",
	"title": "Chill",
	"link": "https://www.deezer.com/playlist/908622995",
	"description": "Late night",
	"md5_image": "pl",
	"picture_big": "https://img/big.jpg",
	"picture_medium": "https://img/medium.jpg",
	"creator": {"id": 2529, "name": "Owner", "type": "user"},
	"tracks": {"data": [
		{"type": "track", "title": "One", "link": "https://www.deezer.com/track/1", "duration": 180, "md5_image": "c1",
		 "artist": {"id": 10, "name": "Art One", "link": "https://www.deezer.com/artist/10"}},
		{"type": "track", "title": "Two", "link": "https://www.deezer.com/track/2", "duration": "95", "md5_image": "c2",
		 "artist": {"id": 11, "name": "Art Two", "link": "https://www.deezer.com/artist/11"}}
	]}
}`

const albumFixture = `{
	"id": 302127,
	"type": "album",
	"title": "Discovery",
	"link": "https://www.deezer.com/album/302127",
	"md5_image": "alb",
	"contributors": [
		{"id": 27, "type": "artist", "name": "Daft Punk", "link": "https://www.deezer.com/artist/27", "picture_medium": "https://img/dp.jpg"}
	],
	"tracks": {"data": [
		{"type": "track", "title": "One More Time", "link": "https://www.deezer.com/track/3135553", "duration": 320, "md5_image": "alb",
		 "artist": {"id": 27, "name": "Daft Punk"}}
	]}
}`

func coverThumbs(hash string) []Thumbnail {
	return []Thumbnail{
		{500, 500, "https://e-cdn-images.dzcdn.net/images/cover/" + hash + "/500x500-000000-80-0-0.jpg"},
		{250, 250, "https://e-cdn-images.dzcdn.net/images/cover/" + hash + "/250x250-000000-80-0-0.jpg"},
		{56, 56, "https://e-cdn-images.dzcdn.net/images/cover/" + hash + "/56x56-000000-80-0-0.jpg"},
	}
}

func TestResolveTrack(t *testing.T) {
	fake := newFakeDeezer(map[string]string{"api.deezer.com/track/3135556": trackFixture})
	c := newTestClient(fake)

	entity, err := c.Resolve(context.Background(), "https://www.deezer.com/en/track/3135556")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := &Track{
		Name:       "T",
		URL:        "L",
		Duration:   200,
		Authors:    []Artist{{Name: "A", URL: "AL"}},
		Thumbnails: coverThumbs("abc"),
		Kind:       KindSong,
	}
	if !reflect.DeepEqual(entity, want) {
		t.Errorf("Resolve() = %+v, want %+v", entity, want)
	}
	if got := fake.paths(); len(got) != 1 || got[0] != "api.deezer.com/track/3135556" {
		t.Errorf("requests = %v", got)
	}
}

func TestResolveTrackFiltersContributors(t *testing.T) {
	fixture := `{
		"type": "track", "title": "T", "link": "L", "duration": "213", "md5_image": "abc",
		"contributors": [
			{"type": "artist", "name": "A", "link": "AL", "picture_big": "https://img/a.jpg"},
			{"type": "performer", "name": "P", "link": "PL"},
			{"type": "artist", "name": "", "link": "XL"}
		]
	}`
	fake := newFakeDeezer(map[string]string{"api.deezer.com/track/1": fixture})
	c := newTestClient(fake)

	entity, err := c.Resolve(context.Background(), "deezer.com/track/1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	track := entity.(*Track)

	if track.Duration != 213 {
		t.Errorf("Duration = %d, want 213", track.Duration)
	}
	want := []Artist{{Name: "A", URL: "AL", Image: "https://img/a.jpg"}}
	if !reflect.DeepEqual(track.Authors, want) {
		t.Errorf("Authors = %+v, want %+v", track.Authors, want)
	}
}

func TestResolvePlaylist(t *testing.T) {
	fake := newFakeDeezer(map[string]string{"api.deezer.com/playlist/908622995": playlistFixture})
	c := newTestClient(fake)

	entity, err := c.Resolve(context.Background(), "https://www.deezer.com/fr/playlist/908622995")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	p, ok := entity.(*Playlist)
	if !ok {
		t.Fatalf("Resolve() returned %T, want *Playlist", entity)
	}

	if p.Kind != KindPlaylist || p.Name != "Chill" || p.Description != "Late night" {
		t.Errorf("unexpected playlist header: %+v", p)
	}
	wantOwner := Artist{Name: "Owner", URL: "https://deezer.com/profile/2529"}
	if p.Artist != wantOwner {
		t.Errorf("Artist = %+v, want %+v", p.Artist, wantOwner)
	}

	wantThumbs := []Thumbnail{
		{500, 500, "https://img/big.jpg"},
		{250, 250, "https://img/medium.jpg"},
		{56, 56, "https://e-cdn-images.dzcdn.net/images/playlist/pl/56x56-000000-80-0-0.jpg"},
	}
	if !reflect.DeepEqual(p.Thumbnails, wantThumbs) {
		t.Errorf("Thumbnails = %+v, want %+v", p.Thumbnails, wantThumbs)
	}

	wantTracks := []Track{
		{
			Name: "One", URL: "https://www.deezer.com/track/1", Duration: 180,
			Authors:    []Artist{{Name: "Art One", URL: "https://www.deezer.com/artist/10"}},
			Thumbnails: coverThumbs("c1"), Kind: KindSong,
		},
		{
			Name: "Two", URL: "https://www.deezer.com/track/2", Duration: 95,
			Authors:    []Artist{{Name: "Art Two", URL: "https://www.deezer.com/artist/11"}},
			Thumbnails: coverThumbs("c2"), Kind: KindSong,
		},
	}
	if !reflect.DeepEqual(p.Tracks, wantTracks) {
		t.Errorf("Tracks = %+v, want %+v", p.Tracks, wantTracks)
	}
}

func TestResolveAlbum(t *testing.T) {
	fake := newFakeDeezer(map[string]string{"api.deezer.com/album/302127": albumFixture})
	c := newTestClient(fake)

	entity, err := c.Resolve(context.Background(), "https://www.deezer.com/album/302127")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	p := entity.(*Playlist)

	if p.Kind != KindAlbum || p.Description != "" {
		t.Errorf("Kind = %q, Description = %q", p.Kind, p.Description)
	}
	wantOwner := Artist{Name: "Daft Punk", URL: "https://www.deezer.com/artist/27", Image: "https://img/dp.jpg"}
	if p.Artist != wantOwner {
		t.Errorf("Artist = %+v, want %+v", p.Artist, wantOwner)
	}
	if !reflect.DeepEqual(p.Thumbnails, coverThumbs("alb")) {
		t.Errorf("Thumbnails = %+v", p.Thumbnails)
	}
	if len(p.Tracks) != 1 {
		t.Fatalf("len(Tracks) = %d, want 1", len(p.Tracks))
	}
	// Link missing on the track artist, built from its ID
	wantAuthor := Artist{Name: "Daft Punk", URL: "https://deezer.com/artist/27"}
	if got := p.Tracks[0].Authors; len(got) != 1 || got[0] != wantAuthor {
		t.Errorf("track Authors = %+v, want [%+v]", got, wantAuthor)
	}
}

func TestResolveAPIFailures(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		routes map[string]string
	}{
		{"not found", "https://www.deezer.com/track/9", nil},
		{"not json", "https://www.deezer.com/track/9", map[string]string{"api.deezer.com/track/9": "<html>"}},
		{"error object", "https://www.deezer.com/track/9", map[string]string{
			"api.deezer.com/track/9": `{"error":{"type":"DataException","message":"no data","code":800}}`,
		}},
		{"wrong type", "https://www.deezer.com/track/9", map[string]string{"api.deezer.com/track/9": `{"type":"album"}`}},
		{"no listed artist", "https://www.deezer.com/track/9", map[string]string{
			"api.deezer.com/track/9": `{"type":"track","title":"T","contributors":[{"type":"performer","name":"P","link":"PL"}]}`,
		}},
		{"playlist error object", "https://www.deezer.com/playlist/9", map[string]string{
			"api.deezer.com/playlist/9": `{"error":{"type":"DataException","message":"no data","code":800}}`,
		}},
		{"album without artist", "https://www.deezer.com/album/9", map[string]string{
			"api.deezer.com/album/9": `{"type":"album","title":"X","contributors":[],"tracks":{"data":[]}}`,
		}},
		{"playlist track without artist", "https://www.deezer.com/playlist/9", map[string]string{
			"api.deezer.com/playlist/9": `{"type":"playlist","title":"X","creator":{"id":1,"name":"Owner"},
				"tracks":{"data":[{"type":"track","title":"One","link":"https://www.deezer.com/track/1","duration":180}]}}`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(newFakeDeezer(tt.routes))
			entity, err := c.Resolve(context.Background(), tt.url)
			if !errors.Is(err, ErrNoResult) {
				t.Errorf("Resolve() error = %v, want ErrNoResult", err)
			}
			if entity != nil {
				t.Errorf("Resolve() = %+v, want nil", entity)
			}
		})
	}
}

func TestAPIThumbnailInvariant(t *testing.T) {
	routes := map[string]string{
		"api.deezer.com/track/3135556":      trackFixture,
		"api.deezer.com/playlist/908622995": playlistFixture,
		"api.deezer.com/album/302127":       albumFixture,
	}
	c := newTestClient(newFakeDeezer(routes))

	for _, u := range []string{
		"https://www.deezer.com/track/3135556",
		"https://www.deezer.com/playlist/908622995",
		"https://www.deezer.com/album/302127",
	} {
		entity, err := c.Resolve(context.Background(), u)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", u, err)
		}
		var all [][]Thumbnail
		switch v := entity.(type) {
		case *Track:
			all = append(all, v.Thumbnails)
		case *Playlist:
			all = append(all, v.Thumbnails)
			for _, tr := range v.Tracks {
				all = append(all, tr.Thumbnails)
			}
		}
		for _, thumbs := range all {
			assertThumbnailSizes(t, u, thumbs)
		}
	}
}

func assertThumbnailSizes(t *testing.T, label string, thumbs []Thumbnail) {
	t.Helper()
	if len(thumbs) != 3 {
		t.Errorf("%s: %d thumbnails, want 3", label, len(thumbs))
		return
	}
	for i, size := range []int{500, 250, 56} {
		if thumbs[i].Width != size || thumbs[i].Height != size {
			t.Errorf("%s: thumbnail %d is %dx%d, want %dx%d", label, i, thumbs[i].Width, thumbs[i].Height, size, size)
		}
	}
}
