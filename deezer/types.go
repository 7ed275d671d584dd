package deezer

import "fmt"

// Kind is the normalized entity type carried in every result
type Kind string

const (
	KindSong     Kind = "song"
	KindPlaylist Kind = "playlist"
	KindAlbum    Kind = "album"
)

// Entity is either a *Track or a *Playlist
type Entity interface {
	EntityKind() Kind
}

// Thumbnail is one artwork rendition
type Thumbnail struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// Artist is a contributor or the owner of a collection
type Artist struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Image string `json:"image,omitempty"`
}

// Track represents a single song
type Track struct {
	Name       string      `json:"name"`
	URL        string      `json:"url"`
	Duration   int         `json:"duration"` // seconds
	Authors    []Artist    `json:"authors"`
	Thumbnails []Thumbnail `json:"thumbnails"`
	Kind       Kind        `json:"kind"`
}

// Playlist represents a playlist or an album, distinguished by Kind
type Playlist struct {
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	Tracks      []Track     `json:"tracks"`
	Artist      Artist      `json:"artist"`
	Description string      `json:"description"`
	Thumbnails  []Thumbnail `json:"thumbnails"`
	Kind        Kind        `json:"kind"`
}

func (t *Track) EntityKind() Kind    { return t.Kind }
func (p *Playlist) EntityKind() Kind { return p.Kind }

// SearchType selects the search endpoint facet
type SearchType string

const (
	SearchAll      SearchType = "all"
	SearchAlbum    SearchType = "album"
	SearchArtist   SearchType = "artist"
	SearchPlaylist SearchType = "playlist"
	SearchPodcast  SearchType = "podcast"
	SearchRadio    SearchType = "radio"
	SearchTrack    SearchType = "track"
	SearchUser     SearchType = "user"
)

var searchTypes = map[SearchType]bool{
	SearchAll:      true,
	SearchAlbum:    true,
	SearchArtist:   true,
	SearchPlaylist: true,
	SearchPodcast:  true,
	SearchRadio:    true,
	SearchTrack:    true,
	SearchUser:     true,
}

// ParseSearchType accepts the lowercase facet names; empty means SearchAll
func ParseSearchType(s string) (SearchType, error) {
	if s == "" {
		return SearchAll, nil
	}
	t := SearchType(s)
	if !searchTypes[t] {
		return "", fmt.Errorf("unknown search type %q", s)
	}
	return t, nil
}

// SearchOptions configures a single Search call. Zero values select the defaults.
type SearchOptions struct {
	Type    SearchType
	Limit   int // <= 0 means unbounded, sent as 100
	Index   int // sent only when > 0
	Request RequestOptions
}

// SearchResult is the upstream search response, passed through untyped
type SearchResult struct {
	Data  []any  `json:"data"`
	Total int    `json:"total"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// SearchErrorBody is the payload of an upstream search error
type SearchErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SearchError is returned when the search endpoint reports an error object
type SearchError struct {
	Err SearchErrorBody `json:"error"`
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("deezer search: %s (%d): %s", e.Err.Type, e.Err.Code, e.Err.Message)
}
