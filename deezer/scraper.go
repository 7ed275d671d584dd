package deezer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

const appStateMarker = "window.__DZR_APP_STATE__"

var (
	errNoAppState    = errors.New("no application state script found")
	errEmptyAppState = errors.New("application state script is empty")
	errNoPageData    = errors.New("application state has no DATA")
	errMissingID     = errors.New("embedded entity has no ID")
)

type pageArtist struct {
	Type    string     `json:"__TYPE__"`
	ID      flexString `json:"ART_ID"`
	Name    string     `json:"ART_NAME"`
	Picture string     `json:"ART_PICTURE"`
}

// pageData is the DATA object of the embedded application state
type pageData struct {
	Type string `json:"__TYPE__"`

	SongID       flexString   `json:"SNG_ID"`
	SongTitle    string       `json:"SNG_TITLE"`
	Duration     seconds      `json:"DURATION"`
	Artists      []pageArtist `json:"ARTISTS"`
	AlbumID      flexString   `json:"ALB_ID"`
	AlbumTitle   string       `json:"ALB_TITLE"`
	AlbumPicture string       `json:"ALB_PICTURE"`

	PlaylistID      flexString   `json:"PLAYLIST_ID"`
	Title           string       `json:"TITLE"`
	Description     *string      `json:"DESCRIPTION"`
	PlaylistPicture string       `json:"PLAYLIST_PICTURE"`
	LinkedArtists   []pageArtist `json:"PLAYLIST_LINKED_ARTIST"`
}

type pageState struct {
	Data *pageData `json:"DATA"`
}

// resolveByScrape fetches a share link page and maps its embedded state.
// Collections need a second API call since the page omits their tracks.
func (c *Client) resolveByScrape(ctx context.Context, rawURL string, ro RequestOptions) (Entity, error) {
	span := sentry.StartSpan(ctx, "deezer.resolve_scrape")
	span.Description = "Resolve Deezer share link via web scraping"
	span.SetTag("url", rawURL)
	defer span.Finish()
	ctx = span.Context()

	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	body, err := c.get(ctx, rawURL, ro, acceptHTML)
	if err != nil {
		span.Status = sentry.SpanStatusUnavailable
		return nil, err
	}

	data, err := extractPageData(body)
	if err != nil {
		span.Status = sentry.SpanStatusNotFound
		return nil, err
	}
	log.Tracef("Extracted embedded %s state from %s", data.Type, rawURL)
	span.SetTag("embedded_type", data.Type)

	var entity Entity
	switch data.Type {
	case string(KindSong):
		entity, err = c.trackFromPage(data)
	case string(KindPlaylist):
		entity, err = c.collectionFromPage(ctx, URLPlaylist, data, ro)
	case string(KindAlbum):
		entity, err = c.collectionFromPage(ctx, URLAlbum, data, ro)
	default:
		err = fmt.Errorf("%w: %q", errUnexpected, data.Type)
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	span.Status = sentry.SpanStatusOK
	return entity, nil
}

// extractPageData finds the application state script and decodes its DATA
func extractPageData(body []byte) (*pageData, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	script := doc.Find("script").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), appStateMarker)
	}).First()
	if script.Length() == 0 {
		return nil, errNoAppState
	}

	raw := strings.TrimSpace(script.Text())
	if i := strings.Index(raw, appStateMarker); i >= 0 {
		raw = raw[i+len(appStateMarker):]
	}
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "="))
	if raw == "" || raw == ";" {
		return nil, errEmptyAppState
	}

	// Decode only the first value, the script may go on after the assignment
	var state pageState
	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode application state: %w", err)
	}
	if state.Data == nil {
		return nil, errNoPageData
	}
	return state.Data, nil
}

func (c *Client) pageArtist(a pageArtist) Artist {
	return Artist{
		Name:  a.Name,
		URL:   c.artistURL(a.ID),
		Image: imageURL(categoryArtist, a.Picture, thumbnailSizes[0]),
	}
}

func (c *Client) trackFromPage(data *pageData) (*Track, error) {
	authors := make([]Artist, 0, len(data.Artists))
	for _, a := range data.Artists {
		if !isListedArtist(a.Type, a.Name, a.ID.String()) {
			continue
		}
		authors = append(authors, c.pageArtist(a))
	}
	if len(authors) == 0 {
		return nil, fmt.Errorf("track %q: %w", data.SongTitle, errMissingArtist)
	}

	return &Track{
		Name:       data.SongTitle,
		URL:        c.entityURL(URLSong, data.SongID),
		Duration:   int(data.Duration),
		Authors:    authors,
		Thumbnails: thumbnails(categoryCover, data.AlbumPicture),
		Kind:       KindSong,
	}, nil
}

// collectionFromPage builds the playlist or album shell from the page, then
// fills its tracks from the API.
func (c *Client) collectionFromPage(ctx context.Context, kind URLType, data *pageData, ro RequestOptions) (*Playlist, error) {
	p := &Playlist{Tracks: []Track{}}
	if data.Description != nil {
		p.Description = *data.Description
	}

	var (
		id      flexString
		artists []pageArtist
	)
	if kind == URLPlaylist {
		id = data.PlaylistID
		artists = data.LinkedArtists
		p.Kind = KindPlaylist
		p.Name = data.Title
		p.Thumbnails = thumbnails(categoryPlaylist, data.PlaylistPicture)
	} else {
		id = data.AlbumID
		artists = data.Artists
		p.Kind = KindAlbum
		p.Name = data.AlbumTitle
		p.Thumbnails = thumbnails(categoryCover, data.AlbumPicture)
	}
	if id == "" {
		return nil, fmt.Errorf("%s: %w", kind, errMissingID)
	}
	p.URL = c.entityURL(kind, id)

	hasOwner := len(artists) > 0 && artists[0].Name != ""
	if hasOwner {
		p.Artist = c.pageArtist(artists[0])
	}

	listing, err := c.fetchCollection(ctx, kind, id.String(), ro)
	if err != nil {
		return nil, fmt.Errorf("secondary fetch of %s %s: %w", kind, id, err)
	}
	if p.Tracks, err = c.collectionTracks(listing.Tracks.Data); err != nil {
		return nil, err
	}

	if !hasOwner {
		// User playlists carry no linked artist, the API knows the creator
		owner, err := c.apiOwner(kind, listing)
		if err != nil {
			return nil, err
		}
		p.Artist = owner
	}
	return p, nil
}
