package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

var (
	errUpstream      = errors.New("API returned an error object")
	errUnexpected    = errors.New("unexpected response type")
	errMissingArtist = errors.New("no artist listed")
)

// apiArtist covers contributors, track artists and playlist creators
type apiArtist struct {
	ID            flexString `json:"id"`
	Name          string     `json:"name"`
	Link          string     `json:"link"`
	Type          string     `json:"type"`
	PictureBig    string     `json:"picture_big"`
	PictureMedium string     `json:"picture_medium"`
}

type apiTrack struct {
	Type         string           `json:"type"`
	Title        string           `json:"title"`
	Link         string           `json:"link"`
	Duration     seconds          `json:"duration"`
	MD5Image     string           `json:"md5_image"`
	Contributors []apiArtist      `json:"contributors"`
	Artist       apiArtist        `json:"artist"`
	Error        *SearchErrorBody `json:"error"`
}

// apiCollection is the shared shape of /playlist/{id} and /album/{id}
type apiCollection struct {
	Type          string           `json:"type"`
	Title         string           `json:"title"`
	Link          string           `json:"link"`
	Description   string           `json:"description"`
	MD5Image      string           `json:"md5_image"`
	PictureBig    string           `json:"picture_big"`
	PictureMedium string           `json:"picture_medium"`
	PictureSmall  string           `json:"picture_small"`
	CoverBig      string           `json:"cover_big"`
	CoverMedium   string           `json:"cover_medium"`
	CoverSmall    string           `json:"cover_small"`
	Creator       apiArtist        `json:"creator"`
	Contributors  []apiArtist      `json:"contributors"`
	Artist        apiArtist        `json:"artist"`
	Tracks        struct {
		Data []apiTrack `json:"data"`
	} `json:"tracks"`
	Error *SearchErrorBody `json:"error"`
}

func (c *Client) apiURL(kind URLType, id string) string {
	return fmt.Sprintf("%s/%s/%s", c.apiBase, kind.endpoint(), id)
}

func (c *Client) fetchJSON(ctx context.Context, rawURL string, ro RequestOptions, v any) error {
	body, err := c.get(ctx, rawURL, ro, acceptJSON)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}

// resolveByID calls the API for a canonical URL's entity
func (c *Client) resolveByID(ctx context.Context, kind URLType, id string, ro RequestOptions) (Entity, error) {
	span := sentry.StartSpan(ctx, "deezer.resolve_api")
	span.Description = "Get entity from Deezer API"
	span.SetTag("kind", string(kind))
	span.SetTag("id", id)
	defer span.Finish()

	var (
		entity Entity
		err    error
	)
	switch kind {
	case URLSong:
		entity, err = c.fetchTrack(span.Context(), id, ro)
	case URLPlaylist, URLAlbum:
		var data *apiCollection
		data, err = c.fetchCollection(span.Context(), kind, id, ro)
		if err == nil {
			entity, err = c.collectionFromAPI(kind, data)
		}
	default:
		err = fmt.Errorf("%w: %q", errUnexpected, kind)
	}

	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}
	span.Status = sentry.SpanStatusOK
	return entity, nil
}

func (c *Client) fetchTrack(ctx context.Context, id string, ro RequestOptions) (*Track, error) {
	var data apiTrack
	if err := c.fetchJSON(ctx, c.apiURL(URLSong, id), ro, &data); err != nil {
		return nil, err
	}
	if data.Error != nil {
		return nil, fmt.Errorf("%w: %s", errUpstream, data.Error.Message)
	}
	if data.Type != "track" {
		return nil, fmt.Errorf("%w: %q", errUnexpected, data.Type)
	}
	return c.trackFromAPI(&data)
}

func (c *Client) fetchCollection(ctx context.Context, kind URLType, id string, ro RequestOptions) (*apiCollection, error) {
	var data apiCollection
	if err := c.fetchJSON(ctx, c.apiURL(kind, id), ro, &data); err != nil {
		return nil, err
	}
	if data.Error != nil {
		return nil, fmt.Errorf("%w: %s", errUpstream, data.Error.Message)
	}
	log.Tracef("Fetched Deezer %s %s with %d tracks", kind, id, len(data.Tracks.Data))
	return &data, nil
}

// trackFromAPI maps a standalone /track response. Authors come from the
// filtered contributor list.
func (c *Client) trackFromAPI(data *apiTrack) (*Track, error) {
	authors := make([]Artist, 0, len(data.Contributors))
	for _, a := range data.Contributors {
		if !isListedArtist(a.Type, a.Name, a.Link) {
			continue
		}
		authors = append(authors, Artist{Name: a.Name, URL: a.Link, Image: a.PictureBig})
	}
	if len(authors) == 0 {
		if data.Artist.Name == "" {
			return nil, fmt.Errorf("track %q: %w", data.Title, errMissingArtist)
		}
		authors = append(authors, c.trackArtist(data.Artist))
	}

	return &Track{
		Name:       data.Title,
		URL:        data.Link,
		Duration:   int(data.Duration),
		Authors:    authors,
		Thumbnails: thumbnails(categoryCover, data.MD5Image),
		Kind:       KindSong,
	}, nil
}

// trackArtist maps the single artist object embedded in a collection track
func (c *Client) trackArtist(a apiArtist) Artist {
	link := a.Link
	if link == "" && a.ID != "" {
		link = c.artistURL(a.ID)
	}
	return Artist{Name: a.Name, URL: link}
}

// collectionTracks maps the listing. A track without a named artist fails
// the whole collection.
func (c *Client) collectionTracks(data []apiTrack) ([]Track, error) {
	tracks := make([]Track, 0, len(data))
	for _, t := range data {
		if t.Artist.Name == "" {
			return nil, fmt.Errorf("collection track %q: %w", t.Title, errMissingArtist)
		}
		tracks = append(tracks, Track{
			Name:       t.Title,
			URL:        t.Link,
			Duration:   int(t.Duration),
			Authors:    []Artist{c.trackArtist(t.Artist)},
			Thumbnails: thumbnails(categoryCover, t.MD5Image),
			Kind:       KindSong,
		})
	}
	return tracks, nil
}

// apiOwner picks the owning artist of a collection response
func (c *Client) apiOwner(kind URLType, data *apiCollection) (Artist, error) {
	if kind == URLPlaylist {
		if data.Creator.Name == "" {
			return Artist{}, fmt.Errorf("playlist %q: %w", data.Title, errMissingArtist)
		}
		return Artist{
			Name: data.Creator.Name,
			URL:  fmt.Sprintf("%s/profile/%s", c.siteBase, data.Creator.ID),
		}, nil
	}

	if len(data.Contributors) > 0 && data.Contributors[0].Name != "" {
		a := data.Contributors[0]
		return Artist{Name: a.Name, URL: a.Link, Image: a.PictureMedium}, nil
	}
	if data.Artist.Name != "" {
		a := c.trackArtist(data.Artist)
		a.Image = data.Artist.PictureMedium
		return a, nil
	}
	return Artist{}, fmt.Errorf("album %q: %w", data.Title, errMissingArtist)
}

func (c *Client) collectionFromAPI(kind URLType, data *apiCollection) (*Playlist, error) {
	owner, err := c.apiOwner(kind, data)
	if err != nil {
		return nil, err
	}
	tracks, err := c.collectionTracks(data.Tracks.Data)
	if err != nil {
		return nil, err
	}

	p := &Playlist{
		Name:   data.Title,
		URL:    data.Link,
		Tracks: tracks,
		Artist: owner,
	}
	if kind == URLPlaylist {
		p.Kind = KindPlaylist
		p.Description = data.Description
		p.Thumbnails = thumbnails(categoryPlaylist, data.MD5Image, data.PictureBig, data.PictureMedium, data.PictureSmall)
	} else {
		p.Kind = KindAlbum
		p.Thumbnails = thumbnails(categoryCover, data.MD5Image, data.CoverBig, data.CoverMedium, data.CoverSmall)
	}
	return p, nil
}
