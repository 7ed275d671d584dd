package deezer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const imageCDN = "https://e-cdn-images.dzcdn.net/images"

type imageCategory string

const (
	categoryCover    imageCategory = "cover"
	categoryPlaylist imageCategory = "playlist"
	categoryArtist   imageCategory = "artist"
)

// Largest first. Every thumbnail list has exactly these three entries.
var thumbnailSizes = [3]int{500, 250, 56}

// imageURL synthesizes an artwork URL from an image hash, or "" without a hash
func imageURL(category imageCategory, hash string, size int) string {
	if hash == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%dx%d-000000-80-0-0.jpg", imageCDN, category, hash, size, size)
}

// thumbnails builds the 500/250/56 list. For each size an explicit URL wins,
// then the URL synthesized from hash, then "".
func thumbnails(category imageCategory, hash string, explicit ...string) []Thumbnail {
	out := make([]Thumbnail, 0, len(thumbnailSizes))
	for i, size := range thumbnailSizes {
		u := ""
		if i < len(explicit) {
			u = explicit[i]
		}
		if u == "" {
			u = imageURL(category, hash, size)
		}
		out = append(out, Thumbnail{Width: size, Height: size, URL: u})
	}
	return out
}

// seconds decodes a duration given either as a JSON number or a numeric string.
// Anything unparsable, negative or beyond MaxInt32 becomes 0.
type seconds int

func (s *seconds) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(b), `"`))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		*s = 0
		return nil
	}
	*s = seconds(f)
	return nil
}

// flexString decodes IDs that arrive as numbers from the API and as strings
// from the embedded page state.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '{', '[', 't', 'f':
		return errors.New("expected string or number")
	default:
		*f = flexString(b)
	}
	return nil
}

func (f flexString) String() string { return string(f) }

// isListedArtist is the author filter shared by both sources: the entry must
// be typed "artist" and carry both a name and a link (or an ID to build one).
func isListedArtist(kind, name, link string) bool {
	return kind == "artist" && name != "" && link != ""
}

func (c *Client) artistURL(id flexString) string {
	return fmt.Sprintf("%s/artist/%s", c.siteBase, id)
}

func (c *Client) entityURL(kind URLType, id flexString) string {
	return fmt.Sprintf("%s/%s/%s", c.siteBase, kind.endpoint(), id)
}
