package deezer

import (
	"regexp"
)

// URLType is the result of classifying a user supplied URL
type URLType string

const (
	URLNone      URLType = ""
	URLSong      URLType = "song"
	URLPlaylist  URLType = "playlist"
	URLAlbum     URLType = "album"
	URLShareLink URLType = "share-link"
)

type urlPattern struct {
	re   *regexp.Regexp
	kind URLType
}

var (
	trackRegex     = regexp.MustCompile(`^(?:https?://)?(?:www\.)?deezer\.com/(?:[a-z]+/)?track/([0-9]+)`)
	playlistRegex  = regexp.MustCompile(`^(?:https?://)?(?:www\.)?deezer\.com/(?:[a-z]+/)?playlist/([0-9]+)`)
	albumRegex     = regexp.MustCompile(`^(?:https?://)?(?:www\.)?deezer\.com/(?:[a-z]+/)?album/([0-9]+)`)
	shareLinkRegex = regexp.MustCompile(`^(?:https?://)?(?:deezer\.)?page\.link/([a-zA-Z0-9]+)`)

	// Evaluated in order, first match wins.
	canonicalPatterns = []urlPattern{
		{trackRegex, URLSong},
		{playlistRegex, URLPlaylist},
		{albumRegex, URLAlbum},
	}
	urlPatterns = append(append([]urlPattern{}, canonicalPatterns...), urlPattern{shareLinkRegex, URLShareLink})
)

// Classify reports which Deezer URL family rawURL belongs to, or URLNone
func Classify(rawURL string) URLType {
	for _, p := range urlPatterns {
		if p.re.MatchString(rawURL) {
			return p.kind
		}
	}
	return URLNone
}

// canonicalID extracts the entity kind and numeric ID from a canonical URL.
// Share links are not canonical.
func canonicalID(rawURL string) (URLType, string, bool) {
	for _, p := range canonicalPatterns {
		if matches := p.re.FindStringSubmatch(rawURL); len(matches) > 1 {
			return p.kind, matches[1], true
		}
	}
	return URLNone, "", false
}

// endpoint returns the API path keyword for a canonical URL type
func (t URLType) endpoint() string {
	switch t {
	case URLSong:
		return "track"
	case URLPlaylist:
		return "playlist"
	case URLAlbum:
		return "album"
	}
	return ""
}
