// Package deezer resolves Deezer track, playlist, album and share links into a
// normalized model and forwards search queries to the Deezer API.
package deezer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"deezerlink/sentryhelper"
)

const (
	DefaultAPIBaseURL  = "https://api.deezer.com"
	DefaultSiteBaseURL = "https://deezer.com"

	acceptJSON = "application/json"
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	maxBodySize = 16 << 20
)

// ErrNoResult is returned for every resolution failure: unknown URL, network
// failure, non-2xx, or a page/response that could not be mapped.
var ErrNoResult = errors.New("deezer: no result")

// RequestOptions is passed through to the HTTP layer untouched.
// A nil Client selects the resolver's default client.
type RequestOptions struct {
	Client *http.Client
	Header http.Header
}

type Client struct {
	apiBase  string
	siteBase string
	defaults RequestOptions
}

type Option func(*Client)

func WithAPIBaseURL(u string) Option {
	return func(c *Client) { c.apiBase = strings.TrimSuffix(u, "/") }
}

func WithSiteBaseURL(u string) Option {
	return func(c *Client) { c.siteBase = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.defaults.Client = hc }
}

// WithHeader sets a header sent on every request unless a call overrides it
func WithHeader(key, value string) Option {
	return func(c *Client) { c.defaults.Header.Set(key, value) }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		apiBase:  DefaultAPIBaseURL,
		siteBase: DefaultSiteBaseURL,
		defaults: RequestOptions{
			Client: &http.Client{},
			Header: http.Header{},
		},
	}
	// Set realistic User-Agent, the share link host serves a consent page to bots
	c.defaults.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	c.defaults.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClient = NewClient()

// Resolve uses a client with the default endpoints
func Resolve(ctx context.Context, rawURL string, opts ...RequestOptions) (Entity, error) {
	return defaultClient.Resolve(ctx, rawURL, opts...)
}

// Search uses a client with the default endpoints
func Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	return defaultClient.Search(ctx, query, opts)
}

// requestOptions overlays the caller's options onto the client defaults.
// The result is a fresh value; the defaults are never modified.
func (c *Client) requestOptions(overrides ...RequestOptions) RequestOptions {
	ro := RequestOptions{
		Client: c.defaults.Client,
		Header: c.defaults.Header.Clone(),
	}
	if ro.Header == nil {
		ro.Header = http.Header{}
	}
	if ro.Client == nil {
		ro.Client = http.DefaultClient
	}
	for _, o := range overrides {
		if o.Client != nil {
			ro.Client = o.Client
		}
		for k, v := range o.Header {
			ro.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	return ro
}

// Resolve maps a canonical Deezer URL or a share link to a *Track or *Playlist.
// Every failure collapses to ErrNoResult.
func (c *Client) Resolve(ctx context.Context, rawURL string, opts ...RequestOptions) (Entity, error) {
	logger := log.WithFields(log.Fields{"module": "deezer", "function": "Resolve"})
	logger.Tracef("Resolving Deezer URL: %s", rawURL)

	span := sentry.StartSpan(ctx, "deezer.resolve")
	span.Description = "Resolve Deezer URL"
	span.SetTag("url", rawURL)
	defer span.Finish()
	ctx = span.Context()

	ro := c.requestOptions(opts...)

	var (
		entity Entity
		err    error
	)
	if kind, id, ok := canonicalID(rawURL); ok {
		span.SetTag("url_type", string(kind))
		entity, err = c.resolveByID(ctx, kind, id, ro)
	} else if Classify(rawURL) == URLShareLink {
		span.SetTag("url_type", string(URLShareLink))
		entity, err = c.resolveByScrape(ctx, rawURL, ro)
	} else {
		logger.Warnf("URL is not a Deezer link: %s", rawURL)
		span.Status = sentry.SpanStatusInvalidArgument
		return nil, ErrNoResult
	}

	if err != nil {
		logger.Errorf("Failed to resolve Deezer URL %s: %v", rawURL, err)
		sentryhelper.CaptureException(ctx, err)
		span.Status = sentry.SpanStatusInternalError
		return nil, ErrNoResult
	}

	logger.Debugf("Resolved Deezer %s: '%s'", entity.EntityKind(), entityName(entity))
	span.Status = sentry.SpanStatusOK
	span.SetData("kind", string(entity.EntityKind()))
	return entity, nil
}

func entityName(e Entity) string {
	switch v := e.(type) {
	case *Track:
		return v.Name
	case *Playlist:
		return v.Name
	}
	return ""
}

// get issues a single GET. Transport errors and non-2xx responses are errors.
func (c *Client) get(ctx context.Context, rawURL string, ro RequestOptions, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range ro.Header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", accept)
	}

	log.Tracef("Fetching %s", rawURL)

	resp, err := ro.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
