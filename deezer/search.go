package deezer

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"deezerlink/sentryhelper"
)

const defaultSearchLimit = 100

// searchURL builds {apiBase}/search[/{type}]?q=&limit=[&index=]
func (c *Client) searchURL(query string, opts SearchOptions) (string, error) {
	u, err := url.Parse(c.apiBase)
	if err != nil {
		return "", err
	}

	path := strings.TrimSuffix(u.Path, "/") + "/search"
	if opts.Type != "" && opts.Type != SearchAll && searchTypes[opts.Type] {
		path += "/" + string(opts.Type)
	}
	u.Path = path

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	if opts.Index > 0 {
		params.Set("index", strconv.Itoa(opts.Index))
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// Search forwards query to the search endpoint. An upstream error object is
// returned as a *SearchError; any other failure is ErrNoResult.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	logger := log.WithFields(log.Fields{"module": "deezer", "function": "Search"})

	span := sentry.StartSpan(ctx, "deezer.search")
	span.Description = "Search Deezer API"
	span.SetTag("query", query)
	span.SetTag("type", string(opts.Type))
	defer span.Finish()
	ctx = span.Context()

	searchURL, err := c.searchURL(query, opts)
	if err != nil {
		logger.Errorf("Invalid API base URL %s: %v", c.apiBase, err)
		span.Status = sentry.SpanStatusInvalidArgument
		return nil, ErrNoResult
	}

	body, err := c.get(ctx, searchURL, c.requestOptions(opts.Request), acceptJSON)
	if err != nil {
		logger.Errorf("Search request failed: %v", err)
		sentryhelper.CaptureException(ctx, err)
		span.Status = sentry.SpanStatusUnavailable
		return nil, ErrNoResult
	}
	if !gjson.ValidBytes(body) {
		logger.Errorf("Search response is not JSON")
		span.Status = sentry.SpanStatusInternalError
		return nil, ErrNoResult
	}

	if upstream := gjson.GetBytes(body, "error"); upstream.IsObject() {
		searchErr := &SearchError{Err: SearchErrorBody{
			Type:    upstream.Get("type").String(),
			Message: upstream.Get("message").String(),
			Code:    int(upstream.Get("code").Int()),
		}}
		logger.Warnf("Search for %q returned an error: %v", query, searchErr)
		span.Status = sentry.SpanStatusFailedPrecondition
		return nil, searchErr
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		logger.Errorf("Failed to decode search response: %v", err)
		span.Status = sentry.SpanStatusInternalError
		return nil, ErrNoResult
	}

	logger.Debugf("Search for %q returned %d of %d results", query, len(result.Data), result.Total)
	span.Status = sentry.SpanStatusOK
	span.SetData("results_count", len(result.Data))
	span.SetData("total", result.Total)
	return &result, nil
}
