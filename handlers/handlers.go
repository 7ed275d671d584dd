package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"deezerlink/deezer"
	"deezerlink/sentryhelper"
)

type Resolver interface {
	Resolve(ctx context.Context, rawURL string, opts ...deezer.RequestOptions) (deezer.Entity, error)
	Search(ctx context.Context, query string, opts deezer.SearchOptions) (*deezer.SearchResult, error)
}

type Manager struct {
	resolver Resolver
}

func NewManager(resolver Resolver) *Manager {
	return &Manager{resolver: resolver}
}

// Register mounts the routes on router
func (m *Manager) Register(router gin.IRouter) {
	router.GET("/health", m.Health)
	router.GET("/classify", m.Classify)
	router.GET("/resolve", m.Resolve)
	router.GET("/search", m.Search)
}

func (m *Manager) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (m *Manager) Classify(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":  rawURL,
		"type": deezer.Classify(rawURL),
	})
}

func (m *Manager) Resolve(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url"})
		return
	}

	ctx, transaction := sentryhelper.StartRequestTransaction(c.Request.Context(), "resolve", map[string]string{
		"url_type": string(deezer.Classify(rawURL)),
	})
	defer transaction.Finish()

	sentryhelper.AddBreadcrumb(ctx, &sentry.Breadcrumb{
		Category: "resolve",
		Message:  rawURL,
		Level:    sentry.LevelInfo,
	})

	entity, err := m.resolver.Resolve(ctx, rawURL)
	if err != nil {
		log.Debugf("No result for %s", rawURL)
		transaction.Status = sentry.SpanStatusNotFound
		c.JSON(http.StatusNotFound, gin.H{"error": "no result"})
		return
	}

	transaction.Status = sentry.SpanStatusOK
	c.JSON(http.StatusOK, entity)
}

func (m *Manager) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q"})
		return
	}

	searchType, err := deezer.ParseSearchType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := deezer.SearchOptions{
		Type:  searchType,
		Limit: queryInt(c, "limit"),
		Index: queryInt(c, "index"),
	}

	ctx, transaction := sentryhelper.StartRequestTransaction(c.Request.Context(), "search", map[string]string{
		"type": string(searchType),
	})
	defer transaction.Finish()

	result, err := m.resolver.Search(ctx, query, opts)
	if err != nil {
		var searchErr *deezer.SearchError
		if errors.As(err, &searchErr) {
			transaction.Status = sentry.SpanStatusFailedPrecondition
			c.JSON(http.StatusBadGateway, searchErr)
			return
		}
		transaction.Status = sentry.SpanStatusUnavailable
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no result"})
		return
	}

	transaction.Status = sentry.SpanStatusOK
	c.JSON(http.StatusOK, result)
}

// queryInt returns 0 for a missing or malformed parameter, which the search
// options treat as "use the default"
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
