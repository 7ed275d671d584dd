package sentry

import (
	"time"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"deezerlink/config"
)

// Init configures the global client. Without a DSN the SDK stays a no-op.
func Init(cfg config.SentryConfig) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Release:          cfg.Release,
		TracesSampleRate: cfg.TracesSampleRate,
	}); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	if !cfg.IsEnabled() {
		log.Debug("SENTRY_DSN not set, error reporting disabled")
	}
}

func GetSentryGin() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true})
}

// Flush waits for buffered events before shutdown
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
