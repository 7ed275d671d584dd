package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	appConfig "deezerlink/config"
	"deezerlink/deezer"
	"deezerlink/handlers"
	"deezerlink/sentry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}
	appConfig.NewConfig()

	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		TimestampFormat: time.RFC3339,
		FieldsOrder:     []string{"module", "function"},
	})
	log.SetLevel(appConfig.Config.Server.LogLevel)

	sentry.Init(appConfig.Config.Sentry)
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func newResolver(cfg appConfig.DeezerConfig) *deezer.Client {
	opts := []deezer.Option{
		deezer.WithAPIBaseURL(cfg.APIBaseURL),
		deezer.WithSiteBaseURL(cfg.SiteBaseURL),
		deezer.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, deezer.WithHeader("User-Agent", cfg.UserAgent))
	}
	return deezer.NewClient(opts...)
}

func run(ctx context.Context) error {
	router := gin.Default()
	router.Use(sentry.GetSentryGin())

	manager := handlers.NewManager(newResolver(appConfig.Config.Deezer))
	manager.Register(router)

	server := &http.Server{
		Addr:    ":" + appConfig.Config.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
