package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type ConfigStruct struct {
	Server ServerConfig
	Deezer DeezerConfig
	Sentry SentryConfig
}

type ServerConfig struct {
	Port     string
	LogLevel log.Level
}

type DeezerConfig struct {
	APIBaseURL  string
	SiteBaseURL string
	UserAgent   string
	HTTPTimeout time.Duration
}

type SentryConfig struct {
	DSN              string
	Release          string
	TracesSampleRate float64
}

func (s *SentryConfig) IsEnabled() bool {
	return s.DSN != ""
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Server: ServerConfig{
			Port:     getPort(),
			LogLevel: getLogLevel(),
		},
		Deezer: DeezerConfig{
			APIBaseURL:  getBaseURL("DEEZER_API_BASE_URL", "https://api.deezer.com"),
			SiteBaseURL: getBaseURL("DEEZER_SITE_BASE_URL", "https://deezer.com"),
			UserAgent:   os.Getenv("USER_AGENT"),
			HTTPTimeout: getHTTPTimeout(),
		},
		Sentry: SentryConfig{
			DSN:              os.Getenv("SENTRY_DSN"),
			Release:          os.Getenv("RELEASE"),
			TracesSampleRate: getTracesSampleRate(),
		},
	}

	Config = config
}

func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		return "8080"
	}
	return port
}

func getLogLevel() log.Level {
	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func getBaseURL(key, fallback string) string {
	value := strings.TrimSuffix(strings.TrimSpace(os.Getenv(key)), "/")
	if value == "" {
		return fallback
	}
	return value
}

func getHTTPTimeout() time.Duration {
	timeoutStr := os.Getenv("HTTP_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		return 10 * time.Second
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout <= 0 {
		return 10 * time.Second
	}
	if timeout > 60 {
		return 60 * time.Second
	}
	return time.Duration(timeout) * time.Second
}

func getTracesSampleRate() float64 {
	rateStr := os.Getenv("SENTRY_TRACES_SAMPLE_RATE")
	if rateStr == "" {
		return 1.0
	}
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil || rate < 0 {
		return 1.0
	}
	if rate > 1 {
		return 1.0
	}
	return rate
}
