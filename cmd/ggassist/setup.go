package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/cache"
	"github.com/locoxsoco/GG-Assist/internal/projectconfig"
	"github.com/locoxsoco/GG-Assist/internal/session"
)

// buildSession assembles a session from project configuration plus the
// command-line overrides shared by chat and serve.
func buildSession(cfg *projectconfig.ProjectConfig, backendURL, filterDate string, sessionLog bool) (*session.Session, error) {
	if backendURL == "" {
		backendURL = cfg.Backend.URL
	}
	if filterDate == "" {
		filterDate = cfg.Chat.FilterDate
	}
	if filterDate == "" {
		filterDate = time.Now().Format("2006-01-02")
	}

	client := backend.NewHTTPClient(backendURL,
		backend.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Backend.Timeout) * time.Second,
		}))

	var resultCache *cache.Cache
	if cfg.Cache.Enabled != nil && *cfg.Cache.Enabled {
		resultCache = cache.New(cfg.Cache.Dir)
	}

	var events session.Logger = session.NopLogger{}
	if sessionLog || (cfg.SessionLog.Enabled != nil && *cfg.SessionLog.Enabled) {
		logger, err := session.NewJSONLogger(session.DefaultLogPath(cfg.SessionLog.Dir))
		if err != nil {
			return nil, fmt.Errorf("opening session log: %w", err)
		}
		slog.Debug("session log enabled", "path", logger.Path())
		events = logger
	}

	return session.New(client, session.Config{
		BackendURL: backendURL,
		FilterDate: filterDate,
		Cache:      resultCache,
		Events:     events,
	}), nil
}

// resolveFilterDate applies the flag > config > today precedence.
func resolveFilterDate(cfg *projectconfig.ProjectConfig, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.Chat.FilterDate != "" {
		return cfg.Chat.FilterDate
	}
	return time.Now().Format("2006-01-02")
}
