// Package cli implements the shotcraft command handlers.
package cli

import (
	"context"
	"fmt"
	"os"

	"shotcraft/internal/api"
	"shotcraft/internal/auth"
	"shotcraft/internal/config"
	"shotcraft/internal/storage"
	"shotcraft/pkg/logger"
)

// App wires the long-lived collaborators every command needs: config, the
// backend client, and the auth session. The session is the single injected
// instance; the client's 401 handler is its HandleUnauthorized, so the
// session-expired policy lives in exactly one place.
type App struct {
	Config  *config.Config
	Client  *api.Client
	Session *auth.Session

	store auth.TokenStore
	cache *storage.Cache
}

// NewApp loads configuration and builds the client/session pair.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}
	if raw := os.Getenv("SHOTCRAFT_LOG_LEVEL"); raw != "" {
		level, err := logger.ParseLevel(raw)
		if err != nil {
			return nil, err
		}
		logger.SetLevel(level)
	}

	store := auth.NewKeyringStore(cfg.Home)
	client := api.NewClient(cfg.ServerURL, api.WithTokenSource(store.Get))
	session := auth.NewSession(store, client)
	client.SetUnauthorizedHandler(session.HandleUnauthorized)

	return &App{
		Config:  cfg,
		Client:  client,
		Session: session,
		store:   store,
	}, nil
}

// RequireAuth runs the startup identity check and gates the command on the
// route guard's decision.
func (a *App) RequireAuth(ctx context.Context) error {
	a.Session.Init(ctx)

	switch auth.Decide(a.Session.State()) {
	case auth.Render:
		return nil
	case auth.RedirectToLogin:
		if msg := a.Session.LastError(); msg != "" {
			return fmt.Errorf("%s Run `shotcraft auth login`.", msg)
		}
		return fmt.Errorf("not logged in. Run `shotcraft auth login`.")
	default:
		return fmt.Errorf("authentication check did not complete")
	}
}

// OpenCache lazily opens the offline session cache.
func (a *App) OpenCache() (*storage.Cache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	cache, err := storage.Open(a.Config.CachePath)
	if err != nil {
		return nil, err
	}
	a.cache = cache
	return cache, nil
}

// Close releases app resources.
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warnf("failed to close session cache: %v", err)
		}
		a.cache = nil
	}
	a.Session.Teardown()
}
