// Package app assembles the analyst: configuration, stores, the chain
// client, the analysis stack and the HTTP server, built once and run until
// cancelled.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/RachelGanonNew/AIDA-Project/internal/config"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/store/auditlog"
	"github.com/RachelGanonNew/AIDA-Project/internal/store/gormstore"
	"github.com/RachelGanonNew/AIDA-Project/internal/transport/http/api"
)

// App owns the application lifecycle.
type App struct {
	cfg     *config.Config
	server  *api.Server
	records *gormstore.Store
	audit   *auditlog.Store
	Summary *StartupSummary
}

// NewApp builds the application from cfg without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run serves the API until ctx is cancelled, then closes the stores.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}

	if a.Summary != nil {
		a.Summary.Print()
	}

	if a.server == nil {
		return fmt.Errorf("http server not initialized")
	}
	defer a.closeStores()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// closeStores closes the audit trail before the record store: the audit
// handle rides the record store's connection and must detach first.
func (a *App) closeStores() {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			logger.Warnf("[app] closing audit store: %v", err)
		}
	}
	if a.records != nil {
		if err := a.records.Close(); err != nil {
			logger.Warnf("[app] closing record store: %v", err)
		}
	}
}

// Server exposes the HTTP server instance (for testing/replay harnesses).
func (a *App) Server() *api.Server {
	if a == nil {
		return nil
	}
	return a.server
}
