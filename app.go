// Package hhscan wires the vacancy manager, storage and sidecar endpoints
// into a runnable service.
package hhscan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hh-tools/hhscan/api"
	"github.com/hh-tools/hhscan/exitcodes"
	"github.com/hh-tools/hhscan/manager"
	"github.com/hh-tools/hhscan/service"
	"github.com/hh-tools/hhscan/storage"
)

// ShutdownTimeout bounds how long Stop waits for the healthz server and the
// fetch loop to wind down.
const ShutdownTimeout = 10 * time.Second

// App runs vacancy fetches either once or on an interval, with healthz and
// metrics exposed in continuous mode.
type App struct {
	config  *Config
	manager *manager.Manager
	healthz *service.HealthzServer
	query   string

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewApp builds the service from config: storage backend selected by the
// file extension, API client bound to the configured base URL.
func NewApp(config *Config, query string) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	store, err := storage.Open(config.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := api.NewHHClient(config.APIURL, config.Area, config.PerPage, config.APITimeout)

	mgr, err := manager.New(client, store, config.Log)
	if err != nil {
		return nil, fmt.Errorf("create manager: %w", err)
	}

	return &App{
		config:  config,
		manager: mgr,
		healthz: service.NewHealthzServer(config.Log),
		query:   query,
		done:    make(chan struct{}),
	}, nil
}

// Manager exposes the vacancy manager for query subcommands.
func (a *App) Manager() *manager.Manager {
	return a.manager
}

// Start performs the first fetch immediately. In run-once mode it returns
// after that fetch; otherwise it keeps fetching on the configured interval
// and serves healthz/metrics until Stop.
func (a *App) Start(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Error("Runtime error occurred", zap.Any("error", r))
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	a.running.Store(true)

	if a.config.RunOnce {
		a.config.Log.Info("Starting hhscan in run-once mode", zap.String("query", a.query))
	} else {
		a.config.Log.Info("Starting hhscan in continuous mode",
			zap.String("query", a.query),
			zap.Duration("interval", a.config.RunInterval))
	}

	if err := a.fetch(ctx); err != nil {
		a.config.Log.Error("Fetch run failed", zap.Error(err))
		if a.config.RunOnce {
			return NewRuntimeError(err)
		}
		// In continuous mode a failed run is retried on the next tick.
	}

	if a.config.RunOnce {
		a.running.Store(false)
		return nil
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.healthz.Start(a.config.HealthzAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.config.Log.Error("Healthz server failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.config.RunInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !a.running.Load() {
					return
				}
				if err := a.fetch(ctx); err != nil {
					a.config.Log.Error("Periodic fetch failed", zap.Error(err))
				}
			case <-a.done:
				return
			case <-ctx.Done():
				a.running.Store(false)
				return
			}
		}
	}()

	return nil
}

func (a *App) fetch(ctx context.Context) error {
	stored, err := a.manager.FetchAndStore(ctx, a.query)
	if err != nil {
		return err
	}
	a.config.Log.Info("Stored vacancies", zap.Int("count", stored))
	return nil
}

// Stop stops the periodic fetch loop and the healthz server.
func (a *App) Stop(ctx context.Context) error {
	if !a.running.Load() {
		return nil
	}
	a.running.Store(false)
	close(a.done)
	if err := a.healthz.Shutdown(ctx); err != nil {
		a.config.Log.Warn("Healthz shutdown failed", zap.Error(err))
	}
	a.config.Log.Info("hhscan stopped")
	return nil
}

// Stopped reports whether the service has stopped running.
func (a *App) Stopped() bool {
	return !a.running.Load()
}

// WaitForShutdown blocks until the background goroutines have terminated or
// the context expires.
func (a *App) WaitForShutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
