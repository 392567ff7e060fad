package hhscan

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hh-tools/hhscan/flags"
)

// Config holds the application configuration
type Config struct {
	StoragePath string        // Path to the vacancy storage file
	APIURL      string        // Base URL of the hh.ru API
	APITimeout  time.Duration // Timeout for a single API call
	Area        int           // hh.ru area identifier
	PerPage     int           // Vacancies requested per page
	RunInterval time.Duration // Interval between fetch runs
	RunOnce     bool          // Indicates if the service should exit after one fetch run
	HealthzAddr string        // Listen address for healthz/metrics in continuous mode
	Log         *zap.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log *zap.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	storagePath := ctx.String(flags.Storage.Name)
	absStoragePath, err := filepath.Abs(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for storage file '%s': %w", storagePath, err)
	}

	perPage := ctx.Int(flags.PerPage.Name)
	if perPage <= 0 || perPage > 100 {
		return nil, fmt.Errorf("per-page must be between 1 and 100, got %d", perPage)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		StoragePath: absStoragePath,
		APIURL:      ctx.String(flags.APIURL.Name),
		APITimeout:  ctx.Duration(flags.APITimeout.Name),
		Area:        ctx.Int(flags.Area.Name),
		PerPage:     perPage,
		RunInterval: runInterval,
		RunOnce:     runOnce,
		HealthzAddr: ctx.String(flags.HealthzAddr.Name),
		Log:         log,
	}, nil
}
