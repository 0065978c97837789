// Package app wires configuration, the document store and the report service together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/de-tools/research-reports/pkg/services/config"
	"github.com/de-tools/research-reports/pkg/services/report"
	"github.com/de-tools/research-reports/pkg/store/mongodb"
	"github.com/de-tools/research-reports/pkg/store/mongodb/accesslog"
	"github.com/de-tools/research-reports/pkg/store/mongodb/containers"
	"github.com/rs/zerolog"
)

// App is an open connection to the report data sources
type App struct {
	*report.Dispatcher
	storage *mongodb.Storage
	closers []io.Closer
}

// Open connects to the profile named in cfg and builds the report dispatcher over registry.
func Open(ctx context.Context, cfg *config.Config, registry report.Registry) (*App, error) {
	logger := zerolog.Ctx(ctx)

	profiles, err := config.NewRegistry(cfg.Mongo.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection profiles from %s: %w", cfg.Mongo.ProfilesPath, err)
	}
	profile, err := profiles.GetProfile(ctx, cfg.Mongo.Profile)
	if err != nil {
		return nil, err
	}

	storage, err := mongodb.NewStorage(ctx, mongodb.Settings{
		URI:            profile.URI,
		Database:       profile.Database,
		LogDatabase:    profile.LogDatabase,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
		Breaker: mongodb.BreakerSettings{
			Name:             "mongodb-" + profile.Name,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			Timeout:          cfg.Breaker.Timeout,
		},
	})
	if err != nil {
		return nil, err
	}

	containerStore, err := containers.NewStore(storage.Database(), storage.Breaker())
	if err != nil {
		_ = storage.Close(ctx)
		return nil, fmt.Errorf("failed to create container store: %w", err)
	}
	logStore, err := accesslog.NewStore(storage.LogDatabase(), storage.Breaker())
	if err != nil {
		_ = storage.Close(ctx)
		return nil, fmt.Errorf("failed to create access log store: %w", err)
	}

	logger.Info().
		Str("profile", profile.Name).
		Str("database", profile.Database).
		Str("log_database", profile.LogDatabase).
		Msg("connected to document store")

	dispatcher := report.NewDispatcher(registry, report.Dependencies{
		Containers: containerStore,
		AccessLog:  logStore,
		Settings: report.Settings{
			PipelineTimeout:   cfg.Reports.PipelineTimeout,
			SubjectOrderField: cfg.Reports.SubjectOrderField,
		},
	})

	return &App{Dispatcher: dispatcher, storage: storage}, nil
}

func (a *App) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

// Attach registers c to be closed by Close once the store is disconnected.
func (a *App) Attach(c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.storage != nil {
		if err := a.storage.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect document store: %w", err))
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
