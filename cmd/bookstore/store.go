package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/config"
	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/db/memory"
	dbMongo "github.com/kailas-cloud/bookstore/internal/db/mongo"
	"github.com/kailas-cloud/bookstore/internal/usecase/catalog"
	seeduc "github.com/kailas-cloud/bookstore/internal/usecase/seed"
)

// openStore creates the store selected by the config and waits until it answers.
// The in-memory store starts empty unless seed.fixtures or seed.random is set.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (db.Store, error) {
	var store db.Store
	switch cfg.Database.Driver {
	case config.DriverMongo:
		s, err := dbMongo.NewStore(ctx, dbMongo.Config{
			URI:              cfg.Database.URI,
			Database:         cfg.Database.Name,
			Collection:       cfg.Database.Collection,
			AppName:          cfg.Database.AppName,
			ConnectTimeout:   cfg.Database.ConnectTimeout(),
			OperationTimeout: cfg.Database.OperationTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("create mongo store: %w", err)
		}
		store = s
	case config.DriverMemory:
		s := memory.NewStore()
		if _, err := seeduc.New(s, logger).Load(ctx, seedOptions(cfg, false)); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		_ = store.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.Name),
		zap.String("collection", cfg.Database.Collection),
	)
	return store, nil
}

// connector opens a fresh store per session.
func connector(cfg config.Config, logger *zap.Logger) catalog.Connector {
	return func(ctx context.Context) (catalog.Session, error) {
		return openStore(ctx, cfg, logger)
	}
}

func seedOptions(cfg config.Config, reset bool) seeduc.Options {
	return seeduc.Options{
		Fixtures: cfg.Seed.Fixtures,
		Random:   cfg.Seed.Random,
		Seed:     cfg.Seed.Seed,
		Reset:    reset,
	}
}
