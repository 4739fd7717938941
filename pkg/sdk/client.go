package bookstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/db/memory"
	dbMongo "github.com/kailas-cloud/bookstore/internal/db/mongo"
	"github.com/kailas-cloud/bookstore/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/bookstore/internal/usecase/health"
	seeduc "github.com/kailas-cloud/bookstore/internal/usecase/seed"
)

const (
	driverMongo  = "mongo"
	driverMemory = "memory"

	defaultReadinessTimeout = 10 * time.Second
)

// Client is the bookstore SDK entry point. It holds one store for its
// lifetime; call Close to release it.
type Client struct {
	store  db.Store
	exec   *catalog.Executor
	seed   *seeduc.Service
	health *healthuc.Service
	obs    *observer
}

// New creates a Client and waits until the store answers.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, errors.New("bookstore: store required (use WithMongo or WithMemory)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = store.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("bookstore: database not ready: %w", err)
	}

	return wireClient(store, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverMongo:
		s, err := dbMongo.NewStore(ctx, dbMongo.Config{
			URI:              cfg.uri,
			Database:         cfg.database,
			Collection:       cfg.collection,
			AppName:          cfg.appName,
			ConnectTimeout:   cfg.connectTimeout,
			OperationTimeout: cfg.operationTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("bookstore: create mongo store: %w", err)
		}
		return s, nil
	case driverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("bookstore: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, obs *observer) *Client {
	return &Client{
		store:  store,
		exec:   catalog.New(store, nil),
		seed:   seeduc.New(store, nil),
		health: healthuc.New(store, 0),
		obs:    obs,
	}
}

// Close releases the store.
func (c *Client) Close(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Close(ctx); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Seed loads sample books.
func (c *Client) Seed(ctx context.Context, opts SeedOptions) (res SeedResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("seed", start, err) }()
	return c.seed.Load(ctx, opts)
}
