// Package mongo implements db.Store on the official MongoDB Go driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/bookstore/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Server error codes translated into db sentinels.
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI              string
	Database         string
	Collection       string
	AppName          string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// Store implements db.Store over a single collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore creates a client for cfg. The driver connects lazily, so an
// unreachable server surfaces on the first operation or WaitForReady.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("database and collection are required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.OperationTimeout > 0 {
		opts.SetTimeout(cfg.OperationTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// NewStoreForTest wraps an existing collection, typically one from the
// driver's mock deployment.
func NewStoreForTest(coll *mongo.Collection) *Store {
	return &Store{client: coll.Database().Client(), coll: coll}
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		if errors.Is(err, mongo.ErrClientDisconnected) {
			return nil
		}
		return &db.Error{Op: db.OpDisconnect, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the server responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// wrap tags err with op and maps well-known server failures onto db sentinels.
func wrap(op string, err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		err = fmt.Errorf("%w: %w", db.ErrDuplicateKey, err)
	case isIndexConflict(err):
		err = fmt.Errorf("%w: %w", db.ErrIndexExists, err)
	}
	return &db.Error{Op: op, Err: err}
}

func isIndexConflict(err error) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == codeIndexOptionsConflict || ce.Code == codeIndexKeySpecsConflict
}
