package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
	"github.com/kailas-cloud/bookstore/internal/domain/query/update"
)

// Store is the database facade over a single collection.
type Store interface {
	Pinger
	Collection
	Loader
	Close(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Collection is the query surface of one document collection.
type Collection interface {
	Find(ctx context.Context, f filter.Filter, opts FindOptions) ([]document.Document, error)
	UpdateOne(ctx context.Context, f filter.Filter, u update.Update) (UpdateResult, error)
	DeleteOne(ctx context.Context, f filter.Filter) (DeleteResult, error)
	Aggregate(ctx context.Context, p aggregate.Pipeline) ([]document.Document, error)
	CreateIndex(ctx context.Context, spec index.Spec) (string, error)
	// Explain returns the raw plan document of a find with execution statistics.
	Explain(ctx context.Context, f filter.Filter) (document.Document, error)
}

// Loader bulk-loads and clears the collection.
type Loader interface {
	InsertMany(ctx context.Context, docs []document.Document) ([]string, error)
	Drop(ctx context.Context) error
}

// FindOptions shape a find. The store applies them as
// filter, then sort, then skip, then limit regardless of field order here.
type FindOptions struct {
	Projection projection.Projection
	Sort       sortspec.Spec
	Skip       int64
	Limit      int64 // 0 = no limit
}

// UpdateResult reports the outcome of a single-document update.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// DeleteResult reports the outcome of a single-document delete.
type DeleteResult struct {
	Deleted int64
}
