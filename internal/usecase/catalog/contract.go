package catalog

import (
	"context"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/update"
)

// Collection is the document collection the executor queries.
type Collection interface {
	Find(ctx context.Context, f filter.Filter, opts db.FindOptions) ([]document.Document, error)
	UpdateOne(ctx context.Context, f filter.Filter, u update.Update) (db.UpdateResult, error)
	DeleteOne(ctx context.Context, f filter.Filter) (db.DeleteResult, error)
	Aggregate(ctx context.Context, p aggregate.Pipeline) ([]document.Document, error)
	CreateIndex(ctx context.Context, spec index.Spec) (string, error)
	Explain(ctx context.Context, f filter.Filter) (document.Document, error)
}

// Session is a connected collection that must be released after use.
type Session interface {
	Collection
	Close(ctx context.Context) error
}

// Connector opens one session.
type Connector func(ctx context.Context) (Session, error)
