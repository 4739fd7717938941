package seed

import (
	"context"

	"github.com/kailas-cloud/bookstore/internal/domain/document"
)

// Loader bulk-loads and clears the books collection.
type Loader interface {
	InsertMany(ctx context.Context, docs []document.Document) ([]string, error)
	Drop(ctx context.Context) error
}
