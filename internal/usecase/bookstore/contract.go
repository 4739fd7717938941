package bookstore

import (
	"context"

	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/explain"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/page"
	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
	"github.com/kailas-cloud/bookstore/internal/usecase/catalog"
)

// Catalog is the set of catalog operations the walkthrough issues.
type Catalog interface {
	FindByField(ctx context.Context, field string, value any) ([]document.Document, error)
	FindByComparison(ctx context.Context, field, op string, value any) ([]document.Document, error)
	FindByConjunction(ctx context.Context, filters []filter.Filter) ([]document.Document, error)
	UpdateOneField(ctx context.Context, f filter.Filter, field string, value any) (catalog.UpdateResult, error)
	DeleteOne(ctx context.Context, f filter.Filter) (int64, error)
	FindProjected(ctx context.Context, f filter.Filter, p projection.Projection) ([]document.Document, error)
	FindSorted(ctx context.Context, f filter.Filter, s sortspec.Spec) ([]document.Document, error)
	FindPage(ctx context.Context, f filter.Filter, s sortspec.Spec, pg page.Page) ([]document.Document, error)
	Aggregate(ctx context.Context, p aggregate.Pipeline) ([]document.Document, error)
	CreateIndex(ctx context.Context, spec index.Spec) (string, error)
	Explain(ctx context.Context, f filter.Filter) (explain.Stats, error)
}
