// Package bookstore runs the fixed query walkthrough over the books
// collection and collects typed results.
package bookstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/config"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/page"
	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
)

// DefaultTopAuthors is the number of authors reported when unset.
const DefaultTopAuthors = 1

// Service runs the walkthrough.
type Service struct {
	params     config.WalkthroughConfig
	topAuthors int64
	logger     *zap.Logger
}

// New creates a walkthrough service. A non-positive topAuthors uses DefaultTopAuthors.
func New(params config.WalkthroughConfig, topAuthors int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if topAuthors <= 0 {
		topAuthors = DefaultTopAuthors
	}
	return &Service{params: params, topAuthors: int64(topAuthors), logger: log}
}

type step struct {
	name string
	run  func(ctx context.Context, c Catalog, r *Report) error
}

// Run executes every step in order and stops at the first failure. The
// report holds the results of the steps that completed.
func (s *Service) Run(ctx context.Context, c Catalog) (Report, error) {
	var report Report
	for _, st := range s.steps() {
		start := time.Now()
		if err := st.run(ctx, c, &report); err != nil {
			s.logger.Error("Walkthrough step failed", zap.String("step", st.name), zap.Error(err))
			return report, fmt.Errorf("%s: %w", st.name, err)
		}
		s.logger.Info("Walkthrough step completed",
			zap.String("step", st.name),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return report, nil
}

func (s *Service) steps() []step {
	p := s.params
	return []step{
		{"books by genre", func(ctx context.Context, c Catalog, r *Report) error {
			docs, err := c.FindByField(ctx, document.FieldGenre, p.Genre)
			r.ByGenre = Books(docs)
			return err
		}},
		{"books published after", func(ctx context.Context, c Catalog, r *Report) error {
			docs, err := c.FindByComparison(ctx, document.FieldPublishedYear, ">", p.YearAfter)
			r.PublishedAfter = Books(docs)
			return err
		}},
		{"books by author", func(ctx context.Context, c Catalog, r *Report) error {
			docs, err := c.FindByField(ctx, document.FieldAuthor, p.Author)
			r.ByAuthor = Books(docs)
			return err
		}},
		{"update price", func(ctx context.Context, c Catalog, r *Report) error {
			f, err := filter.Eq(document.FieldTitle, p.UpdateTitle)
			if err != nil {
				return err
			}
			r.PriceUpdate, err = c.UpdateOneField(ctx, f, document.FieldPrice, p.NewPrice)
			if err == nil && r.PriceUpdate.NoMatch() {
				s.logger.Warn("No book to update", zap.String("title", p.UpdateTitle))
			}
			return err
		}},
		{"delete by title", func(ctx context.Context, c Catalog, r *Report) error {
			f, err := filter.Eq(document.FieldTitle, p.DeleteTitle)
			if err != nil {
				return err
			}
			r.Deleted, err = c.DeleteOne(ctx, f)
			return err
		}},
		{"in stock published after", func(ctx context.Context, c Catalog, r *Report) error {
			inStock, err := filter.Eq(document.FieldInStock, true)
			if err != nil {
				return err
			}
			after, err := filter.Compare(document.FieldPublishedYear, filter.OpGT, p.InStockYearAfter)
			if err != nil {
				return err
			}
			docs, err := c.FindByConjunction(ctx, []filter.Filter{inStock, after})
			r.InStockAfter = Books(docs)
			return err
		}},
		{"projected listing", func(ctx context.Context, c Catalog, r *Report) error {
			proj, err := projection.Include(document.FieldTitle, document.FieldAuthor, document.FieldPrice)
			if err != nil {
				return err
			}
			docs, err := c.FindProjected(ctx, filter.All(), proj)
			r.Listing = Listings(docs)
			return err
		}},
		{"price ascending", func(ctx context.Context, c Catalog, r *Report) error {
			docs, err := s.sortedByPrice(ctx, c, sortspec.Asc)
			r.PriceAscending = Books(docs)
			return err
		}},
		{"price descending", func(ctx context.Context, c Catalog, r *Report) error {
			docs, err := s.sortedByPrice(ctx, c, sortspec.Desc)
			r.PriceDescending = Books(docs)
			return err
		}},
		{"page", func(ctx context.Context, c Catalog, r *Report) error {
			pg, err := page.FromNumber(int64(p.PageNumber), int64(p.PageSize))
			if err != nil {
				return err
			}
			docs, err := c.FindPage(ctx, filter.All(), sortspec.Spec{}, pg)
			r.Page = Books(docs)
			return err
		}},
		{"average price by genre", func(ctx context.Context, c Catalog, r *Report) error {
			rows, err := s.aggregate(ctx, c, aggregate.AveragePriceByGenre)
			r.GenreAverages = GenreAverages(rows)
			return err
		}},
		{"top authors", func(ctx context.Context, c Catalog, r *Report) error {
			rows, err := s.aggregate(ctx, c, func() (aggregate.Pipeline, error) {
				return aggregate.TopAuthors(s.topAuthors)
			})
			r.TopAuthors = AuthorCounts(rows)
			return err
		}},
		{"count by decade", func(ctx context.Context, c Catalog, r *Report) error {
			rows, err := s.aggregate(ctx, c, aggregate.CountByDecade)
			r.Decades = DecadeCounts(rows)
			return err
		}},
		{"title index", func(ctx context.Context, c Catalog, r *Report) error {
			return s.createIndex(ctx, c, r, document.FieldTitle)
		}},
		{"author and year index", func(ctx context.Context, c Catalog, r *Report) error {
			return s.createIndex(ctx, c, r, document.FieldAuthor, document.FieldPublishedYear)
		}},
		{"explain title lookup", func(ctx context.Context, c Catalog, r *Report) error {
			f, err := filter.Eq(document.FieldTitle, p.ExplainTitle)
			if err != nil {
				return err
			}
			r.TitlePlan, err = c.Explain(ctx, f)
			return err
		}},
		{"explain author and year lookup", func(ctx context.Context, c Catalog, r *Report) error {
			f, err := filter.NewBuilder().
				Eq(document.FieldAuthor, p.Author).
				Gt(document.FieldPublishedYear, p.ExplainYearAfter).
				Build()
			if err != nil {
				return err
			}
			r.AuthorYearPlan, err = c.Explain(ctx, f)
			return err
		}},
	}
}

func (s *Service) sortedByPrice(ctx context.Context, c Catalog, dir sortspec.Direction) ([]document.Document, error) {
	spec, err := sortspec.By(document.FieldPrice, dir)
	if err != nil {
		return nil, err
	}
	return c.FindSorted(ctx, filter.All(), spec)
}

func (s *Service) aggregate(
	ctx context.Context, c Catalog, build func() (aggregate.Pipeline, error),
) ([]document.Document, error) {
	p, err := build()
	if err != nil {
		return nil, err
	}
	return c.Aggregate(ctx, p)
}

func (s *Service) createIndex(ctx context.Context, c Catalog, r *Report, fields ...string) error {
	spec, err := index.On(fields...)
	if err != nil {
		return err
	}
	name, err := c.CreateIndex(ctx, spec)
	if err != nil {
		return err
	}
	r.Indexes = append(r.Indexes, name)
	return nil
}
