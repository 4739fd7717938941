// Package seed loads sample books into the collection.
package seed

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/metrics"
)

// Sources reported in metrics.
const (
	SourceFixtures  = "fixtures"
	SourceGenerated = "generated"
)

// Genres used for generated books.
var Genres = []string{"Fantasy", "Memoir", "Science Fiction", "Classic", "Mystery", "Romance", "History"}

// Options select what Load inserts.
type Options struct {
	Fixtures bool
	Random   int   // number of generated books
	Seed     int64 // generator seed, 0 = random
	Reset    bool  // drop the collection first
}

// Result reports what Load inserted.
type Result struct {
	Fixtures  int
	Generated int
	IDs       []string
}

// Service loads sample data.
type Service struct {
	loader Loader
	logger *zap.Logger
}

// New creates a seed service.
func New(loader Loader, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{loader: loader, logger: log}
}

// Load inserts fixtures and generated books according to opts.
func (s *Service) Load(ctx context.Context, opts Options) (Result, error) {
	if opts.Random < 0 {
		return Result{}, fmt.Errorf("random count must not be negative, got %d", opts.Random)
	}

	if opts.Reset {
		if err := s.loader.Drop(ctx); err != nil {
			return Result{}, fmt.Errorf("drop collection: %w", err)
		}
		s.logger.Info("Collection dropped")
	}

	var res Result
	if opts.Fixtures {
		ids, err := s.insert(ctx, SourceFixtures, Fixtures())
		if err != nil {
			return res, err
		}
		res.Fixtures = len(ids)
		res.IDs = append(res.IDs, ids...)
	}

	if opts.Random > 0 {
		books := Generate(gofakeit.New(opts.Seed), opts.Random)
		ids, err := s.insert(ctx, SourceGenerated, books)
		if err != nil {
			return res, err
		}
		res.Generated = len(ids)
		res.IDs = append(res.IDs, ids...)
	}

	s.logger.Info("Seed completed",
		zap.Int("fixtures", res.Fixtures),
		zap.Int("generated", res.Generated),
	)
	return res, nil
}

func (s *Service) insert(ctx context.Context, source string, books []document.Book) ([]string, error) {
	docs := lo.Map(books, func(b document.Book, _ int) document.Document { return b.ToDocument() })
	ids, err := s.loader.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insert %s books: %w", source, err)
	}
	metrics.SeedDocumentsTotal.WithLabelValues(source).Add(float64(len(ids)))
	return ids, nil
}

// Generate returns n random books drawn from faker.
func Generate(faker *gofakeit.Faker, n int) []document.Book {
	books := make([]document.Book, 0, n)
	for i := 0; i < n; i++ {
		books = append(books, document.Book{
			Title:         title(faker),
			Author:        faker.FirstName() + " " + faker.LastName(),
			Genre:         faker.RandomString(Genres),
			PublishedYear: faker.IntRange(1800, 2024),
			Price:         math.Round(faker.Float64Range(4.99, 39.99)*100) / 100,
			InStock:       faker.Bool(),
		})
	}
	return books
}

func title(faker *gofakeit.Faker) string {
	words := []string{"The", capitalize(faker.Adjective()), capitalize(faker.Noun())}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
