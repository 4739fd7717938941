package bookstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/bookstore/internal/domain"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/page"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
	bookstoreuc "github.com/kailas-cloud/bookstore/internal/usecase/bookstore"
)

// Find returns the books matching every condition of b. A builder with no
// conditions fails with ErrEmptyConjunction; use List to read everything.
func (c *Client) Find(ctx context.Context, b *FilterBuilder) (books []Book, err error) {
	start := time.Now()
	defer func() { c.obs.observe("find", start, err) }()

	f, err := build(domain.OpFindByConjunction, b)
	if err != nil {
		return nil, err
	}

	var docs []Document
	switch f.Kind() {
	case filter.KindEq:
		docs, err = c.exec.FindByField(ctx, f.Field(), f.Value())
	case filter.KindCompare:
		docs, err = c.exec.FindByComparison(ctx, f.Field(), string(f.Op()), f.Value())
	case filter.KindAnd:
		docs, err = c.exec.FindByConjunction(ctx, f.Children())
	default:
		docs, err = c.exec.FindByConjunction(ctx, nil)
	}
	if err != nil {
		return nil, err
	}
	return bookstoreuc.Books(docs), nil
}

// List returns one page of all books. Sort keys are field names; a leading
// "-" sorts descending. Without keys the store's natural order is kept.
func (c *Client) List(ctx context.Context, number, size int64, sortKeys ...string) (books []Book, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", start, err) }()

	pg, err := page.FromNumber(number, size)
	if err != nil {
		return nil, invalidInput(domain.OpFindPage, fmt.Sprintf("page %d size %d", number, size), err)
	}
	spec, err := sortKeysSpec(sortKeys)
	if err != nil {
		return nil, invalidInput(domain.OpFindPage, fmt.Sprint(sortKeys), err)
	}
	docs, err := c.exec.FindPage(ctx, filter.All(), spec, pg)
	if err != nil {
		return nil, err
	}
	return bookstoreuc.Books(docs), nil
}

// UpdatePrice sets the price of the book with the given title.
// A title that matches nothing is reported through UpdateResult.NoMatch.
func (c *Client) UpdatePrice(ctx context.Context, title string, price float64) (res UpdateResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("update_price", start, err) }()

	f, err := filter.Eq(document.FieldTitle, title)
	if err != nil {
		return UpdateResult{}, invalidInput(domain.OpUpdateOneField, title, err)
	}
	return c.exec.UpdateOneField(ctx, f, document.FieldPrice, price)
}

// Delete removes the book with the given title and returns how many were
// removed (0 or 1).
func (c *Client) Delete(ctx context.Context, title string) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	f, err := filter.Eq(document.FieldTitle, title)
	if err != nil {
		return 0, invalidInput(domain.OpDeleteOne, title, err)
	}
	return c.exec.DeleteOne(ctx, f)
}

// CreateIndex creates an ascending index over fields and returns its name.
func (c *Client) CreateIndex(ctx context.Context, fields ...string) (name string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("create_index", start, err) }()

	spec, err := index.On(fields...)
	if err != nil {
		return "", invalidInput(domain.OpCreateIndex, fmt.Sprint(fields), err)
	}
	return c.exec.CreateIndex(ctx, spec)
}

// Explain reports how a find with the conditions of b would execute.
func (c *Client) Explain(ctx context.Context, b *FilterBuilder) (stats Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("explain", start, err) }()

	f, err := build(domain.OpExplain, b)
	if err != nil {
		return Stats{}, err
	}
	return c.exec.Explain(ctx, f)
}

// AveragePriceByGenre returns the mean price of each genre.
func (c *Client) AveragePriceByGenre(ctx context.Context) (rows []GenreAverage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("average_price_by_genre", start, err) }()

	docs, err := c.aggregate(ctx, aggregate.AveragePriceByGenre)
	if err != nil {
		return nil, err
	}
	return bookstoreuc.GenreAverages(docs), nil
}

// TopAuthors returns the n authors with the most books.
func (c *Client) TopAuthors(ctx context.Context, n int64) (rows []AuthorCount, err error) {
	start := time.Now()
	defer func() { c.obs.observe("top_authors", start, err) }()

	docs, err := c.aggregate(ctx, func() (aggregate.Pipeline, error) { return aggregate.TopAuthors(n) })
	if err != nil {
		return nil, err
	}
	return bookstoreuc.AuthorCounts(docs), nil
}

// CountByDecade returns the number of books per publication decade.
func (c *Client) CountByDecade(ctx context.Context) (rows []DecadeCount, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count_by_decade", start, err) }()

	docs, err := c.aggregate(ctx, aggregate.CountByDecade)
	if err != nil {
		return nil, err
	}
	return bookstoreuc.DecadeCounts(docs), nil
}

// Walkthrough runs the fixed query sequence and returns the collected
// results. Zero fields of params take the DefaultWalkthroughParams values.
// It stops at the first failing step; the report then holds the steps that
// completed.
func (c *Client) Walkthrough(ctx context.Context, params WalkthroughParams) (report Report, err error) {
	start := time.Now()
	defer func() { c.obs.observe("walkthrough", start, err) }()

	params.ApplyDefaults()
	return bookstoreuc.New(params, bookstoreuc.DefaultTopAuthors, nil).Run(ctx, c.exec)
}

func (c *Client) aggregate(ctx context.Context, pipeline func() (aggregate.Pipeline, error)) ([]Document, error) {
	p, err := pipeline()
	if err != nil {
		return nil, invalidInput(domain.OpAggregate, "", err)
	}
	return c.exec.Aggregate(ctx, p)
}

func build(op string, b *FilterBuilder) (filter.Filter, error) {
	if b == nil {
		return filter.All(), nil
	}
	f, err := b.Build()
	if err != nil {
		return filter.Filter{}, invalidInput(op, "", err)
	}
	return f, nil
}

func sortKeysSpec(keys []string) (sortspec.Spec, error) {
	if len(keys) == 0 {
		return sortspec.Spec{}, nil
	}
	out := make([]sortspec.Key, 0, len(keys))
	for _, k := range keys {
		if field, ok := strings.CutPrefix(k, "-"); ok {
			out = append(out, sortspec.Descending(field))
			continue
		}
		out = append(out, sortspec.Ascending(k))
	}
	return sortspec.New(out...)
}

func invalidInput(op, input string, err error) error {
	return domain.NewQueryError(op, input, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
}
