package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/db/memory"
	"github.com/kailas-cloud/bookstore/internal/domain"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/explain"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/page"
	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
	"github.com/kailas-cloud/bookstore/internal/domain/query/update"
)

// --- Mocks ---

type mockCollection struct {
	findFn        func(ctx context.Context, f filter.Filter, opts db.FindOptions) ([]document.Document, error)
	updateOneFn   func(ctx context.Context, f filter.Filter, u update.Update) (db.UpdateResult, error)
	deleteOneFn   func(ctx context.Context, f filter.Filter) (db.DeleteResult, error)
	aggregateFn   func(ctx context.Context, p aggregate.Pipeline) ([]document.Document, error)
	createIndexFn func(ctx context.Context, spec index.Spec) (string, error)
	explainFn     func(ctx context.Context, f filter.Filter) (document.Document, error)
}

func (m *mockCollection) Find(ctx context.Context, f filter.Filter, opts db.FindOptions) ([]document.Document, error) {
	return m.findFn(ctx, f, opts)
}

func (m *mockCollection) UpdateOne(ctx context.Context, f filter.Filter, u update.Update) (db.UpdateResult, error) {
	return m.updateOneFn(ctx, f, u)
}

func (m *mockCollection) DeleteOne(ctx context.Context, f filter.Filter) (db.DeleteResult, error) {
	return m.deleteOneFn(ctx, f)
}

func (m *mockCollection) Aggregate(ctx context.Context, p aggregate.Pipeline) ([]document.Document, error) {
	return m.aggregateFn(ctx, p)
}

func (m *mockCollection) CreateIndex(ctx context.Context, spec index.Spec) (string, error) {
	return m.createIndexFn(ctx, spec)
}

func (m *mockCollection) Explain(ctx context.Context, f filter.Filter) (document.Document, error) {
	return m.explainFn(ctx, f)
}

// --- Helpers ---

func book(title, author, genre string, year int, price float64) document.Document {
	return document.Book{
		Title: title, Author: author, Genre: genre,
		PublishedYear: year, Price: price, InStock: true,
	}.ToDocument()
}

func newExecutor(t *testing.T, docs ...document.Document) (*Executor, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	if len(docs) > 0 {
		_, err := s.InsertMany(context.Background(), docs)
		require.NoError(t, err)
	}
	return New(s, nil), s
}

func scenario() []document.Document {
	return []document.Document{
		book("A", "Ann", "Fantasy", 2012, 20),
		book("B", "Bob", "Sci-Fi", 2019, 30),
		book("C", "Ann", "Fantasy", 2020, 10),
	}
}

func eq(t *testing.T, field string, v any) filter.Filter {
	t.Helper()
	f, err := filter.Eq(field, v)
	require.NoError(t, err)
	return f
}

func titles(docs []document.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.String(document.FieldTitle)
	}
	return out
}

func prices(docs []document.Document) []float64 {
	out := make([]float64, len(docs))
	for i, d := range docs {
		out[i] = d.Float(document.FieldPrice)
	}
	return out
}

func requireQueryError(t *testing.T, err error, op string) *domain.QueryError {
	t.Helper()
	qe, ok := domain.AsQueryError(err)
	require.True(t, ok, "expected QueryError, got %T: %v", err, err)
	assert.Equal(t, op, qe.Op)
	return qe
}

// --- Reads ---

func TestFindByField_ReturnsMatchingSubset(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)

	got, err := exec.FindByField(context.Background(), document.FieldGenre, "Fantasy")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, titles(got))
}

func TestFindByField_NoMatchIsEmptyNotNil(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)

	got, err := exec.FindByField(context.Background(), document.FieldGenre, "Horror")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindByField_EmptyFieldIsInvalid(t *testing.T) {
	exec, _ := newExecutor(t)

	_, err := exec.FindByField(context.Background(), "", "x")
	requireQueryError(t, err, domain.OpFindByField)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestFindByComparison(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	ctx := context.Background()

	tests := []struct {
		op   string
		want []string
	}{
		{">", []string{"B", "C"}},
		{"gt", []string{"B", "C"}},
		{">=", []string{"A", "B", "C"}},
		{"<", []string{}},
		{"<=", []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got, err := exec.FindByComparison(ctx, document.FieldPublishedYear, tt.op, 2012)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFindByComparison_UnknownOperator(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)

	_, err := exec.FindByComparison(context.Background(), document.FieldPublishedYear, "!=", 2012)
	qe := requireQueryError(t, err, domain.OpFindByComparison)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	assert.Contains(t, qe.Input, "!=")
}

func TestFindByConjunction_SingleFilterMatchesPlainFind(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	ctx := context.Background()

	filters := []filter.Filter{
		filter.All(),
		eq(t, document.FieldAuthor, "Ann"),
		eq(t, document.FieldGenre, "Nope"),
	}
	gt, err := filter.Compare(document.FieldPrice, filter.OpGT, 15)
	require.NoError(t, err)
	filters = append(filters, gt)

	for _, f := range filters {
		t.Run(f.String(), func(t *testing.T) {
			single, err := exec.coll.Find(ctx, f, db.FindOptions{})
			require.NoError(t, err)
			conj, err := exec.FindByConjunction(ctx, []filter.Filter{f})
			require.NoError(t, err)
			assert.ElementsMatch(t, titles(single), titles(conj))
		})
	}
}

func TestFindByConjunction_AllMustHold(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	after, err := filter.Compare(document.FieldPublishedYear, filter.OpGT, 2010)
	require.NoError(t, err)
	before, err := filter.Compare(document.FieldPublishedYear, filter.OpLT, 2020)
	require.NoError(t, err)

	got, err := exec.FindByConjunction(context.Background(), []filter.Filter{after, before})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(got), "same-field conditions must not override each other")
}

func TestFindByConjunction_Empty(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)

	_, err := exec.FindByConjunction(context.Background(), nil)
	requireQueryError(t, err, domain.OpFindByConjunction)
	assert.ErrorIs(t, err, domain.ErrEmptyConjunction)
}

func TestFindProjected_OnlyRequestedFields(t *testing.T) {
	docs := append(scenario(), document.Document{document.FieldTitle: "D"})
	exec, _ := newExecutor(t, docs...)
	p, err := projection.Include(document.FieldTitle, document.FieldAuthor, document.FieldPrice)
	require.NoError(t, err)

	got, err := exec.FindProjected(context.Background(), filter.All(), p)
	require.NoError(t, err)
	require.Len(t, got, 4)

	requested := map[string]bool{"title": true, "author": true, "price": true}
	for i, d := range got {
		for k := range d {
			assert.True(t, requested[k], "unexpected field %q", k)
		}
		for f := range requested {
			_, inSource := docs[i][f]
			assert.Equal(t, inSource, d.Has(f), "field %q of %s", f, d.String("title"))
		}
	}
}

func TestFindProjected_ZeroProjectionIsInvalid(t *testing.T) {
	exec, _ := newExecutor(t)

	_, err := exec.FindProjected(context.Background(), filter.All(), projection.Projection{})
	requireQueryError(t, err, domain.OpFindProjected)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestFindSorted_AscendingAndDescending(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	ctx := context.Background()

	asc, err := sortspec.By(document.FieldPrice, sortspec.Asc)
	require.NoError(t, err)
	got, err := exec.FindSorted(ctx, filter.All(), asc)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, prices(got))

	desc, err := sortspec.By(document.FieldPrice, sortspec.Desc)
	require.NoError(t, err)
	got, err = exec.FindSorted(ctx, filter.All(), desc)
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 20, 10}, prices(got))
}

func TestFindSorted_ZeroSortIsInvalid(t *testing.T) {
	exec, _ := newExecutor(t)

	_, err := exec.FindSorted(context.Background(), filter.All(), sortspec.Spec{})
	requireQueryError(t, err, domain.OpFindSorted)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestFindPage_FilterSortSkipLimit(t *testing.T) {
	var docs []document.Document
	for i := 1; i <= 12; i++ {
		docs = append(docs, book(string(rune('a'+i-1)), "X", "G", 2000+i, float64(100-i)))
	}
	exec, _ := newExecutor(t, docs...)
	ctx := context.Background()

	asc, err := sortspec.By(document.FieldPrice, sortspec.Asc)
	require.NoError(t, err)
	pg, err := page.FromNumber(2, 5)
	require.NoError(t, err)

	got, err := exec.FindPage(ctx, filter.All(), asc, pg)
	require.NoError(t, err)
	assert.Equal(t, []float64{93, 94, 95, 96, 97}, prices(got))

	last, err := page.FromNumber(3, 5)
	require.NoError(t, err)
	got, err = exec.FindPage(ctx, filter.All(), asc, last)
	require.NoError(t, err)
	assert.Equal(t, []float64{98, 99}, prices(got))
}

func TestFindPage_NaturalOrderWithoutSort(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	pg, err := page.New(1, 1)
	require.NoError(t, err)

	got, err := exec.FindPage(context.Background(), filter.All(), sortspec.Spec{}, pg)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, titles(got))
}

func TestFindPage_SkipBeyondResultIsEmpty(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	asc, err := sortspec.By(document.FieldPrice, sortspec.Asc)
	require.NoError(t, err)

	for _, skip := range []int64{2, 3, 100} {
		pg, err := page.New(skip, 5)
		require.NoError(t, err)
		got, err := exec.FindPage(context.Background(), eq(t, document.FieldAuthor, "Ann"), asc, pg)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestFindPage_ZeroPageIsInvalid(t *testing.T) {
	exec, _ := newExecutor(t)

	_, err := exec.FindPage(context.Background(), filter.All(), sortspec.Spec{}, page.Page{})
	requireQueryError(t, err, domain.OpFindPage)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

// --- Writes ---

func TestUpdateOneField(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	ctx := context.Background()

	res, err := exec.UpdateOneField(ctx, eq(t, document.FieldTitle, "A"), document.FieldPrice, 10.99)
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Matched: 1, Modified: 1}, res)
	assert.False(t, res.NoMatch())

	got, err := exec.FindByField(ctx, document.FieldTitle, "A")
	require.NoError(t, err)
	assert.InDelta(t, 10.99, got[0].Float(document.FieldPrice), 1e-9)
}

func TestUpdateOneField_ZeroMatchIsNotAnError(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)

	res, err := exec.UpdateOneField(context.Background(), eq(t, document.FieldTitle, "Missing"), document.FieldPrice, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Modified)
	assert.True(t, res.NoMatch())
}

func TestUpdateOneField_InvalidField(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)

	_, err := exec.UpdateOneField(context.Background(), filter.All(), "_id", "x")
	requireQueryError(t, err, domain.OpUpdateOneField)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestUpdateOneField_MultipleModifiedIsConstraintViolation(t *testing.T) {
	m := &mockCollection{
		updateOneFn: func(context.Context, filter.Filter, update.Update) (db.UpdateResult, error) {
			return db.UpdateResult{Matched: 2, Modified: 2}, nil
		},
	}

	res, err := New(m, nil).UpdateOneField(context.Background(), filter.All(), "price", 1)
	requireQueryError(t, err, domain.OpUpdateOneField)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Equal(t, UpdateResult{Matched: 2, Modified: 2}, res, "result is reported alongside the violation")
}

func TestUpdateOneField_DuplicateKeyIsConstraintViolation(t *testing.T) {
	m := &mockCollection{
		updateOneFn: func(context.Context, filter.Filter, update.Update) (db.UpdateResult, error) {
			return db.UpdateResult{}, &db.Error{Op: db.OpUpdate, Err: db.ErrDuplicateKey}
		},
	}

	_, err := New(m, nil).UpdateOneField(context.Background(), filter.All(), "title", "Circe")
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.ErrorIs(t, err, db.ErrDuplicateKey)
}

func TestDeleteOne_ThenFindIsEmpty(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	ctx := context.Background()

	n, err := exec.DeleteOne(ctx, eq(t, document.FieldTitle, "B"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := exec.FindByField(ctx, document.FieldTitle, "B")
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err = exec.DeleteOne(ctx, eq(t, document.FieldTitle, "B"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDeleteOne_MultipleDeletedIsConstraintViolation(t *testing.T) {
	m := &mockCollection{
		deleteOneFn: func(context.Context, filter.Filter) (db.DeleteResult, error) {
			return db.DeleteResult{Deleted: 3}, nil
		},
	}

	n, err := New(m, nil).DeleteOne(context.Background(), filter.All())
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Equal(t, int64(3), n)
}

// --- Aggregation ---

func TestAggregate_AveragePriceByGenre(t *testing.T) {
	exec, _ := newExecutor(t,
		book("a", "x", "Fantasy", 2000, 10),
		book("b", "x", "Fantasy", 2000, 20),
		book("c", "x", "Sci-Fi", 2000, 30),
	)
	p, err := aggregate.AveragePriceByGenre()
	require.NoError(t, err)

	rows, err := exec.Aggregate(context.Background(), p)
	require.NoError(t, err)

	got := make(map[string]float64, len(rows))
	for _, r := range rows {
		got[r.String(aggregate.GroupIDField)] = r.Float(aggregate.FieldAveragePrice)
	}
	assert.Equal(t, map[string]float64{"Fantasy": 15, "Sci-Fi": 30}, got)
}

func TestAggregate_DecadeBuckets(t *testing.T) {
	years := []int{2012, 2019, 2020, 1999, 2000}
	docs := make([]document.Document, len(years))
	for i, y := range years {
		docs[i] = book("t", "a", "g", y, 1)
	}
	exec, _ := newExecutor(t, docs...)
	p, err := aggregate.CountByDecade()
	require.NoError(t, err)

	rows, err := exec.Aggregate(context.Background(), p)
	require.NoError(t, err)

	got := make(map[int64]int64, len(rows))
	for _, r := range rows {
		got[r.Int64(aggregate.GroupIDField)] = r.Int64(aggregate.FieldTotal)
	}
	assert.Equal(t, map[int64]int64{1990: 1, 2000: 1, 2010: 2, 2020: 1}, got)
}

func TestAggregate_TopAuthorGroupsByValue(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	p, err := aggregate.TopAuthors(1)
	require.NoError(t, err)

	rows, err := exec.Aggregate(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ann", rows[0].String(aggregate.GroupIDField))
	assert.Equal(t, int64(2), rows[0].Int64(aggregate.FieldTotalBooks))
}

func TestAggregate_ZeroPipelineIsInvalid(t *testing.T) {
	exec, _ := newExecutor(t)

	_, err := exec.Aggregate(context.Background(), aggregate.Pipeline{})
	requireQueryError(t, err, domain.OpAggregate)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

// --- Indexes and plans ---

func TestCreateIndex(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	spec, err := index.On(document.FieldAuthor, document.FieldPublishedYear)
	require.NoError(t, err)

	name, err := exec.CreateIndex(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "author_1_published_year_1", name)
}

func TestCreateIndex_ZeroSpecIsInvalid(t *testing.T) {
	exec, _ := newExecutor(t)

	_, err := exec.CreateIndex(context.Background(), index.Spec{})
	requireQueryError(t, err, domain.OpCreateIndex)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestCreateIndex_UniqueViolation(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	spec, err := index.New([]sortspec.Key{sortspec.Ascending(document.FieldAuthor)}, index.Unique())
	require.NoError(t, err)

	_, err = exec.CreateIndex(context.Background(), spec)
	requireQueryError(t, err, domain.OpCreateIndex)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestExplain_UsesIndexAfterCreation(t *testing.T) {
	exec, _ := newExecutor(t, scenario()...)
	ctx := context.Background()
	f := eq(t, document.FieldTitle, "B")

	before, err := exec.Explain(ctx, f)
	require.NoError(t, err)
	assert.False(t, before.UsesIndex())
	assert.Equal(t, int64(3), before.TotalDocsExamined)

	spec, err := index.On(document.FieldTitle)
	require.NoError(t, err)
	_, err = exec.CreateIndex(ctx, spec)
	require.NoError(t, err)

	after, err := exec.Explain(ctx, f)
	require.NoError(t, err)
	assert.True(t, after.UsesIndex())
	assert.Equal(t, int64(1), after.TotalDocsExamined)
	assert.Equal(t, int64(1), after.NReturned)
}

func TestExplain_MissingStatsFailsExplicitly(t *testing.T) {
	m := &mockCollection{
		explainFn: func(context.Context, filter.Filter) (document.Document, error) {
			return document.Document{explain.FieldQueryPlanner: document.Document{}}, nil
		},
	}

	stats, err := New(m, nil).Explain(context.Background(), filter.All())
	requireQueryError(t, err, domain.OpExplain)
	assert.ErrorIs(t, err, domain.ErrPlanUnavailable)
	assert.Equal(t, explain.Stats{}, stats)
}

// --- Collaborator failures ---

func TestCollaboratorFailure_WrappedAsQueryError(t *testing.T) {
	cause := &db.Error{Op: db.OpFind, Err: errors.New("server selection timeout")}
	m := &mockCollection{
		findFn: func(context.Context, filter.Filter, db.FindOptions) ([]document.Document, error) {
			return nil, cause
		},
		aggregateFn: func(context.Context, aggregate.Pipeline) ([]document.Document, error) {
			return nil, cause
		},
	}
	exec := New(m, nil)

	_, err := exec.FindByField(context.Background(), "genre", "Fantasy")
	qe := requireQueryError(t, err, domain.OpFindByField)
	assert.Equal(t, "genre = Fantasy", qe.Input)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "server selection timeout")

	p, perr := aggregate.AveragePriceByGenre()
	require.NoError(t, perr)
	_, err = exec.Aggregate(context.Background(), p)
	requireQueryError(t, err, domain.OpAggregate)
	assert.ErrorIs(t, err, cause)
}
