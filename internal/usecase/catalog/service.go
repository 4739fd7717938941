// Package catalog runs the fixed set of book queries against one collection
// and normalizes their results and failures into domain.QueryError.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/db"
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
	"github.com/kailas-cloud/bookstore/internal/logger"
	"github.com/kailas-cloud/bookstore/internal/metrics"
)

// UpdateResult reports a single-document update.
type UpdateResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// NoMatch reports whether the filter selected nothing.
func (r UpdateResult) NoMatch() bool { return r.Matched == 0 }

// Executor issues catalog operations. It holds no state between calls.
type Executor struct {
	coll   Collection
	logger *zap.Logger
}

// New creates an executor over coll.
func New(coll Collection, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{coll: coll, logger: log}
}

// FindByField returns documents whose field equals value.
func (e *Executor) FindByField(ctx context.Context, field string, value any) ([]document.Document, error) {
	const op = domain.OpFindByField
	f, err := filter.Eq(field, value)
	if err != nil {
		return nil, invalid(op, fmt.Sprintf("%s = %v", field, value), err)
	}
	return e.find(ctx, op, f.String(), f, db.FindOptions{})
}

// FindByComparison returns documents where field <op> value holds. op is a
// symbol (">", "<=") or name ("gt", "lte").
func (e *Executor) FindByComparison(ctx context.Context, field, op string, value any) ([]document.Document, error) {
	const name = domain.OpFindByComparison
	input := fmt.Sprintf("%s %s %v", field, op, value)
	parsed, err := filter.ParseOp(op)
	if err != nil {
		return nil, invalid(name, input, err)
	}
	f, err := filter.Compare(field, parsed, value)
	if err != nil {
		return nil, invalid(name, input, err)
	}
	return e.find(ctx, name, f.String(), f, db.FindOptions{})
}

// FindByConjunction returns documents matching every filter. Conditions on
// the same field are kept separately and must all hold.
func (e *Executor) FindByConjunction(ctx context.Context, filters []filter.Filter) ([]document.Document, error) {
	const op = domain.OpFindByConjunction
	if len(filters) == 0 {
		return nil, e.fail(ctx, op, "[]", time.Now(), domain.ErrEmptyConjunction)
	}
	f, err := filter.And(filters...)
	if err != nil {
		return nil, invalid(op, fmt.Sprint(filters), err)
	}
	return e.find(ctx, op, f.String(), f, db.FindOptions{})
}

// UpdateOneField sets field to value on the first document matching f.
// Zero matches is not an error; see UpdateResult.NoMatch. A store that
// reports more than one affected document yields the result together with
// an error wrapping domain.ErrConstraintViolation.
func (e *Executor) UpdateOneField(
	ctx context.Context, f filter.Filter, field string, value any,
) (UpdateResult, error) {
	const op = domain.OpUpdateOneField
	input := fmt.Sprintf("%s; %s = %v", f, field, value)
	u, err := update.Set(field, value)
	if err != nil {
		return UpdateResult{}, invalid(op, input, err)
	}

	start := time.Now()
	res, err := e.coll.UpdateOne(ctx, f, u)
	if err != nil {
		return UpdateResult{}, e.fail(ctx, op, input, start, err)
	}
	out := UpdateResult{Matched: res.Matched, Modified: res.Modified}
	if out.Matched > 1 || out.Modified > 1 {
		return out, e.fail(ctx, op, input, start,
			fmt.Errorf("%w: %d documents modified", domain.ErrConstraintViolation, out.Modified))
	}
	e.done(ctx, op, input, start, int(out.Modified), zap.Bool("no_match", out.NoMatch()))
	return out, nil
}

// DeleteOne removes the first document matching f and returns the number
// deleted (0 or 1).
func (e *Executor) DeleteOne(ctx context.Context, f filter.Filter) (int64, error) {
	const op = domain.OpDeleteOne
	input := f.String()

	start := time.Now()
	res, err := e.coll.DeleteOne(ctx, f)
	if err != nil {
		return 0, e.fail(ctx, op, input, start, err)
	}
	if res.Deleted > 1 {
		return res.Deleted, e.fail(ctx, op, input, start,
			fmt.Errorf("%w: %d documents deleted", domain.ErrConstraintViolation, res.Deleted))
	}
	e.done(ctx, op, input, start, int(res.Deleted))
	return res.Deleted, nil
}

// FindProjected returns documents matching f restricted to the projection.
func (e *Executor) FindProjected(
	ctx context.Context, f filter.Filter, p projection.Projection,
) ([]document.Document, error) {
	const op = domain.OpFindProjected
	input := fmt.Sprintf("%s; %s", f, p)
	if p.IsZero() {
		return nil, invalid(op, input, errors.New("projection is empty"))
	}
	return e.find(ctx, op, input, f, db.FindOptions{Projection: p})
}

// FindSorted returns documents matching f in sort order. Ties keep no
// particular order.
func (e *Executor) FindSorted(ctx context.Context, f filter.Filter, s sortspec.Spec) ([]document.Document, error) {
	const op = domain.OpFindSorted
	input := fmt.Sprintf("%s; %s", f, s)
	if s.IsZero() {
		return nil, invalid(op, input, errors.New("sort has no keys"))
	}
	return e.find(ctx, op, input, f, db.FindOptions{Sort: s})
}

// FindPage returns at most pg.Limit() documents after filtering, sorting and
// skipping. A zero sort leaves natural order. Skipping past the end returns
// an empty slice.
func (e *Executor) FindPage(
	ctx context.Context, f filter.Filter, s sortspec.Spec, pg page.Page,
) ([]document.Document, error) {
	const op = domain.OpFindPage
	input := fmt.Sprintf("%s; %s; %s", f, s, pg)
	if pg.Limit() <= 0 {
		return nil, invalid(op, input, errors.New("page limit must be positive"))
	}
	return e.find(ctx, op, input, f, db.FindOptions{Sort: s, Skip: pg.Skip(), Limit: pg.Limit()})
}

// Aggregate runs the pipeline and returns its output documents.
func (e *Executor) Aggregate(ctx context.Context, p aggregate.Pipeline) ([]document.Document, error) {
	const op = domain.OpAggregate
	input := p.String()
	if p.Len() == 0 {
		return nil, invalid(op, input, errors.New("pipeline has no stages"))
	}

	start := time.Now()
	rows, err := e.coll.Aggregate(ctx, p)
	if err != nil {
		return nil, e.fail(ctx, op, input, start, err)
	}
	e.done(ctx, op, input, start, len(rows))
	return orEmpty(rows), nil
}

// CreateIndex creates spec and returns the index name.
func (e *Executor) CreateIndex(ctx context.Context, spec index.Spec) (string, error) {
	const op = domain.OpCreateIndex
	input := spec.String()
	if len(spec.Keys()) == 0 {
		return "", invalid(op, input, errors.New("index has no keys"))
	}

	start := time.Now()
	name, err := e.coll.CreateIndex(ctx, spec)
	if err != nil {
		return "", e.fail(ctx, op, input, start, err)
	}
	e.done(ctx, op, input, start, 1, zap.String("index", name))
	return name, nil
}

// Explain returns the execution statistics of a find with filter f. A plan
// without statistics fails with domain.ErrPlanUnavailable.
func (e *Executor) Explain(ctx context.Context, f filter.Filter) (explain.Stats, error) {
	const op = domain.OpExplain
	input := f.String()

	start := time.Now()
	plan, err := e.coll.Explain(ctx, f)
	if err != nil {
		return explain.Stats{}, e.fail(ctx, op, input, start, err)
	}
	stats, err := explain.FromPlan(plan)
	if err != nil {
		return explain.Stats{}, e.fail(ctx, op, input, start, fmt.Errorf("%w: %w", domain.ErrPlanUnavailable, err))
	}
	e.done(ctx, op, input, start, int(stats.NReturned),
		zap.String("stage", stats.Stage),
		zap.Int64("docs_examined", stats.TotalDocsExamined),
		zap.Int64("keys_examined", stats.TotalKeysExamined),
	)
	return stats, nil
}

func (e *Executor) find(
	ctx context.Context, op, input string, f filter.Filter, opts db.FindOptions,
) ([]document.Document, error) {
	start := time.Now()
	docs, err := e.coll.Find(ctx, f, opts)
	if err != nil {
		return nil, e.fail(ctx, op, input, start, err)
	}
	metrics.QueryDocumentsReturned.WithLabelValues(op).Observe(float64(len(docs)))
	e.done(ctx, op, input, start, len(docs))
	return orEmpty(docs), nil
}

func (e *Executor) done(ctx context.Context, op, input string, start time.Time, count int, extra ...zap.Field) {
	metrics.ObserveQuery(op, start, nil)
	fields := append([]zap.Field{
		zap.String("op", op),
		zap.String("input", input),
		zap.Duration("duration", time.Since(start)),
		zap.Int("count", count),
	}, extra...)
	logger.FromContextOr(ctx, e.logger).Debug("Catalog operation completed", fields...)
}

// fail wraps err into a QueryError, logs it and records the failure.
// Duplicate-key rejections from the store surface as constraint violations.
func (e *Executor) fail(ctx context.Context, op, input string, start time.Time, err error) error {
	if errors.Is(err, db.ErrDuplicateKey) && !errors.Is(err, domain.ErrConstraintViolation) {
		err = fmt.Errorf("%w: %w", domain.ErrConstraintViolation, err)
	}
	metrics.ObserveQuery(op, start, err)
	logger.FromContextOr(ctx, e.logger).Warn("Catalog operation failed",
		zap.String("op", op),
		zap.String("input", input),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return domain.NewQueryError(op, input, err)
}

// invalid rejects malformed input before it reaches the store.
func invalid(op, input string, err error) error {
	metrics.QueryRequestsTotal.WithLabelValues(op, metrics.StatusError).Inc()
	return domain.NewQueryError(op, input, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
}

func orEmpty(docs []document.Document) []document.Document {
	if docs == nil {
		return []document.Document{}
	}
	return docs
}
