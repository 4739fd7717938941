package chi

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/page"
	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
)

// Equality shortcuts accepted as plain query parameters.
var eqParams = []string{
	document.FieldTitle,
	document.FieldAuthor,
	document.FieldGenre,
	document.FieldInStock,
	document.FieldPublishedYear,
}

// whereExpr matches "field op value", e.g. "published_year>2012".
var whereExpr = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*(>=|<=|>|<|=)\s*(.*)$`)

// bookQuery is a parsed GET /books or GET /explain query string.
type bookQuery struct {
	conds      []filter.Filter
	filter     filter.Filter
	sort       sortspec.Spec
	projection projection.Projection
	page       page.Page
	paged      bool
}

func parseBookQuery(q url.Values, defaultSize, maxSize int64) (bookQuery, error) {
	var bq bookQuery

	for _, field := range eqParams {
		if !q.Has(field) {
			continue
		}
		v, err := coerce(field, q.Get(field))
		if err != nil {
			return bq, err
		}
		f, err := filter.Eq(field, v)
		if err != nil {
			return bq, err
		}
		bq.conds = append(bq.conds, f)
	}

	for _, expr := range q["where"] {
		f, err := parseWhere(expr)
		if err != nil {
			return bq, err
		}
		bq.conds = append(bq.conds, f)
	}

	b := filter.NewBuilder()
	for _, c := range bq.conds {
		b.Where(c)
	}
	f, err := b.Build()
	if err != nil {
		return bq, err
	}
	bq.filter = f

	if s := q.Get("sort"); s != "" {
		keys, err := parseKeys(s)
		if err != nil {
			return bq, err
		}
		if bq.sort, err = sortspec.New(keys...); err != nil {
			return bq, err
		}
	}

	if s := q.Get("fields"); s != "" {
		fields := splitList(s)
		if bq.projection, err = projection.Include(fields...); err != nil {
			return bq, err
		}
	}

	number, size := int64(1), defaultSize
	if q.Has("page") || q.Has("page_size") {
		bq.paged = true
		if q.Has("page") {
			if number, err = parseDecimal(q.Get("page")); err != nil {
				return bq, fmt.Errorf("page: %w", err)
			}
		}
		if q.Has("page_size") {
			if size, err = parseDecimal(q.Get("page_size")); err != nil {
				return bq, fmt.Errorf("page_size: %w", err)
			}
		}
	}
	if maxSize > 0 && size > maxSize {
		return bq, fmt.Errorf("page_size %d exceeds maximum %d", size, maxSize)
	}
	if bq.page, err = page.FromNumber(number, size); err != nil {
		return bq, err
	}

	if !bq.projection.IsZero() && (bq.paged || !bq.sort.IsZero()) {
		return bq, errors.New("fields cannot be combined with sort or page")
	}
	return bq, nil
}

func parseWhere(expr string) (filter.Filter, error) {
	m := whereExpr.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return filter.Filter{}, fmt.Errorf("malformed where expression %q", expr)
	}
	field, op, raw := m[1], m[2], strings.TrimSpace(m[3])
	v, err := coerce(field, raw)
	if err != nil {
		return filter.Filter{}, err
	}
	if op == "=" {
		return filter.Eq(field, v)
	}
	parsed, err := filter.ParseOp(op)
	if err != nil {
		return filter.Filter{}, err
	}
	return filter.Compare(field, parsed, v)
}

// coerce converts a raw parameter to the stored type of a known book field.
func coerce(field, raw string) (any, error) {
	var (
		v   any
		err error
	)
	switch field {
	case document.FieldPublishedYear:
		var n int64
		n, err = parseDecimal(raw)
		v = int(n)
	case document.FieldPrice:
		v, err = cast.ToFloat64E(raw)
	case document.FieldInStock:
		v, err = cast.ToBoolE(raw)
	default:
		return raw, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// parseDecimal reads a base-10 integer. Leading zeros stay decimal; 0x and
// 0o prefixes are rejected.
func parseDecimal(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a decimal integer", raw)
	}
	return n, nil
}

// parseKeys reads "price,-published_year" into ordered keys.
func parseKeys(s string) ([]sortspec.Key, error) {
	fields := splitList(s)
	if len(fields) == 0 {
		return nil, errors.New("no fields given")
	}
	return lo.Map(fields, func(f string, _ int) sortspec.Key {
		if strings.HasPrefix(f, "-") {
			return sortspec.Descending(strings.TrimPrefix(f, "-"))
		}
		return sortspec.Ascending(strings.TrimPrefix(f, "+"))
	}), nil
}

func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Filter(parts, func(p string, _ int) bool { return p != "" })
}
