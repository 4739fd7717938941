package filter

// Builder is a fluent builder for conjunctive filters.
// The first construction error is kept and returned by Build.
type Builder struct {
	conds []Filter
	err   error
}

// NewBuilder starts an empty filter.
func NewBuilder() *Builder {
	return &Builder{}
}

// Eq adds an equality condition.
func (b *Builder) Eq(field string, value any) *Builder {
	return b.add(Eq(field, value))
}

// Gt adds a strictly-greater condition.
func (b *Builder) Gt(field string, value any) *Builder {
	return b.add(Compare(field, OpGT, value))
}

// Gte adds a greater-or-equal condition.
func (b *Builder) Gte(field string, value any) *Builder {
	return b.add(Compare(field, OpGTE, value))
}

// Lt adds a strictly-less condition.
func (b *Builder) Lt(field string, value any) *Builder {
	return b.add(Compare(field, OpLT, value))
}

// Lte adds a less-or-equal condition.
func (b *Builder) Lte(field string, value any) *Builder {
	return b.add(Compare(field, OpLTE, value))
}

// Where adds an already built filter.
func (b *Builder) Where(f Filter) *Builder {
	return b.add(f, nil)
}

func (b *Builder) add(f Filter, err error) *Builder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = err
		return b
	}
	b.conds = append(b.conds, f)
	return b
}

// Build returns All for no conditions, the single condition for one,
// and a conjunction otherwise.
func (b *Builder) Build() (Filter, error) {
	if b.err != nil {
		return Filter{}, b.err
	}
	switch len(b.conds) {
	case 0:
		return All(), nil
	case 1:
		return b.conds[0], nil
	default:
		return And(b.conds...)
	}
}
