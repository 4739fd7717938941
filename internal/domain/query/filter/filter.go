package filter

import (
	"fmt"
	"strings"
)

// MaxConditions is the maximum number of children in a single conjunction.
const MaxConditions = 32

// Kind enumerates the closed set of filter expression kinds.
type Kind int

const (
	// KindAll matches every document.
	KindAll Kind = iota
	// KindEq matches documents whose field equals a value.
	KindEq
	// KindCompare matches documents whose field compares to a value.
	KindCompare
	// KindAnd matches documents satisfying every child.
	KindAnd
)

// Op is a comparison operator.
type Op string

const (
	// OpGT is strictly greater than.
	OpGT Op = "gt"
	// OpGTE is greater than or equal.
	OpGTE Op = "gte"
	// OpLT is strictly less than.
	OpLT Op = "lt"
	// OpLTE is less than or equal.
	OpLTE Op = "lte"
)

var opSymbols = map[Op]string{OpGT: ">", OpGTE: ">=", OpLT: "<", OpLTE: "<="}

// ParseOp accepts both symbol (">") and name ("gt") forms.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ">", "gt":
		return OpGT, nil
	case ">=", "gte":
		return OpGTE, nil
	case "<", "lt":
		return OpLT, nil
	case "<=", "lte":
		return OpLTE, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %q", s)
	}
}

// Valid reports whether op is one of the supported operators.
func (o Op) Valid() bool {
	_, ok := opSymbols[o]
	return ok
}

// Symbol returns the operator's symbolic form.
func (o Op) Symbol() string { return opSymbols[o] }

// Filter is an immutable predicate over document fields.
// The zero value matches every document.
type Filter struct {
	kind     Kind
	field    string
	op       Op
	value    any
	children []Filter
}

// All returns a filter that matches every document.
func All() Filter { return Filter{kind: KindAll} }

// Eq creates an equality condition.
func Eq(field string, value any) (Filter, error) {
	if field == "" {
		return Filter{}, fmt.Errorf("filter field is required")
	}
	return Filter{kind: KindEq, field: field, value: value}, nil
}

// Compare creates a comparison condition.
func Compare(field string, op Op, value any) (Filter, error) {
	if field == "" {
		return Filter{}, fmt.Errorf("filter field is required")
	}
	if !op.Valid() {
		return Filter{}, fmt.Errorf("unknown comparison operator %q", op)
	}
	if value == nil {
		return Filter{}, fmt.Errorf("comparison value is required for field %q", field)
	}
	return Filter{kind: KindCompare, field: field, op: op, value: value}, nil
}

// And creates a conjunction. Every child must hold; children with the same
// field are kept as separate conditions.
func And(children ...Filter) (Filter, error) {
	if len(children) == 0 {
		return Filter{}, fmt.Errorf("conjunction requires at least one filter")
	}
	if len(children) > MaxConditions {
		return Filter{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	cp := make([]Filter, len(children))
	copy(cp, children)
	return Filter{kind: KindAnd, children: cp}, nil
}

// Kind returns the expression kind.
func (f Filter) Kind() Kind { return f.kind }

// Field returns the field name of an Eq or Compare filter.
func (f Filter) Field() string { return f.field }

// Op returns the operator of a Compare filter.
func (f Filter) Op() Op { return f.op }

// Value returns the operand of an Eq or Compare filter.
func (f Filter) Value() any { return f.value }

// Children returns a copy of the conjunction's children.
func (f Filter) Children() []Filter {
	if len(f.children) == 0 {
		return nil
	}
	cp := make([]Filter, len(f.children))
	copy(cp, f.children)
	return cp
}

// IsAll reports whether the filter matches every document.
func (f Filter) IsAll() bool { return f.kind == KindAll }

// Fields returns the distinct field names referenced by the filter, in order.
func (f Filter) Fields() []string {
	var out []string
	seen := map[string]bool{}
	f.walk(func(leaf Filter) {
		if !seen[leaf.field] {
			seen[leaf.field] = true
			out = append(out, leaf.field)
		}
	})
	return out
}

// walk calls fn for every Eq/Compare leaf.
func (f Filter) walk(fn func(Filter)) {
	switch f.kind {
	case KindEq, KindCompare:
		fn(f)
	case KindAnd:
		for _, c := range f.children {
			c.walk(fn)
		}
	}
}

// String renders the filter for logs and error messages.
func (f Filter) String() string {
	switch f.kind {
	case KindEq:
		return fmt.Sprintf("%s = %v", f.field, f.value)
	case KindCompare:
		return fmt.Sprintf("%s %s %v", f.field, f.op.Symbol(), f.value)
	case KindAnd:
		parts := make([]string, len(f.children))
		for i, c := range f.children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	default:
		return "{}"
	}
}
