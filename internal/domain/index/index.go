package index

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
)

// Spec is an immutable single- or multi-field index definition.
type Spec struct {
	keys   []sortspec.Key
	name   string
	unique bool
}

// Option customizes a Spec.
type Option func(*Spec)

// WithName overrides the derived index name.
func WithName(name string) Option {
	return func(s *Spec) { s.name = name }
}

// Unique marks the index as unique.
func Unique() Option {
	return func(s *Spec) { s.unique = true }
}

// New validates and creates an index Spec over keys, in order.
func New(keys []sortspec.Key, opts ...Option) (Spec, error) {
	cp, err := sortspec.ValidateKeys(keys)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid index keys: %w", err)
	}
	s := Spec{keys: cp}
	for _, o := range opts {
		o(&s)
	}
	if s.name == "" {
		s.name = DefaultName(cp)
	}
	if strings.ContainsAny(s.name, " \t\n") {
		return Spec{}, fmt.Errorf("index name %q contains whitespace", s.name)
	}
	return s, nil
}

// On is a shorthand for an ascending index over fields.
func On(fields ...string) (Spec, error) {
	keys := make([]sortspec.Key, len(fields))
	for i, f := range fields {
		keys[i] = sortspec.Ascending(f)
	}
	return New(keys)
}

// DefaultName derives the conventional name, e.g. "author_1_published_year_1".
func DefaultName(keys []sortspec.Key) string {
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k.Field, strconv.Itoa(int(k.Direction)))
	}
	return strings.Join(parts, "_")
}

// Keys returns a copy of the index keys.
func (s Spec) Keys() []sortspec.Key {
	cp := make([]sortspec.Key, len(s.keys))
	copy(cp, s.keys)
	return cp
}

// Name returns the index name.
func (s Spec) Name() string { return s.name }

// IsUnique reports whether the index enforces uniqueness.
func (s Spec) IsUnique() bool { return s.unique }

// Leading returns the first key field.
func (s Spec) Leading() string {
	if len(s.keys) == 0 {
		return ""
	}
	return s.keys[0].Field
}

func (s Spec) String() string {
	if s.unique {
		return s.name + " (unique)"
	}
	return s.name
}
