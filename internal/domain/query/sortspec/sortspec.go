package sortspec

import (
	"fmt"
	"strings"
)

// Direction is the sort order of a key.
type Direction int

const (
	// Asc sorts smallest first.
	Asc Direction = 1
	// Desc sorts largest first.
	Desc Direction = -1
)

// ParseDirection accepts "asc"/"desc" and "1"/"-1".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "1":
		return Asc, nil
	case "desc", "-1":
		return Desc, nil
	default:
		return 0, fmt.Errorf("unknown sort direction %q", s)
	}
}

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Key is a single (field, direction) pair.
type Key struct {
	Field     string
	Direction Direction
}

// Ascending returns an ascending key.
func Ascending(field string) Key { return Key{Field: field, Direction: Asc} }

// Descending returns a descending key.
func Descending(field string) Key { return Key{Field: field, Direction: Desc} }

// Spec is an immutable ordered list of sort keys.
// The zero value means natural storage order.
type Spec struct {
	keys []Key
}

// New validates and creates a Spec.
func New(keys ...Key) (Spec, error) {
	cp, err := ValidateKeys(keys)
	if err != nil {
		return Spec{}, err
	}
	return Spec{keys: cp}, nil
}

// By is a shorthand for a single-key spec.
func By(field string, dir Direction) (Spec, error) {
	return New(Key{Field: field, Direction: dir})
}

// ValidateKeys checks a key list (non-empty, named, no duplicate field,
// known direction) and returns a copy of it.
func ValidateKeys(keys []Key) ([]Key, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one key is required")
	}
	seen := make(map[string]bool, len(keys))
	for i, k := range keys {
		if k.Field == "" {
			return nil, fmt.Errorf("key %d: field is required", i)
		}
		if k.Direction != Asc && k.Direction != Desc {
			return nil, fmt.Errorf("key %q: direction must be 1 or -1, got %d", k.Field, k.Direction)
		}
		if seen[k.Field] {
			return nil, fmt.Errorf("duplicate key field %q", k.Field)
		}
		seen[k.Field] = true
	}
	cp := make([]Key, len(keys))
	copy(cp, keys)
	return cp, nil
}

// Keys returns a copy of the sort keys.
func (s Spec) Keys() []Key {
	if len(s.keys) == 0 {
		return nil
	}
	cp := make([]Key, len(s.keys))
	copy(cp, s.keys)
	return cp
}

// IsZero reports whether no ordering is requested.
func (s Spec) IsZero() bool { return len(s.keys) == 0 }

// String renders the spec, e.g. "price asc, title desc".
func (s Spec) String() string {
	if len(s.keys) == 0 {
		return "natural"
	}
	parts := make([]string, len(s.keys))
	for i, k := range s.keys {
		parts[i] = k.Field + " " + k.Direction.String()
	}
	return strings.Join(parts, ", ")
}
