package aggregate

import (
	"fmt"
	"math"
	"strings"
)

// GroupIDField is the output field holding the group key.
const GroupIDField = "_id"

// KeyKind selects how the group key is computed.
type KeyKind int

const (
	// KeyField groups by the value of a field.
	KeyField KeyKind = iota + 1
	// KeyDecade groups by floor(field / 10) * 10 as an integer.
	KeyDecade
)

// GroupKey computes the bucket of a document.
type GroupKey struct {
	kind  KeyKind
	field string
}

// ByField groups by the value of field.
func ByField(field string) GroupKey { return GroupKey{kind: KeyField, field: field} }

// ByDecade groups by the decade of the integer year stored in field.
func ByDecade(field string) GroupKey { return GroupKey{kind: KeyDecade, field: field} }

// Kind returns the key kind.
func (k GroupKey) Kind() KeyKind { return k.kind }

// Field returns the source field.
func (k GroupKey) Field() string { return k.field }

func (k GroupKey) String() string {
	if k.kind == KeyDecade {
		return "decade(" + k.field + ")"
	}
	return k.field
}

// Decade truncates a year down to its decade: 2015 and 2019 map to 2010,
// -5 maps to -10.
func Decade(year int64) int64 {
	q := year / 10
	if year%10 != 0 && year < 0 {
		q--
	}
	return q * 10
}

// DecadeOf floors a possibly fractional year to its decade the way the
// server's $floor expression does: -10.5 maps to -20.
func DecadeOf(year float64) int64 {
	return int64(math.Floor(year/10) * 10)
}

// AccOp is an accumulator operator.
type AccOp string

const (
	// AccAvg averages a numeric field.
	AccAvg AccOp = "avg"
	// AccSum sums a numeric field.
	AccSum AccOp = "sum"
	// AccCount counts documents in the group.
	AccCount AccOp = "count"
	// AccMin takes the minimum of a field.
	AccMin AccOp = "min"
	// AccMax takes the maximum of a field.
	AccMax AccOp = "max"
)

// Accumulator writes an aggregate of the group into the output field As.
type Accumulator struct {
	As    string
	Op    AccOp
	Field string // unused for AccCount
}

// Avg averages field into as.
func Avg(as, field string) Accumulator { return Accumulator{As: as, Op: AccAvg, Field: field} }

// Sum sums field into as.
func Sum(as, field string) Accumulator { return Accumulator{As: as, Op: AccSum, Field: field} }

// Count counts group members into as.
func Count(as string) Accumulator { return Accumulator{As: as, Op: AccCount} }

// Min takes the minimum of field into as.
func Min(as, field string) Accumulator { return Accumulator{As: as, Op: AccMin, Field: field} }

// Max takes the maximum of field into as.
func Max(as, field string) Accumulator { return Accumulator{As: as, Op: AccMax, Field: field} }

func (a Accumulator) String() string {
	if a.Op == AccCount {
		return a.As + "=count()"
	}
	return fmt.Sprintf("%s=%s(%s)", a.As, a.Op, a.Field)
}

// Group is the payload of a group stage.
type Group struct {
	Key          GroupKey
	Accumulators []Accumulator
}

func (g Group) validate() error {
	if g.Key.kind != KeyField && g.Key.kind != KeyDecade {
		return fmt.Errorf("group key is required")
	}
	if g.Key.field == "" {
		return fmt.Errorf("group key field is required")
	}
	if len(g.Accumulators) == 0 {
		return fmt.Errorf("group requires at least one accumulator")
	}
	seen := make(map[string]bool, len(g.Accumulators))
	for _, a := range g.Accumulators {
		if a.As == "" || a.As == GroupIDField {
			return fmt.Errorf("invalid accumulator output name %q", a.As)
		}
		if seen[a.As] {
			return fmt.Errorf("duplicate accumulator output %q", a.As)
		}
		seen[a.As] = true
		switch a.Op {
		case AccCount:
		case AccAvg, AccSum, AccMin, AccMax:
			if a.Field == "" {
				return fmt.Errorf("accumulator %q requires a field", a.As)
			}
		default:
			return fmt.Errorf("unknown accumulator %q", a.Op)
		}
	}
	return nil
}

func (g Group) clone() Group {
	accs := make([]Accumulator, len(g.Accumulators))
	copy(accs, g.Accumulators)
	return Group{Key: g.Key, Accumulators: accs}
}

func (g Group) String() string {
	parts := make([]string, len(g.Accumulators))
	for i, a := range g.Accumulators {
		parts[i] = a.String()
	}
	return "by " + g.Key.String() + ": " + strings.Join(parts, ", ")
}
