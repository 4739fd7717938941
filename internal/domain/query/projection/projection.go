package projection

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// IDField is the store-assigned primary key.
const IDField = "_id"

// Mode selects whether the field set is kept or removed.
type Mode int

const (
	// ModeInclude keeps only the listed fields.
	ModeInclude Mode = iota + 1
	// ModeExclude removes the listed fields.
	ModeExclude
)

// Projection is an immutable include- or exclude-set of field names.
// An include projection drops _id unless _id is listed explicitly.
type Projection struct {
	mode   Mode
	fields []string
}

// Include creates a projection that keeps only fields.
func Include(fields ...string) (Projection, error) {
	return newProjection(ModeInclude, fields)
}

// Exclude creates a projection that removes fields.
func Exclude(fields ...string) (Projection, error) {
	return newProjection(ModeExclude, fields)
}

func newProjection(mode Mode, fields []string) (Projection, error) {
	if len(fields) == 0 {
		return Projection{}, fmt.Errorf("projection requires at least one field")
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return Projection{}, fmt.Errorf("projection field name is empty")
		}
	}
	return Projection{mode: mode, fields: lo.Uniq(fields)}, nil
}

// Mode returns the projection mode.
func (p Projection) Mode() Mode { return p.mode }

// Fields returns a copy of the field names.
func (p Projection) Fields() []string {
	out := make([]string, len(p.fields))
	copy(out, p.fields)
	return out
}

// IsZero reports whether the projection is unset (full documents).
func (p Projection) IsZero() bool { return p.mode == 0 }

// Keeps reports whether a field survives the projection.
func (p Projection) Keeps(field string) bool {
	switch p.mode {
	case ModeInclude:
		return lo.Contains(p.fields, field)
	case ModeExclude:
		return !lo.Contains(p.fields, field)
	default:
		return true
	}
}

// String renders the projection for logs.
func (p Projection) String() string {
	switch p.mode {
	case ModeInclude:
		return "include[" + strings.Join(p.fields, ",") + "]"
	case ModeExclude:
		return "exclude[" + strings.Join(p.fields, ",") + "]"
	default:
		return "all"
	}
}
