package update

import (
	"fmt"

	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
)

// Update sets a single field to a new value.
type Update struct {
	field string
	value any
}

// Set creates an update for one field. The primary key cannot be changed.
func Set(field string, value any) (Update, error) {
	if field == "" {
		return Update{}, fmt.Errorf("update field is required")
	}
	if field == projection.IDField {
		return Update{}, fmt.Errorf("field %q is immutable", field)
	}
	return Update{field: field, value: value}, nil
}

// Field returns the field being set.
func (u Update) Field() string { return u.field }

// Value returns the new value.
func (u Update) Value() any { return u.value }

func (u Update) String() string {
	return fmt.Sprintf("set %s = %v", u.field, u.value)
}
