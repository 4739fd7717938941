package document

import (
	"github.com/spf13/cast"
)

// FieldID is the primary key field assigned by the store.
const FieldID = "_id"

// Document is an untyped book record as stored in the collection.
type Document map[string]any

// Has reports whether the field is present.
func (d Document) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// Get returns the raw field value.
func (d Document) Get(field string) (any, bool) {
	v, ok := d[field]
	return v, ok
}

// String returns the field coerced to a string ("" when absent).
func (d Document) String(field string) string {
	return cast.ToString(d[field])
}

// Int returns the field coerced to an int (0 when absent or not numeric).
func (d Document) Int(field string) int {
	return cast.ToInt(d[field])
}

// Int64 returns the field coerced to an int64.
func (d Document) Int64(field string) int64 {
	return cast.ToInt64(d[field])
}

// Float returns the field coerced to a float64.
func (d Document) Float(field string) float64 {
	return cast.ToFloat64(d[field])
}

// Bool returns the field coerced to a bool.
func (d Document) Bool(field string) bool {
	return cast.ToBool(d[field])
}

// Keys returns the field names present in the document.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns a deep copy: nested maps and slices are copied as well.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
