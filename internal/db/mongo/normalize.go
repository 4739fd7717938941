package mongo

import (
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/bookstore/internal/domain/document"
)

// normalizeDoc converts a decoded BSON document into a plain Document:
// nested documents become Documents, arrays become []any, ObjectIDs become
// hex strings and 32-bit integers widen to int64.
func normalizeDoc(m bson.M) document.Document {
	out := make(document.Document, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return normalizeDoc(t)
	case map[string]any:
		return normalizeDoc(t)
	case bson.D:
		out := make(document.Document, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		return t.String()
	case int32:
		return int64(t)
	default:
		return v
	}
}

func idString(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return cast.ToString(id)
}
