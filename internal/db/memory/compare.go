package memory

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// typeRank orders values of different kinds the way the document server
// does: missing/null, then numbers, then strings, then booleans.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return 1
	case string:
		return 2
	case bool:
		return 4
	default:
		return 3
	}
}

// compareValues orders a and b. ok is false when the two are of different
// kinds, in which case c falls back to the kind order.
func compareValues(a, b any) (c int, ok bool) {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1, false
		}
		return 1, false
	}
	switch ra {
	case 0:
		return 0, true
	case 1:
		fa, fb := cast.ToFloat64(a), cast.ToFloat64(b)
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	case 2:
		return strings.Compare(a.(string), b.(string)), true
	case 4:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		default:
			return 1, true
		}
	default:
		if reflect.DeepEqual(a, b) {
			return 0, true
		}
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), false
	}
}

// equalValues treats numbers of different Go types as equal when their
// values are.
func equalValues(a, b any) bool {
	c, ok := compareValues(a, b)
	return ok && c == 0
}

// hashKey renders a group key so that equal values collide.
func hashKey(v any) string {
	if typeRank(v) == 1 {
		return "n:" + cast.ToString(cast.ToFloat64(v))
	}
	return fmt.Sprintf("%T:%v", v, v)
}
