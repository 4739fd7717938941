package explain

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/bookstore/internal/domain/document"
)

// Raw plan document fields.
const (
	FieldExecutionStats      = "executionStats"
	FieldExecutionTimeMillis = "executionTimeMillis"
	FieldTotalDocsExamined   = "totalDocsExamined"
	FieldTotalKeysExamined   = "totalKeysExamined"
	FieldNReturned           = "nReturned"
	FieldQueryPlanner        = "queryPlanner"
	FieldWinningPlan         = "winningPlan"
	FieldQueryPlan           = "queryPlan"
	FieldStage               = "stage"
	FieldInputStage          = "inputStage"
)

// ErrNoExecutionStats signals a plan without execution statistics.
var ErrNoExecutionStats = errors.New("plan has no execution statistics")

// Stats is the normalized execution record of one query.
type Stats struct {
	ExecutionTimeMillis int64  `json:"execution_time_ms"`
	TotalDocsExamined   int64  `json:"docs_examined"`
	TotalKeysExamined   int64  `json:"keys_examined"`
	NReturned           int64  `json:"n_returned"`
	Stage               string `json:"stage,omitempty"`
}

// UsesIndex reports whether the plan walked index keys.
func (s Stats) UsesIndex() bool { return s.TotalKeysExamined > 0 || s.Stage == "IXSCAN" }

// FromPlan normalizes a raw explain document. The three required counters
// must all be present; missing statistics are an error, never zeros.
func FromPlan(plan document.Document) (Stats, error) {
	raw, ok := plan[FieldExecutionStats]
	if !ok {
		return Stats{}, ErrNoExecutionStats
	}
	es, ok := asMap(raw)
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s is %T", ErrNoExecutionStats, FieldExecutionStats, raw)
	}

	var s Stats
	var err error
	if s.ExecutionTimeMillis, err = requireInt(es, FieldExecutionTimeMillis); err != nil {
		return Stats{}, err
	}
	if s.TotalDocsExamined, err = requireInt(es, FieldTotalDocsExamined); err != nil {
		return Stats{}, err
	}
	if s.TotalKeysExamined, err = requireInt(es, FieldTotalKeysExamined); err != nil {
		return Stats{}, err
	}
	s.NReturned = cast.ToInt64(es[FieldNReturned])
	s.Stage = winningStage(plan)
	return s, nil
}

func requireInt(m map[string]any, field string) (int64, error) {
	v, ok := m[field]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrNoExecutionStats, field)
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNoExecutionStats, field, err)
	}
	return n, nil
}

// winningStage returns the innermost stage of the winning plan (the access
// path: IXSCAN or COLLSCAN). Slot-based plans keep the stage tree under
// winningPlan.queryPlan.
func winningStage(plan document.Document) string {
	qp, ok := asMap(plan[FieldQueryPlanner])
	if !ok {
		return ""
	}
	node, ok := asMap(qp[FieldWinningPlan])
	if !ok {
		return ""
	}
	if _, hasStage := node[FieldStage]; !hasStage {
		if inner, ok := asMap(node[FieldQueryPlan]); ok {
			node = inner
		}
	}
	stage := cast.ToString(node[FieldStage])
	for {
		next, ok := asMap(node[FieldInputStage])
		if !ok {
			return stage
		}
		node = next
		if s := cast.ToString(node[FieldStage]); s != "" {
			stage = s
		}
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case document.Document:
		return t, true
	default:
		return nil, false
	}
}
