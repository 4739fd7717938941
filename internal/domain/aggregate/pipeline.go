package aggregate

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
)

// MaxStages bounds pipeline length.
const MaxStages = 16

// StageKind enumerates the supported stage kinds.
type StageKind int

const (
	// StageGroup groups documents by a key and applies accumulators.
	StageGroup StageKind = iota + 1
	// StageSort orders the stream.
	StageSort
	// StageLimit truncates the stream.
	StageLimit
)

func (k StageKind) String() string {
	switch k {
	case StageGroup:
		return "group"
	case StageSort:
		return "sort"
	case StageLimit:
		return "limit"
	default:
		return "unknown"
	}
}

// Stage is one step of a pipeline. Exactly one of the payloads is set,
// according to Kind.
type Stage struct {
	kind  StageKind
	group Group
	sort  sortspec.Spec
	limit int64
}

// GroupStage creates a $group stage.
func GroupStage(g Group) (Stage, error) {
	if err := g.validate(); err != nil {
		return Stage{}, err
	}
	return Stage{kind: StageGroup, group: g.clone()}, nil
}

// SortStage creates a $sort stage.
func SortStage(s sortspec.Spec) (Stage, error) {
	if s.IsZero() {
		return Stage{}, fmt.Errorf("sort stage requires at least one key")
	}
	return Stage{kind: StageSort, sort: s}, nil
}

// LimitStage creates a $limit stage.
func LimitStage(n int64) (Stage, error) {
	if n <= 0 {
		return Stage{}, fmt.Errorf("limit must be positive, got %d", n)
	}
	return Stage{kind: StageLimit, limit: n}, nil
}

// Kind returns the stage kind.
func (s Stage) Kind() StageKind { return s.kind }

// Group returns the group payload.
func (s Stage) Group() Group { return s.group.clone() }

// Sort returns the sort payload.
func (s Stage) Sort() sortspec.Spec { return s.sort }

// Limit returns the limit payload.
func (s Stage) Limit() int64 { return s.limit }

func (s Stage) String() string {
	switch s.kind {
	case StageGroup:
		return "group(" + s.group.String() + ")"
	case StageSort:
		return "sort(" + s.sort.String() + ")"
	case StageLimit:
		return fmt.Sprintf("limit(%d)", s.limit)
	default:
		return "unknown"
	}
}

// Pipeline is an immutable ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline validates and creates a pipeline.
func NewPipeline(stages ...Stage) (Pipeline, error) {
	if len(stages) == 0 {
		return Pipeline{}, fmt.Errorf("pipeline requires at least one stage")
	}
	if len(stages) > MaxStages {
		return Pipeline{}, fmt.Errorf("too many stages (max %d)", MaxStages)
	}
	for i, st := range stages {
		if st.kind == 0 {
			return Pipeline{}, fmt.Errorf("stage %d is not initialized", i)
		}
	}
	cp := make([]Stage, len(stages))
	copy(cp, stages)
	return Pipeline{stages: cp}, nil
}

// Stages returns a copy of the stages.
func (p Pipeline) Stages() []Stage {
	cp := make([]Stage, len(p.stages))
	copy(cp, p.stages)
	return cp
}

// Len returns the number of stages.
func (p Pipeline) Len() int { return len(p.stages) }

func (p Pipeline) String() string {
	parts := make([]string, len(p.stages))
	for i, st := range p.stages {
		parts[i] = st.String()
	}
	return strings.Join(parts, " | ")
}
