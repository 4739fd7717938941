package memory

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
)

// Aggregate runs the pipeline stages in order over the whole collection.
func (s *Store) Aggregate(_ context.Context, p aggregate.Pipeline) ([]document.Document, error) {
	s.mu.RLock()
	stream := make([]document.Document, len(s.docs))
	for i, d := range s.docs {
		stream[i] = d.Clone()
	}
	err := s.checkOpen(db.OpAggregate)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	for _, st := range p.Stages() {
		switch st.Kind() {
		case aggregate.StageGroup:
			stream = group(stream, st.Group())
		case aggregate.StageSort:
			sortDocs(stream, st.Sort())
		case aggregate.StageLimit:
			if st.Limit() < int64(len(stream)) {
				stream = stream[:st.Limit()]
			}
		default:
			return nil, &db.Error{Op: db.OpAggregate, Err: fmt.Errorf("%w: stage %s", db.ErrUnsupported, st.Kind())}
		}
	}
	return stream, nil
}

type bucket struct {
	key     any
	members []document.Document
}

// group buckets docs by key in order of first appearance.
func group(docs []document.Document, g aggregate.Group) []document.Document {
	var order []string
	buckets := make(map[string]*bucket)
	for _, d := range docs {
		k := groupKey(d, g.Key)
		h := hashKey(k)
		b, ok := buckets[h]
		if !ok {
			b = &bucket{key: k}
			buckets[h] = b
			order = append(order, h)
		}
		b.members = append(b.members, d)
	}

	out := make([]document.Document, 0, len(order))
	for _, h := range order {
		b := buckets[h]
		row := document.Document{aggregate.GroupIDField: b.key}
		for _, acc := range g.Accumulators {
			row[acc.As] = accumulate(b.members, acc)
		}
		out = append(out, row)
	}
	return out
}

func groupKey(d document.Document, k aggregate.GroupKey) any {
	v, ok := d.Get(k.Field())
	if !ok {
		return nil
	}
	if k.Kind() != aggregate.KeyDecade {
		return v
	}
	if typeRank(v) != 1 {
		return nil
	}
	return aggregate.DecadeOf(cast.ToFloat64(v))
}

// accumulate mirrors the server: non-numeric values are ignored by avg/sum,
// avg over no numbers is null.
func accumulate(members []document.Document, acc aggregate.Accumulator) any {
	switch acc.Op {
	case aggregate.AccCount:
		return int64(len(members))
	case aggregate.AccSum, aggregate.AccAvg:
		var sum float64
		var n int
		for _, m := range members {
			v := m[acc.Field]
			if typeRank(v) != 1 {
				continue
			}
			sum += cast.ToFloat64(v)
			n++
		}
		if acc.Op == aggregate.AccSum {
			return sum
		}
		if n == 0 {
			return nil
		}
		return sum / float64(n)
	case aggregate.AccMin, aggregate.AccMax:
		var best any
		for _, m := range members {
			v, ok := m[acc.Field]
			if !ok || v == nil {
				continue
			}
			if best == nil {
				best = v
				continue
			}
			c, _ := compareValues(v, best)
			if (acc.Op == aggregate.AccMin && c < 0) || (acc.Op == aggregate.AccMax && c > 0) {
				best = v
			}
		}
		return best
	default:
		return nil
	}
}
