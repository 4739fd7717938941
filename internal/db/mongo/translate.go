package mongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
	"github.com/kailas-cloud/bookstore/internal/domain/query/update"
)

var compareOps = map[filter.Op]string{
	filter.OpGT:  "$gt",
	filter.OpGTE: "$gte",
	filter.OpLT:  "$lt",
	filter.OpLTE: "$lte",
}

var accumulatorOps = map[aggregate.AccOp]string{
	aggregate.AccAvg:   "$avg",
	aggregate.AccSum:   "$sum",
	aggregate.AccCount: "$sum",
	aggregate.AccMin:   "$min",
	aggregate.AccMax:   "$max",
}

// filterDoc renders f as a query document. Conjunctions always use $and so
// repeated fields stay separate conditions.
func filterDoc(f filter.Filter) (bson.D, error) {
	switch f.Kind() {
	case filter.KindAll:
		return bson.D{}, nil
	case filter.KindEq:
		return bson.D{{Key: f.Field(), Value: f.Value()}}, nil
	case filter.KindCompare:
		op, ok := compareOps[f.Op()]
		if !ok {
			return nil, fmt.Errorf("%w: operator %q", db.ErrUnsupported, f.Op())
		}
		return bson.D{{Key: f.Field(), Value: bson.D{{Key: op, Value: f.Value()}}}}, nil
	case filter.KindAnd:
		children := f.Children()
		parts := make(bson.A, 0, len(children))
		for _, c := range children {
			d, err := filterDoc(c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, d)
		}
		return bson.D{{Key: "$and", Value: parts}}, nil
	default:
		return nil, fmt.Errorf("%w: filter kind %d", db.ErrUnsupported, f.Kind())
	}
}

// projectionDoc renders p. Include projections hide _id unless it is listed.
func projectionDoc(p projection.Projection) bson.D {
	fields := p.Fields()
	out := make(bson.D, 0, len(fields)+1)
	switch p.Mode() {
	case projection.ModeInclude:
		hasID := false
		for _, f := range fields {
			out = append(out, bson.E{Key: f, Value: 1})
			hasID = hasID || f == projection.IDField
		}
		if !hasID {
			out = append(out, bson.E{Key: projection.IDField, Value: 0})
		}
	case projection.ModeExclude:
		for _, f := range fields {
			out = append(out, bson.E{Key: f, Value: 0})
		}
	}
	return out
}

func sortDoc(keys []sortspec.Key) bson.D {
	out := make(bson.D, 0, len(keys))
	for _, k := range keys {
		out = append(out, bson.E{Key: k.Field, Value: int(k.Direction)})
	}
	return out
}

func updateDoc(u update.Update) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{{Key: u.Field(), Value: u.Value()}}}}
}

// pipelineDoc renders p as aggregation stages.
func pipelineDoc(p aggregate.Pipeline) (mongo.Pipeline, error) {
	stages := p.Stages()
	out := make(mongo.Pipeline, 0, len(stages))
	for _, st := range stages {
		switch st.Kind() {
		case aggregate.StageGroup:
			g, err := groupDoc(st.Group())
			if err != nil {
				return nil, err
			}
			out = append(out, bson.D{{Key: "$group", Value: g}})
		case aggregate.StageSort:
			out = append(out, bson.D{{Key: "$sort", Value: sortDoc(st.Sort().Keys())}})
		case aggregate.StageLimit:
			out = append(out, bson.D{{Key: "$limit", Value: st.Limit()}})
		default:
			return nil, fmt.Errorf("%w: stage %s", db.ErrUnsupported, st.Kind())
		}
	}
	return out, nil
}

func groupDoc(g aggregate.Group) (bson.D, error) {
	out := bson.D{{Key: aggregate.GroupIDField, Value: groupKeyExpr(g.Key)}}
	for _, acc := range g.Accumulators {
		op, ok := accumulatorOps[acc.Op]
		if !ok {
			return nil, fmt.Errorf("%w: accumulator %q", db.ErrUnsupported, acc.Op)
		}
		var arg any = "$" + acc.Field
		if acc.Op == aggregate.AccCount {
			arg = 1
		}
		out = append(out, bson.E{Key: acc.As, Value: bson.D{{Key: op, Value: arg}}})
	}
	return out, nil
}

// groupKeyExpr groups by the field value, or by its integer decade.
func groupKeyExpr(k aggregate.GroupKey) any {
	ref := "$" + k.Field()
	if k.Kind() != aggregate.KeyDecade {
		return ref
	}
	return bson.D{{Key: "$toInt", Value: bson.D{{Key: "$multiply", Value: bson.A{
		bson.D{{Key: "$floor", Value: bson.D{{Key: "$divide", Value: bson.A{ref, 10}}}}},
		10,
	}}}}}
}

func indexModel(spec index.Spec) mongo.IndexModel {
	opts := options.Index().SetName(spec.Name())
	if spec.IsUnique() {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: sortDoc(spec.Keys()), Options: opts}
}

func findOptions(o db.FindOptions) *options.FindOptions {
	opts := options.Find()
	if !o.Projection.IsZero() {
		opts.SetProjection(projectionDoc(o.Projection))
	}
	if !o.Sort.IsZero() {
		opts.SetSort(sortDoc(o.Sort.Keys()))
	}
	if o.Skip > 0 {
		opts.SetSkip(o.Skip)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	return opts
}

// explainCmd wraps a find in the explain command at executionStats verbosity.
func explainCmd(collection string, f bson.D) bson.D {
	return bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: collection},
			{Key: "filter", Value: f},
		}},
		{Key: "verbosity", Value: "executionStats"},
	}
}
