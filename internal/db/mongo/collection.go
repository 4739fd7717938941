package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/update"
)

// Find runs a find with the given options and decodes every result.
func (s *Store) Find(ctx context.Context, f filter.Filter, o db.FindOptions) ([]document.Document, error) {
	q, err := filterDoc(f)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	cur, err := s.coll.Find(ctx, q, findOptions(o))
	if err != nil {
		return nil, wrap(db.OpFind, err)
	}
	return drain(ctx, db.OpFind, cur)
}

// UpdateOne applies a $set to the first matching document.
func (s *Store) UpdateOne(ctx context.Context, f filter.Filter, u update.Update) (db.UpdateResult, error) {
	q, err := filterDoc(f)
	if err != nil {
		return db.UpdateResult{}, &db.Error{Op: db.OpUpdate, Err: err}
	}
	res, err := s.coll.UpdateOne(ctx, q, updateDoc(u))
	if err != nil {
		return db.UpdateResult{}, wrap(db.OpUpdate, err)
	}
	return db.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// DeleteOne removes the first matching document.
func (s *Store) DeleteOne(ctx context.Context, f filter.Filter) (db.DeleteResult, error) {
	q, err := filterDoc(f)
	if err != nil {
		return db.DeleteResult{}, &db.Error{Op: db.OpDelete, Err: err}
	}
	res, err := s.coll.DeleteOne(ctx, q)
	if err != nil {
		return db.DeleteResult{}, wrap(db.OpDelete, err)
	}
	return db.DeleteResult{Deleted: res.DeletedCount}, nil
}

// Aggregate runs the pipeline and decodes every output document.
func (s *Store) Aggregate(ctx context.Context, p aggregate.Pipeline) ([]document.Document, error) {
	stages, err := pipelineDoc(p)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	cur, err := s.coll.Aggregate(ctx, stages)
	if err != nil {
		return nil, wrap(db.OpAggregate, err)
	}
	return drain(ctx, db.OpAggregate, cur)
}

// CreateIndex creates spec and returns the name the server used.
func (s *Store) CreateIndex(ctx context.Context, spec index.Spec) (string, error) {
	name, err := s.coll.Indexes().CreateOne(ctx, indexModel(spec))
	if err != nil {
		return "", wrap(db.OpCreateIndexes, err)
	}
	return name, nil
}

// Explain returns the executionStats plan of a find with filter f.
func (s *Store) Explain(ctx context.Context, f filter.Filter) (document.Document, error) {
	q, err := filterDoc(f)
	if err != nil {
		return nil, &db.Error{Op: db.OpExplain, Err: err}
	}
	var raw bson.M
	res := s.coll.Database().RunCommand(ctx, explainCmd(s.coll.Name(), q))
	if err := res.Decode(&raw); err != nil {
		return nil, wrap(db.OpExplain, err)
	}
	return normalizeDoc(raw), nil
}

// InsertMany inserts docs in order; the server assigns missing _id values.
func (s *Store) InsertMany(ctx context.Context, docs []document.Document) ([]string, error) {
	if len(docs) == 0 {
		return []string{}, nil
	}
	batch := make([]any, len(docs))
	for i, d := range docs {
		batch[i] = map[string]any(d)
	}
	res, err := s.coll.InsertMany(ctx, batch, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, wrap(db.OpInsert, err)
	}
	ids := make([]string, len(res.InsertedIDs))
	for i, id := range res.InsertedIDs {
		ids[i] = idString(id)
	}
	return ids, nil
}

// Drop removes the collection with its indexes.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return wrap(db.OpDrop, err)
	}
	return nil
}

func drain(ctx context.Context, op string, cur *mongo.Cursor) ([]document.Document, error) {
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, wrap(op, fmt.Errorf("decode: %w", err))
	}
	out := make([]document.Document, len(raw))
	for i, m := range raw {
		out[i] = normalizeDoc(m)
	}
	return out, nil
}
