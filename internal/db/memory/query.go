package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/projection"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
	"github.com/kailas-cloud/bookstore/internal/domain/query/update"
)

// Find applies filter, sort, skip and limit in that order, then projects.
func (s *Store) Find(_ context.Context, f filter.Filter, opts db.FindOptions) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(db.OpFind); err != nil {
		return nil, err
	}
	if opts.Skip < 0 || opts.Limit < 0 {
		return nil, &db.Error{Op: db.OpFind, Err: fmt.Errorf("negative skip or limit")}
	}

	matched := make([]document.Document, 0)
	for _, d := range s.docs {
		if match(d, f) {
			matched = append(matched, d)
		}
	}

	sortDocs(matched, opts.Sort)

	if opts.Skip >= int64(len(matched)) {
		return []document.Document{}, nil
	}
	matched = matched[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < int64(len(matched)) {
		matched = matched[:opts.Limit]
	}

	out := make([]document.Document, len(matched))
	for i, d := range matched {
		out[i] = project(d, opts.Projection)
	}
	return out, nil
}

// UpdateOne sets a field on the first document (natural order) matching f.
func (s *Store) UpdateOne(_ context.Context, f filter.Filter, u update.Update) (db.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db.OpUpdate); err != nil {
		return db.UpdateResult{}, err
	}

	for i, d := range s.docs {
		if !match(d, f) {
			continue
		}
		if cur, ok := d.Get(u.Field()); ok && equalValues(cur, u.Value()) {
			return db.UpdateResult{Matched: 1}, nil
		}
		next := d.Clone()
		next[u.Field()] = u.Value()
		if err := s.checkUniqueReplace(i, next); err != nil {
			return db.UpdateResult{}, &db.Error{Op: db.OpUpdate, Err: err}
		}
		s.docs[i] = next
		return db.UpdateResult{Matched: 1, Modified: 1}, nil
	}
	return db.UpdateResult{}, nil
}

// DeleteOne removes the first document (natural order) matching f.
func (s *Store) DeleteOne(_ context.Context, f filter.Filter) (db.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db.OpDelete); err != nil {
		return db.DeleteResult{}, err
	}

	for i, d := range s.docs {
		if match(d, f) {
			s.docs = append(s.docs[:i:i], s.docs[i+1:]...)
			return db.DeleteResult{Deleted: 1}, nil
		}
	}
	return db.DeleteResult{}, nil
}

func (s *Store) checkUniqueReplace(pos int, next document.Document) error {
	for _, spec := range s.indexes {
		if !spec.IsUnique() {
			continue
		}
		candidate := make([]document.Document, len(s.docs))
		copy(candidate, s.docs)
		candidate[pos] = next
		if err := checkUnique(spec, candidate); err != nil {
			return err
		}
	}
	return nil
}

// match evaluates f against d.
func match(d document.Document, f filter.Filter) bool {
	switch f.Kind() {
	case filter.KindAll:
		return true
	case filter.KindEq:
		v, ok := d.Get(f.Field())
		if f.Value() == nil {
			return !ok || v == nil
		}
		return ok && equalValues(v, f.Value())
	case filter.KindCompare:
		v, ok := d.Get(f.Field())
		if !ok {
			return false
		}
		c, comparable := compareValues(v, f.Value())
		if !comparable {
			return false
		}
		switch f.Op() {
		case filter.OpGT:
			return c > 0
		case filter.OpGTE:
			return c >= 0
		case filter.OpLT:
			return c < 0
		case filter.OpLTE:
			return c <= 0
		}
		return false
	case filter.KindAnd:
		for _, child := range f.Children() {
			if !match(d, child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// project returns a copy of d restricted by p.
func project(d document.Document, p projection.Projection) document.Document {
	if p.IsZero() {
		return d.Clone()
	}
	out := make(document.Document, len(d))
	for k, v := range d {
		if p.Keeps(k) {
			out[k] = v
		}
	}
	return out.Clone()
}

// sortDocs orders docs by spec. The sort is stable, so ties keep natural order.
func sortDocs(docs []document.Document, spec sortspec.Spec) {
	if spec.IsZero() {
		return
	}
	keys := spec.Keys()
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			c, _ := compareValues(docs[i][k.Field], docs[j][k.Field])
			if c == 0 {
				continue
			}
			if k.Direction == sortspec.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
