package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/explain"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
)

// Explain plan stage names, as reported by the document server.
const (
	stageCollScan = "COLLSCAN"
	stageIxScan   = "IXSCAN"
	stageFetch    = "FETCH"
)

// CreateIndex registers spec. Re-creating an identical index is a no-op that
// returns the same name.
func (s *Store) CreateIndex(_ context.Context, spec index.Spec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db.OpCreateIndexes); err != nil {
		return "", err
	}

	if existing, ok := s.indexes[spec.Name()]; ok {
		if sameIndex(existing, spec) {
			return spec.Name(), nil
		}
		return "", &db.Error{Op: db.OpCreateIndexes, Err: fmt.Errorf("%w: %s", db.ErrIndexExists, spec.Name())}
	}
	if spec.IsUnique() {
		if err := checkUnique(spec, s.docs); err != nil {
			return "", &db.Error{Op: db.OpCreateIndexes, Err: err}
		}
	}
	s.indexes[spec.Name()] = spec
	return spec.Name(), nil
}

// Indexes returns the registered index names.
func (s *Store) Indexes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	return names
}

// Explain runs f and reports a plan document shaped like the server's
// executionStats verbosity.
func (s *Store) Explain(_ context.Context, f filter.Filter) (document.Document, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(db.OpExplain); err != nil {
		return nil, err
	}

	var returned, keys int64
	ix, indexed := s.chooseIndex(f)
	for _, d := range s.docs {
		if indexed && leadingMatches(d, f, ix.Leading()) {
			keys++
		}
		if match(d, f) {
			returned++
		}
	}

	examined := int64(len(s.docs))
	winning := document.Document{explain.FieldStage: stageCollScan}
	if indexed {
		examined = keys
		winning = document.Document{
			explain.FieldStage: stageFetch,
			explain.FieldInputStage: document.Document{
				explain.FieldStage: stageIxScan,
				"indexName":        ix.Name(),
			},
		}
	}

	return document.Document{
		explain.FieldQueryPlanner: document.Document{
			explain.FieldWinningPlan: winning,
		},
		explain.FieldExecutionStats: document.Document{
			explain.FieldExecutionTimeMillis: time.Since(start).Milliseconds(),
			explain.FieldTotalDocsExamined:   examined,
			explain.FieldTotalKeysExamined:   keys,
			explain.FieldNReturned:           returned,
		},
	}, nil
}

// chooseIndex picks the index whose leading field the filter constrains,
// preferring the one with more keys. Ties break on name.
func (s *Store) chooseIndex(f filter.Filter) (index.Spec, bool) {
	fields := make(map[string]bool)
	for _, name := range f.Fields() {
		fields[name] = true
	}
	var best index.Spec
	found := false
	for _, ix := range s.indexes {
		if !fields[ix.Leading()] {
			continue
		}
		if !found || len(ix.Keys()) > len(best.Keys()) ||
			(len(ix.Keys()) == len(best.Keys()) && strings.Compare(ix.Name(), best.Name()) < 0) {
			best, found = ix, true
		}
	}
	return best, found
}

// leadingMatches reports whether d falls in the index range the filter
// selects on the leading field.
func leadingMatches(d document.Document, f filter.Filter, leading string) bool {
	ok := true
	walkLeaves(f, func(leaf filter.Filter) {
		if leaf.Field() == leading && !match(d, leaf) {
			ok = false
		}
	})
	return ok
}

func walkLeaves(f filter.Filter, fn func(filter.Filter)) {
	if f.Kind() == filter.KindAnd {
		for _, c := range f.Children() {
			walkLeaves(c, fn)
		}
		return
	}
	if f.Kind() != filter.KindAll {
		fn(f)
	}
}

func sameIndex(a, b index.Spec) bool {
	if a.IsUnique() != b.IsUnique() {
		return false
	}
	ak, bk := a.Keys(), b.Keys()
	if len(ak) != len(bk) {
		return false
	}
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
	}
	return true
}

// checkUnique fails when two docs share the same key tuple for spec.
func checkUnique(spec index.Spec, docs []document.Document) error {
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		parts := make([]string, 0, len(spec.Keys()))
		for _, k := range spec.Keys() {
			v, _ := d.Get(k.Field)
			parts = append(parts, hashKey(v))
		}
		key := strings.Join(parts, "|")
		if seen[key] {
			return fmt.Errorf("%w: index %s", db.ErrDuplicateKey, spec.Name())
		}
		seen[key] = true
	}
	return nil
}
