// Package memory is an in-process implementation of db.Store. It evaluates
// the domain query types directly and is used for tests and local demos.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps documents in insertion order, which is the natural order.
type Store struct {
	mu      sync.RWMutex
	docs    []document.Document
	indexes map[string]index.Spec
	closed  bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{indexes: make(map[string]index.Spec)}
}

// Ping reports db.ErrNotConnected after Close.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkOpen(db.OpPing)
}

// Close marks the store closed. Closing twice is a no-op.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// WaitForReady returns immediately: the store is ready once created.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// InsertMany appends documents, assigning a UUID _id where missing.
func (s *Store) InsertMany(_ context.Context, docs []document.Document) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db.OpInsert); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	staged := make([]document.Document, 0, len(docs))
	seen := make(map[string]bool, len(s.docs)+len(docs))
	for _, d := range s.docs {
		seen[d.String(document.FieldID)] = true
	}

	for _, d := range docs {
		c := d.Clone()
		if c == nil {
			c = document.Document{}
		}
		id := c.String(document.FieldID)
		if id == "" {
			id = uuid.NewString()
			c[document.FieldID] = id
		}
		if seen[id] {
			return nil, &db.Error{Op: db.OpInsert, Err: fmt.Errorf("%w: _id %q", db.ErrDuplicateKey, id)}
		}
		seen[id] = true
		staged = append(staged, c)
		ids = append(ids, id)
	}

	for _, spec := range s.indexes {
		if !spec.IsUnique() {
			continue
		}
		if err := checkUnique(spec, append(append([]document.Document{}, s.docs...), staged...)); err != nil {
			return nil, &db.Error{Op: db.OpInsert, Err: err}
		}
	}

	s.docs = append(s.docs, staged...)
	return ids, nil
}

// Drop removes every document and index.
func (s *Store) Drop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(db.OpDrop); err != nil {
		return err
	}
	s.docs = nil
	s.indexes = make(map[string]index.Spec)
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) checkOpen(op string) error {
	if s.closed {
		return &db.Error{Op: op, Err: db.ErrNotConnected}
	}
	return nil
}
