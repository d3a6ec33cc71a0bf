// Package memory provides an in-process DocumentStore for tests and local
// development. Documents are held as JSON so reads see exactly what a JSON
// document database would return.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"bucketlist/internal/domain"
	"bucketlist/internal/domain/repositories"

	"github.com/google/uuid"
)

type record struct {
	id       string
	revision int64
	raw      []byte
}

// DocumentStore is a mutex-guarded map of collections.
type DocumentStore struct {
	mu          sync.Mutex
	collections map[string][]*record
	newID       func() string
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		collections: make(map[string][]*record),
		newID:       func() string { return uuid.NewString() },
	}
}

var _ repositories.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) ListAll(ctx context.Context, collection string) ([]repositories.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := []repositories.Document{}
	for _, r := range s.collections[collection] {
		doc, err := r.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *DocumentStore) Insert(ctx context.Context, collection string, fields repositories.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := &record{id: s.newID(), revision: 1, raw: raw}
	s.collections[collection] = append(s.collections[collection], r)
	return r.id, nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*repositories.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _ := s.find(collection, id)
	if r == nil {
		return nil, fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	doc, err := r.document()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *DocumentStore) UpdateFields(ctx context.Context, collection, id string, update repositories.FieldUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _ := s.find(collection, id)
	if r == nil {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	if update.ExpectedRevision != nil && *update.ExpectedRevision != r.revision {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("%s %s is at revision %d, expected %d", collection, id, r.revision, *update.ExpectedRevision),
			ResourceType: collection,
			ResourceID:   id,
		}
	}

	return r.mutate(func(fields repositories.Fields) error {
		for k, v := range update.Set {
			fields[k] = v
		}
		for _, k := range update.Delete {
			delete(fields, k)
		}
		return nil
	})
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx := s.find(collection, id)
	if idx < 0 {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	records := s.collections[collection]
	s.collections[collection] = append(records[:idx:idx], records[idx+1:]...)
	return nil
}

func (s *DocumentStore) ArrayAppend(ctx context.Context, collection, id, field string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _ := s.find(collection, id)
	if r == nil {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	return r.mutate(func(fields repositories.Fields) error {
		existing, _ := fields[field].([]interface{})
		fields[field] = append(existing, value)
		return nil
	})
}

func (s *DocumentStore) ArrayRemove(ctx context.Context, collection, id, field, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _ := s.find(collection, id)
	if r == nil {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	return r.mutate(func(fields repositories.Fields) error {
		existing, _ := fields[field].([]interface{})
		kept := make([]interface{}, 0, len(existing))
		for _, el := range existing {
			if obj, ok := el.(map[string]interface{}); ok {
				if v, ok := obj[key].(string); ok && v == value {
					continue
				}
			}
			kept = append(kept, el)
		}
		fields[field] = kept
		return nil
	})
}

// Len returns the number of documents in a collection.
func (s *DocumentStore) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

func (s *DocumentStore) find(collection, id string) (*record, int) {
	for idx, r := range s.collections[collection] {
		if r.id == id {
			return r, idx
		}
	}
	return nil, -1
}

func (r *record) document() (repositories.Document, error) {
	fields := repositories.Fields{}
	if err := json.Unmarshal(r.raw, &fields); err != nil {
		return repositories.Document{}, fmt.Errorf("decode %s: %w", r.id, err)
	}
	return repositories.Document{ID: r.id, Revision: r.revision, Fields: fields}, nil
}

// mutate decodes, edits and re-encodes the record, bumping its revision.
func (r *record) mutate(fn func(repositories.Fields) error) error {
	fields := repositories.Fields{}
	if err := json.Unmarshal(r.raw, &fields); err != nil {
		return fmt.Errorf("decode %s: %w", r.id, err)
	}
	if err := fn(fields); err != nil {
		return err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.id, err)
	}
	r.raw = raw
	r.revision++
	return nil
}
