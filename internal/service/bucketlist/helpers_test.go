package bucketlist

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/repositories"
	svc "bucketlist/internal/domain/services/bucketlist"
	"bucketlist/internal/repository/memory"
	authsvc "bucketlist/internal/service/auth"

	"github.com/stretchr/testify/require"
)

var (
	alice = models.Actor{DisplayName: "Alice", Email: "alice@example.com"}
	bob   = models.Actor{DisplayName: "Bob", Email: "bob@example.com"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stepClock replaces the package clock with one that advances a second per call.
func stepClock(t *testing.T) time.Time {
	t.Helper()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	current := start
	orig := now
	now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
	t.Cleanup(func() { now = orig })
	return start
}

// spyStore records every call and lets tests inject failures or
// interleave a concurrent writer.
type spyStore struct {
	inner *memory.DocumentStore

	mu      sync.Mutex
	calls   []string
	listErr error
	// beforeUpdate runs before UpdateFields reaches the inner store
	beforeUpdate func(call int)
	updates      int
	// delay blocks every call until ctx is done or the delay elapses
	delay time.Duration
}

func newSpyStore() *spyStore {
	return &spyStore{inner: memory.NewDocumentStore()}
}

var _ repositories.DocumentStore = (*spyStore)(nil)

func (s *spyStore) record(ctx context.Context, name string) error {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *spyStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *spyStore) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *spyStore) SetListErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *spyStore) ListAll(ctx context.Context, collection string) ([]repositories.Document, error) {
	if err := s.record(ctx, "ListAll"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	listErr := s.listErr
	s.mu.Unlock()
	if listErr != nil {
		return nil, listErr
	}
	return s.inner.ListAll(ctx, collection)
}

func (s *spyStore) Insert(ctx context.Context, collection string, fields repositories.Fields) (string, error) {
	if err := s.record(ctx, "Insert"); err != nil {
		return "", err
	}
	return s.inner.Insert(ctx, collection, fields)
}

func (s *spyStore) Get(ctx context.Context, collection, id string) (*repositories.Document, error) {
	if err := s.record(ctx, "Get"); err != nil {
		return nil, err
	}
	return s.inner.Get(ctx, collection, id)
}

func (s *spyStore) UpdateFields(ctx context.Context, collection, id string, update repositories.FieldUpdate) error {
	if err := s.record(ctx, "UpdateFields"); err != nil {
		return err
	}
	s.mu.Lock()
	s.updates++
	call := s.updates
	hook := s.beforeUpdate
	s.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return s.inner.UpdateFields(ctx, collection, id, update)
}

func (s *spyStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.record(ctx, "Delete"); err != nil {
		return err
	}
	return s.inner.Delete(ctx, collection, id)
}

func (s *spyStore) ArrayAppend(ctx context.Context, collection, id, field string, value interface{}) error {
	if err := s.record(ctx, "ArrayAppend"); err != nil {
		return err
	}
	return s.inner.ArrayAppend(ctx, collection, id, field, value)
}

func (s *spyStore) ArrayRemove(ctx context.Context, collection, id, field, key, value string) error {
	if err := s.record(ctx, "ArrayRemove"); err != nil {
		return err
	}
	return s.inner.ArrayRemove(ctx, collection, id, field, key, value)
}

// fakeImageHost returns a fixed result or error and counts uploads
type fakeImageHost struct {
	mu      sync.Mutex
	uploads int
	result  *svc.UploadResult
	err     error
}

func (f *fakeImageHost) Upload(ctx context.Context, req *svc.UploadRequest) (*svc.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// recordingPublisher keeps every published change
type recordingPublisher struct {
	mu      sync.Mutex
	changes []svc.Change
}

func (p *recordingPublisher) Publish(change svc.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
}

func (p *recordingPublisher) Changes() []svc.Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]svc.Change(nil), p.changes...)
}

type fixture struct {
	store     *spyStore
	loader    svc.Loader
	items     svc.ItemMutator
	comments  svc.CommentMutator
	images    *fakeImageHost
	publisher *recordingPublisher
	deps      Dependencies
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newSpyStore()
	logger := discardLogger()
	f := &fixture{
		store:    store,
		loader:   NewLoader(store, logger),
		items:    NewItemMutator(store, logger),
		comments: NewCommentMutator(store, 3, logger),
		images: &fakeImageHost{result: &svc.UploadResult{
			URL:         "https://images.example.com/photos/summit.jpg",
			FileID:      "photos/2024/05/01/summit.jpg",
			DisplayName: "summit.jpg",
			Format:      "jpg",
		}},
		publisher: &recordingPublisher{},
	}
	f.deps = Dependencies{
		Loader:        f.loader,
		Items:         f.items,
		Comments:      f.comments,
		Images:        f.images,
		Authorizer:    authsvc.NewOwnerBasedAuthorizer(),
		Publisher:     f.publisher,
		Logger:        logger,
		RemoteTimeout: time.Second,
	}
	return f
}

// createItem inserts an item through the mutator and returns its id
func (f *fixture) createItem(t *testing.T, title, description string, author models.Actor) string {
	t.Helper()
	id, err := f.items.Create(context.Background(), &svc.CreateItemRequest{
		Title:       title,
		Description: description,
	}, author)
	require.NoError(t, err)
	return id
}

// load returns the stored item with the given id
func (f *fixture) load(t *testing.T, id string) models.Item {
	t.Helper()
	items, err := f.loader.LoadAll(context.Background())
	require.NoError(t, err)
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("item %s not loaded", id)
	return models.Item{}
}

func testPhoto(by string) *models.Photo {
	return &models.Photo{
		URL:        "https://images.example.com/photos/proof.png",
		FileRef:    "photos/2024/05/01/proof.png",
		UploadedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		UploadedBy: by,
		FileType:   "png",
	}
}

func testPhotoWithoutRef() *models.Photo {
	p := testPhoto("alice@example.com")
	p.FileRef = ""
	return p
}

// cachedItems copies the session's local list without reloading it
func cachedItems(s *Session) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneItems(s.items)
}
