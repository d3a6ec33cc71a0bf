package bucketlist

import (
	"context"
	"strings"
	"testing"
	"time"

	"bucketlist/internal/domain"
	models "bucketlist/internal/domain/models/bucketlist"
	svc "bucketlist/internal/domain/services/bucketlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemMutator_CreateAddsOneItem(t *testing.T) {
	stepClock(t)
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.loader.LoadAll(ctx)
	require.NoError(t, err)

	id, err := f.items.Create(ctx, &svc.CreateItemRequest{
		Title:       "Learn to surf",
		Description: "Lessons in\n  Montañita",
	}, alice)
	require.NoError(t, err)

	after, err := f.loader.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	item := f.load(t, id)
	assert.Equal(t, "Learn to surf", item.Title)
	assert.Equal(t, "Lessons in\n  Montañita", item.Description)
	assert.False(t, item.Completed)
	assert.Nil(t, item.CompletedAt)
	assert.Equal(t, "Alice", item.SuggestedBy)
	assert.Equal(t, "alice@example.com", item.SuggestedByEmail)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Empty(t, item.Comments)
	assert.Nil(t, item.Photo)
}

func TestItemMutator_StoresTitleAsTyped(t *testing.T) {
	f := newFixture(t)

	id := f.createItem(t, "  Climb volcano ", "Cotopaxi", alice)
	assert.Equal(t, "  Climb volcano ", f.load(t, id).Title)

	require.NoError(t, f.items.Update(context.Background(), id, &svc.UpdateItemRequest{
		Title:       " Climb Chimborazo",
		Description: "Cotopaxi",
	}))
	assert.Equal(t, " Climb Chimborazo", f.load(t, id).Title)
}

func TestItemMutator_CreateSnapshotsAuthor(t *testing.T) {
	f := newFixture(t)

	id := f.createItem(t, "Run a marathon", "Quito 42k", models.Actor{Email: "nameless@example.com"})
	assert.Equal(t, "nameless@example.com", f.load(t, id).SuggestedBy)

	id = f.createItem(t, "Swim", "Galápagos", models.Actor{})
	assert.Equal(t, "Anonymous", f.load(t, id).SuggestedBy)
}

func TestItemMutator_CreateWithPendingPhoto(t *testing.T) {
	f := newFixture(t)
	photo := testPhoto(alice.Email)

	id, err := f.items.Create(context.Background(), &svc.CreateItemRequest{
		Title:       "See the condor",
		Description: "Parque Cóndor",
		Photo:       photo,
	}, alice)
	require.NoError(t, err)

	assert.Equal(t, photo, f.load(t, id).Photo)
}

func TestItemMutator_ValidationRejectsBeforeRemoteCall(t *testing.T) {
	tests := []struct {
		name string
		req  *svc.CreateItemRequest
	}{
		{name: "empty title", req: &svc.CreateItemRequest{Title: "", Description: "d"}},
		{name: "blank title", req: &svc.CreateItemRequest{Title: "   ", Description: "d"}},
		{name: "blank description", req: &svc.CreateItemRequest{Title: "t", Description: "\n\t"}},
		{name: "title too long", req: &svc.CreateItemRequest{Title: strings.Repeat("a", 201), Description: "d"}},
		{name: "half photo", req: &svc.CreateItemRequest{Title: "t", Description: "d", Photo: testPhotoWithoutRef()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.items.Create(context.Background(), tt.req, alice)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.store.Calls())
		})
	}
}

func TestItemMutator_UpdateTouchesOnlyTitleAndDescription(t *testing.T) {
	stepClock(t)
	f := newFixture(t)
	ctx := context.Background()

	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)
	require.NoError(t, f.items.AttachPhoto(ctx, id, testPhoto(alice.Email)))
	require.NoError(t, f.items.SetCompleted(ctx, id, true))
	_, err := f.comments.Add(ctx, id, &svc.AddCommentRequest{Text: "Bring gloves"}, bob)
	require.NoError(t, err)

	before := f.load(t, id)

	require.NoError(t, f.items.Update(ctx, id, &svc.UpdateItemRequest{
		Title:       "Climb Chimborazo",
		Description: "Two-day\nascent",
	}))

	after := f.load(t, id)
	assert.Equal(t, "Climb Chimborazo", after.Title)
	assert.Equal(t, "Two-day\nascent", after.Description)
	assert.Equal(t, before.Photo, after.Photo)
	assert.Equal(t, before.Comments, after.Comments)
	assert.Equal(t, before.Completed, after.Completed)
	assert.Equal(t, before.CompletedAt, after.CompletedAt)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, before.SuggestedByEmail, after.SuggestedByEmail)
}

func TestItemMutator_UndoCompleteRemovesPhoto(t *testing.T) {
	stepClock(t)
	f := newFixture(t)
	ctx := context.Background()

	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)
	require.NoError(t, f.items.AttachPhoto(ctx, id, testPhoto(alice.Email)))

	require.NoError(t, f.items.SetCompleted(ctx, id, true))
	done := f.load(t, id)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.Photo)

	require.NoError(t, f.items.SetCompleted(ctx, id, false))
	reopened := f.load(t, id)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	// The round trip is not idempotent: the photo does not come back.
	assert.Nil(t, reopened.Photo)
}

func TestItemMutator_CompletionByAnotherUserKeepsOwnership(t *testing.T) {
	start := stepClock(t)
	f := newFixture(t)
	ctx := context.Background()

	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)
	assert.False(t, f.load(t, id).Completed)

	session := NewSession(bob, f.deps)
	_, err := session.CompleteItem(ctx, id)
	require.NoError(t, err)

	item := f.load(t, id)
	assert.True(t, item.Completed)
	require.NotNil(t, item.CompletedAt)
	assert.WithinDuration(t, start, *item.CompletedAt, time.Minute)
	assert.Equal(t, "alice@example.com", item.SuggestedByEmail)
}

func TestItemMutator_DoesNotCheckOwnership(t *testing.T) {
	f := newFixture(t)
	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)

	// Callers gate owner-only operations; the mutator performs the write.
	err := f.items.Update(context.Background(), id, &svc.UpdateItemRequest{
		Title:       "Bob was here",
		Description: "edited by a non-owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob was here", f.load(t, id).Title)
}

func TestItemMutator_MissingItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createItem(t, "Gone soon", "deleted by someone else", alice)
	require.NoError(t, f.items.Delete(ctx, id))

	ops := map[string]func() error{
		"update": func() error {
			return f.items.Update(ctx, id, &svc.UpdateItemRequest{Title: "t", Description: "d"})
		},
		"complete":     func() error { return f.items.SetCompleted(ctx, id, true) },
		"undo":         func() error { return f.items.SetCompleted(ctx, id, false) },
		"delete":       func() error { return f.items.Delete(ctx, id) },
		"attach photo": func() error { return f.items.AttachPhoto(ctx, id, testPhoto(alice.Email)) },
		"detach photo": func() error { return f.items.DetachPhoto(ctx, id) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			f.store.ResetCalls()
			err := op()
			require.ErrorIs(t, err, domain.ErrNotFound)
			assert.Equal(t, []string{"Get"}, f.store.Calls())
		})
	}
}

func TestItemMutator_DetachPhotoLeavesCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createItem(t, "Dive", "Isla de la Plata", alice)
	require.NoError(t, f.items.SetCompleted(ctx, id, true))
	require.NoError(t, f.items.AttachPhoto(ctx, id, testPhoto(alice.Email)))

	require.NoError(t, f.items.DetachPhoto(ctx, id))

	item := f.load(t, id)
	assert.Nil(t, item.Photo)
	assert.True(t, item.Completed)
	assert.NotNil(t, item.CompletedAt)
}

func TestItemMutator_StoreFailureIsRemote(t *testing.T) {
	f := newFixture(t)
	f.store.delay = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := f.items.Create(ctx, &svc.CreateItemRequest{Title: "t", Description: "d"}, alice)
	require.ErrorIs(t, err, domain.ErrRemote)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
