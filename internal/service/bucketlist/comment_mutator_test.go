package bucketlist

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"bucketlist/internal/domain"
	models "bucketlist/internal/domain/models/bucketlist"
	svc "bucketlist/internal/domain/services/bucketlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedComments creates an item by alice with one comment per text, authored by bob
func seedComments(t *testing.T, f *fixture, texts ...string) models.Item {
	t.Helper()
	ctx := context.Background()
	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)
	for _, text := range texts {
		_, err := f.comments.Add(ctx, id, &svc.AddCommentRequest{Text: text}, bob)
		require.NoError(t, err)
	}
	return f.load(t, id)
}

func TestCommentMutator_AddWithoutPhoto(t *testing.T) {
	stepClock(t)
	f := newFixture(t)
	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", bob)

	comment, err := f.comments.Add(context.Background(), id, &svc.AddCommentRequest{Text: "Great view!"}, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)

	item := f.load(t, id)
	require.Len(t, item.Comments, 1)
	got := item.Comments[0]
	assert.Equal(t, comment.ID, got.ID)
	assert.Equal(t, "Great view!", got.Text)
	assert.Nil(t, got.Photo)
	assert.Equal(t, "alice@example.com", got.AuthorEmail)
	assert.Equal(t, "Alice", got.AuthorName)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCommentMutator_AddPhotoOnly(t *testing.T) {
	f := newFixture(t)
	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)
	photo := testPhoto(bob.Email)

	_, err := f.comments.Add(context.Background(), id, &svc.AddCommentRequest{Photo: photo}, bob)
	require.NoError(t, err)

	item := f.load(t, id)
	require.Len(t, item.Comments, 1)
	assert.Equal(t, "", item.Comments[0].Text)
	assert.Equal(t, photo, item.Comments[0].Photo)
}

func TestCommentMutator_AddRejectsEmptyBeforeRemoteCall(t *testing.T) {
	tests := []struct {
		name string
		req  *svc.AddCommentRequest
	}{
		{name: "empty", req: &svc.AddCommentRequest{}},
		{name: "whitespace only", req: &svc.AddCommentRequest{Text: " \n\t "}},
		{name: "incomplete photo", req: &svc.AddCommentRequest{Photo: testPhotoWithoutRef()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.comments.Add(context.Background(), "any-item", tt.req, alice)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.store.Calls(), "no remote call may be issued")
		})
	}
}

func TestCommentMutator_AddToMissingItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.comments.Add(context.Background(), "missing", &svc.AddCommentRequest{Text: "hi"}, alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommentMutator_EditChangesOnlyThatText(t *testing.T) {
	stepClock(t)
	f := newFixture(t)
	ctx := context.Background()
	item := seedComments(t, f, "first", "second", "third")
	target := item.Comments[1]

	require.NoError(t, f.comments.Edit(ctx, &item, target.ID, &svc.EditCommentRequest{Text: "  second, edited "}))

	after := f.load(t, item.ID)
	require.Len(t, after.Comments, 3)
	for i, c := range after.Comments {
		if c.ID == target.ID {
			expected := target
			expected.Text = "second, edited"
			assert.Equal(t, expected, c)
			continue
		}
		assert.Equal(t, item.Comments[i], c)
	}
	assert.Equal(t, item.Title, after.Title)
	assert.Equal(t, item.Description, after.Description)
	assert.Equal(t, item.Completed, after.Completed)
	assert.Equal(t, item.Photo, after.Photo)
	assert.Equal(t, item.SuggestedByEmail, after.SuggestedByEmail)
}

func TestCommentMutator_EditRequiresText(t *testing.T) {
	f := newFixture(t)
	item := seedComments(t, f, "first")
	f.store.ResetCalls()

	err := f.comments.Edit(context.Background(), &item, item.Comments[0].ID, &svc.EditCommentRequest{Text: "   "})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.Calls())
}

func TestCommentMutator_RequiresCachedParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.comments.Edit(ctx, nil, "c1", &svc.EditCommentRequest{Text: "x"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = f.comments.Remove(ctx, nil, "c1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	item := seedComments(t, f, "only")
	err = f.comments.DetachPhoto(ctx, &item, "not-a-comment")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommentMutator_RemoveKeepsOthersInOrder(t *testing.T) {
	stepClock(t)
	f := newFixture(t)
	item := seedComments(t, f, "a", "b", "c", "d")
	removed := item.Comments[1]

	require.NoError(t, f.comments.Remove(context.Background(), &item, removed.ID))

	after := f.load(t, item.ID)
	require.Len(t, after.Comments, len(item.Comments)-1)
	for _, c := range after.Comments {
		assert.NotEqual(t, removed.ID, c.ID)
	}
	assert.Equal(t, []models.Comment{item.Comments[0], item.Comments[2], item.Comments[3]}, after.Comments)
}

func TestCommentMutator_DetachPhotoKeepsEmptyComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)

	_, err := f.comments.Add(ctx, id, &svc.AddCommentRequest{Photo: testPhoto(bob.Email)}, bob)
	require.NoError(t, err)
	_, err = f.comments.Add(ctx, id, &svc.AddCommentRequest{Text: "caption", Photo: testPhoto(bob.Email)}, bob)
	require.NoError(t, err)
	item := f.load(t, id)

	for _, c := range item.Comments {
		require.NoError(t, f.comments.DetachPhoto(ctx, &item, c.ID))
		item = f.load(t, id)
	}

	require.Len(t, item.Comments, 2)
	assert.Nil(t, item.Comments[0].Photo)
	assert.True(t, item.Comments[0].IsEmpty())
	assert.Nil(t, item.Comments[1].Photo)
	assert.Equal(t, "caption", item.Comments[1].Text)
}

func TestCommentMutator_AttachPhotoReplaces(t *testing.T) {
	f := newFixture(t)
	item := seedComments(t, f, "needs proof")
	photo := testPhoto(bob.Email)

	require.NoError(t, f.comments.AttachPhoto(context.Background(), &item, item.Comments[0].ID, photo))

	after := f.load(t, item.ID)
	assert.Equal(t, photo, after.Comments[0].Photo)
	assert.Equal(t, "needs proof", after.Comments[0].Text)
}

func TestCommentMutator_EditRetriesAfterConcurrentWrite(t *testing.T) {
	stepClock(t)
	f := newFixture(t)
	ctx := context.Background()
	item := seedComments(t, f, "original")
	target := item.Comments[0]

	// Another session appends a comment between our read and our write.
	f.store.beforeUpdate = func(call int) {
		if call == 1 {
			require.NoError(t, f.store.inner.ArrayAppend(ctx, Collection, item.ID, fieldComments,
				encodeComment(models.Comment{ID: "concurrent", Text: "from elsewhere", AuthorEmail: alice.Email})))
		}
	}

	require.NoError(t, f.comments.Edit(ctx, &item, target.ID, &svc.EditCommentRequest{Text: "edited"}))

	after := f.load(t, item.ID)
	require.Len(t, after.Comments, 2)
	assert.Equal(t, "edited", after.Comments[0].Text)
	assert.Equal(t, "concurrent", after.Comments[1].ID)
	assert.Equal(t, []string{"UpdateFields", "Get", "UpdateFields", "ListAll"}, f.store.Calls()[len(f.store.Calls())-4:])
}

func TestCommentMutator_EditGivesUpAfterRetries(t *testing.T) {
	f := newFixture(t)
	f.comments = NewCommentMutator(f.store, 2, discardLogger())
	ctx := context.Background()
	item := seedComments(t, f, "contended")

	var n int
	f.store.beforeUpdate = func(int) {
		n++
		require.NoError(t, f.store.inner.ArrayAppend(ctx, Collection, item.ID, fieldComments,
			encodeComment(models.Comment{ID: fmt.Sprintf("noise-%d", n), Text: "noise"})))
	}

	err := f.comments.Edit(ctx, &item, item.Comments[0].ID, &svc.EditCommentRequest{Text: "mine"})
	require.ErrorIs(t, err, domain.ErrRevisionConflict)
	assert.Equal(t, 3, n)
}

func TestCommentMutator_EditOfCommentDeletedConcurrently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := seedComments(t, f, "doomed")
	target := item.Comments[0]

	f.store.beforeUpdate = func(call int) {
		if call == 1 {
			require.NoError(t, f.store.inner.ArrayRemove(ctx, Collection, item.ID, fieldComments, commentKeyID, target.ID))
		}
	}

	err := f.comments.Edit(ctx, &item, target.ID, &svc.EditCommentRequest{Text: "too late"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.load(t, item.ID).Comments)
}

func TestCommentMutator_ConcurrentAddsAllSurvive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createItem(t, "Climb volcano", "Cotopaxi day hike", alice)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.comments.Add(ctx, id, &svc.AddCommentRequest{Text: fmt.Sprintf("comment %d", i)}, bob)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	item := f.load(t, id)
	require.Len(t, item.Comments, writers)
	seen := map[string]bool{}
	for _, c := range item.Comments {
		seen[c.ID] = true
	}
	assert.Len(t, seen, writers, "comment ids must be unique within the item")
}
