package bucketlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bucketlist/internal/domain"
	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/repositories"
	svc "bucketlist/internal/domain/services/bucketlist"
)

// commentMutator implements the CommentMutator interface.
//
// Add and Remove use the store's atomic array primitives. Edits locate a
// comment by id, so they rewrite the whole collection guarded by the
// parent's revision and re-read on conflict.
type commentMutator struct {
	store      repositories.DocumentStore
	maxRetries int
	logger     *slog.Logger
}

// NewCommentMutator creates a new comment mutator. maxRetries bounds how
// many times a rewrite is retried after the parent changed underneath it.
func NewCommentMutator(store repositories.DocumentStore, maxRetries int, logger *slog.Logger) svc.CommentMutator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &commentMutator{
		store:      store,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Add appends a new comment to the item
func (m *commentMutator) Add(ctx context.Context, itemID string, req *svc.AddCommentRequest, author models.Actor) (*models.Comment, error) {
	if err := validateAddComment(req); err != nil {
		return nil, invalid(err)
	}

	id, err := newCommentID()
	if err != nil {
		return nil, fmt.Errorf("generate comment id: %w", err)
	}

	comment := models.Comment{
		ID:          id,
		Text:        strings.TrimSpace(req.Text),
		CreatedAt:   now().UTC(),
		AuthorName:  author.Snapshot(),
		AuthorEmail: author.Email,
		Photo:       req.Photo.Clone(),
	}

	if err := m.store.ArrayAppend(ctx, Collection, itemID, fieldComments, encodeComment(comment)); err != nil {
		return nil, classify("add comment", err)
	}

	m.logger.Info("comment added",
		"item_id", itemID,
		"comment_id", id,
		"author", author.Email,
		"with_photo", comment.Photo != nil,
	)

	return &comment, nil
}

// Edit replaces the text of one comment
func (m *commentMutator) Edit(ctx context.Context, cached *models.Item, commentID string, req *svc.EditCommentRequest) error {
	if err := validateEditComment(req); err != nil {
		return invalid(err)
	}

	text := strings.TrimSpace(req.Text)
	err := m.rewrite(ctx, "edit comment", cached, commentID, func(c *models.Comment) {
		c.Text = text
	})
	if err != nil {
		return err
	}

	m.logger.Info("comment edited", "item_id", cached.ID, "comment_id", commentID)
	return nil
}

// Remove drops one comment; the rest keep their order
func (m *commentMutator) Remove(ctx context.Context, cached *models.Item, commentID string) error {
	if err := requireCached(cached, commentID); err != nil {
		return err
	}

	if err := m.store.ArrayRemove(ctx, Collection, cached.ID, fieldComments, commentKeyID, commentID); err != nil {
		return classify("remove comment", err)
	}

	m.logger.Info("comment removed", "item_id", cached.ID, "comment_id", commentID)
	return nil
}

// AttachPhoto sets or replaces the photo of one comment
func (m *commentMutator) AttachPhoto(ctx context.Context, cached *models.Item, commentID string, photo *models.Photo) error {
	if err := validatePhoto(photo); err != nil {
		return invalid(err)
	}

	err := m.rewrite(ctx, "attach comment photo", cached, commentID, func(c *models.Comment) {
		c.Photo = photo.Clone()
	})
	if err != nil {
		return err
	}

	m.logger.Info("comment photo attached",
		"item_id", cached.ID,
		"comment_id", commentID,
		"file_ref", photo.FileRef,
	)
	return nil
}

// DetachPhoto clears the photo of one comment and keeps its text. A comment
// left with neither is kept as is.
func (m *commentMutator) DetachPhoto(ctx context.Context, cached *models.Item, commentID string) error {
	err := m.rewrite(ctx, "detach comment photo", cached, commentID, func(c *models.Comment) {
		c.Photo = nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("comment photo detached", "item_id", cached.ID, "comment_id", commentID)
	return nil
}

// rewrite applies transform to the comment and writes the whole collection
// back, conditional on the parent revision it was derived from. After a
// revision conflict it re-reads the parent and re-applies transform.
func (m *commentMutator) rewrite(ctx context.Context, op string, cached *models.Item, commentID string, transform func(*models.Comment)) error {
	if err := requireCached(cached, commentID); err != nil {
		return err
	}

	comments := cached.Clone().Comments
	revision := cached.Revision

	for attempt := 0; ; attempt++ {
		_, idx := (models.Item{Comments: comments}).FindComment(commentID)
		if idx < 0 {
			return &domain.NotFoundError{Message: fmt.Sprintf("comment %s no longer exists", commentID)}
		}
		transform(&comments[idx])

		expected := revision
		err := m.store.UpdateFields(ctx, Collection, cached.ID, repositories.FieldUpdate{
			Set:              repositories.Fields{fieldComments: encodeComments(comments)},
			ExpectedRevision: &expected,
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRevisionConflict) || attempt >= m.maxRetries {
			return classify(op, err)
		}

		m.logger.Debug("comment rewrite conflicted, re-reading parent",
			"item_id", cached.ID,
			"comment_id", commentID,
			"attempt", attempt+1,
		)

		fresh, err := m.reload(ctx, cached.ID)
		if err != nil {
			return classify(op, err)
		}
		comments = fresh.Comments
		revision = fresh.Revision
	}
}

func (m *commentMutator) reload(ctx context.Context, itemID string) (models.Item, error) {
	doc, err := m.store.Get(ctx, Collection, itemID)
	if err != nil {
		return models.Item{}, err
	}
	res, err := decodeItem(*doc)
	if err != nil {
		return models.Item{}, err
	}
	return res.item, nil
}

// requireCached enforces that comment operations work from the caller's
// local copy of the parent rather than a fresh remote read.
func requireCached(cached *models.Item, commentID string) error {
	if cached == nil {
		return &domain.NotFoundError{Message: "item is not in the local list"}
	}
	if _, idx := cached.FindComment(commentID); idx < 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("comment %s not found on item %s", commentID, cached.ID)}
	}
	return nil
}
