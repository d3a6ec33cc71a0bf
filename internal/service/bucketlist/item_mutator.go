package bucketlist

import (
	"context"
	"log/slog"

	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/repositories"
	svc "bucketlist/internal/domain/services/bucketlist"
)

// itemMutator implements the ItemMutator interface.
// Every write is a partial field update; keys outside the update are never sent.
type itemMutator struct {
	store  repositories.DocumentStore
	logger *slog.Logger
}

// NewItemMutator creates a new item mutator
func NewItemMutator(store repositories.DocumentStore, logger *slog.Logger) svc.ItemMutator {
	return &itemMutator{
		store:  store,
		logger: logger,
	}
}

// Create inserts a new, not yet completed item authored by author
func (m *itemMutator) Create(ctx context.Context, req *svc.CreateItemRequest, author models.Actor) (string, error) {
	if err := validateCreateItem(req); err != nil {
		return "", invalid(err)
	}

	fields := newItemFields(req.Title, req.Description, author, req.Photo, now())
	id, err := m.store.Insert(ctx, Collection, fields)
	if err != nil {
		return "", classify("create item", err)
	}

	m.logger.Info("item created",
		"id", id,
		"author", author.Email,
		"with_photo", req.Photo != nil,
	)

	return id, nil
}

// Update writes title and description only
func (m *itemMutator) Update(ctx context.Context, id string, req *svc.UpdateItemRequest) error {
	if err := validateUpdateItem(req); err != nil {
		return invalid(err)
	}

	err := m.update(ctx, "update item", id, repositories.FieldUpdate{
		Set: repositories.Fields{
			fieldTitle:       req.Title,
			fieldDescription: req.Description,
		},
	})
	if err != nil {
		return err
	}

	m.logger.Info("item updated", "id", id)
	return nil
}

// SetCompleted marks an item done, or reverts it. Reverting also removes
// the item's photo.
func (m *itemMutator) SetCompleted(ctx context.Context, id string, completed bool) error {
	update := repositories.FieldUpdate{
		Set: repositories.Fields{fieldCompleted: completed},
	}
	if completed {
		update.Set[fieldCompletedAt] = repositories.FromTime(now())
	} else {
		update.Delete = []string{fieldCompletedAt, fieldPhotoURL, fieldPhotoMetadata}
	}

	if err := m.update(ctx, "set completion", id, update); err != nil {
		return err
	}

	m.logger.Info("item completion changed", "id", id, "completed", completed)
	return nil
}

// Delete removes the item document permanently
func (m *itemMutator) Delete(ctx context.Context, id string) error {
	if err := m.exists(ctx, id); err != nil {
		return err
	}

	if err := m.store.Delete(ctx, Collection, id); err != nil {
		return classify("delete item", err)
	}

	m.logger.Info("item deleted", "id", id)
	return nil
}

// AttachPhoto writes the photo reference, replacing any previous one
func (m *itemMutator) AttachPhoto(ctx context.Context, id string, photo *models.Photo) error {
	if err := validatePhoto(photo); err != nil {
		return invalid(err)
	}

	if err := m.update(ctx, "attach photo", id, repositories.FieldUpdate{Set: photoFields(photo)}); err != nil {
		return err
	}

	m.logger.Info("item photo attached", "id", id, "file_ref", photo.FileRef)
	return nil
}

// DetachPhoto clears the photo reference. The image stays on the host.
func (m *itemMutator) DetachPhoto(ctx context.Context, id string) error {
	err := m.update(ctx, "detach photo", id, repositories.FieldUpdate{
		Delete: []string{fieldPhotoURL, fieldPhotoMetadata},
	})
	if err != nil {
		return err
	}

	m.logger.Info("item photo detached", "id", id)
	return nil
}

// update confirms the item still exists, then applies the partial update.
// The read guards against a delete from another session racing this write.
func (m *itemMutator) update(ctx context.Context, op, id string, update repositories.FieldUpdate) error {
	if err := m.exists(ctx, id); err != nil {
		return err
	}
	if err := m.store.UpdateFields(ctx, Collection, id, update); err != nil {
		return classify(op, err)
	}
	return nil
}

func (m *itemMutator) exists(ctx context.Context, id string) error {
	if _, err := m.store.Get(ctx, Collection, id); err != nil {
		return classify("read item", err)
	}
	return nil
}
