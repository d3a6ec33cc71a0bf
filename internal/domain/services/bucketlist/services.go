package bucketlist

import (
	"context"

	models "bucketlist/internal/domain/models/bucketlist"
)

// Loader materializes the full item list from the document store
type Loader interface {
	// LoadAll reads every item document in store order
	LoadAll(ctx context.Context) ([]models.Item, error)
}

// ItemMutator creates, updates and deletes single item documents.
// It does not check ownership; callers gate owner-only operations.
type ItemMutator interface {
	Create(ctx context.Context, req *CreateItemRequest, author models.Actor) (string, error)
	Update(ctx context.Context, id string, req *UpdateItemRequest) error
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
	AttachPhoto(ctx context.Context, id string, photo *models.Photo) error
	DetachPhoto(ctx context.Context, id string) error
}

// CommentMutator edits the comment collection embedded in an item.
// Operations taking cached require the parent item from the caller's local list.
type CommentMutator interface {
	Add(ctx context.Context, itemID string, req *AddCommentRequest, author models.Actor) (*models.Comment, error)
	Edit(ctx context.Context, cached *models.Item, commentID string, req *EditCommentRequest) error
	Remove(ctx context.Context, cached *models.Item, commentID string) error
	AttachPhoto(ctx context.Context, cached *models.Item, commentID string, photo *models.Photo) error
	DetachPhoto(ctx context.Context, cached *models.Item, commentID string) error
}

// ImageHost stores uploaded images and returns stable URLs
type ImageHost interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
}

// ChangePublisher announces that the collection changed so other sessions can refresh
type ChangePublisher interface {
	Publish(change Change)
}

// Change types published after successful mutations
const (
	ChangeItemCreated          = "item.created"
	ChangeItemUpdated          = "item.updated"
	ChangeItemDeleted          = "item.deleted"
	ChangeItemCompleted        = "item.completed"
	ChangeItemReopened         = "item.reopened"
	ChangeItemPhotoAttached    = "item.photo_attached"
	ChangeItemPhotoDetached    = "item.photo_detached"
	ChangeCommentAdded         = "comment.added"
	ChangeCommentEdited        = "comment.edited"
	ChangeCommentRemoved       = "comment.removed"
	ChangeCommentPhotoAttached = "comment.photo_attached"
	ChangeCommentPhotoDetached = "comment.photo_detached"
)

// Change describes a successful mutation; it carries no item state
type Change struct {
	Type   string `json:"type"`
	ItemID string `json:"item_id,omitempty"`
	Actor  string `json:"actor"`
}
