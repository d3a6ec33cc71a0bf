package bucketlist

import (
	"io"

	models "bucketlist/internal/domain/models/bucketlist"
)

// CreateItemRequest represents a request to create an item
type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Photo is a pending reference uploaded before the item was submitted
	Photo *models.Photo `json:"photo,omitempty"`
}

// UpdateItemRequest carries the only two fields an edit may change
type UpdateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AddCommentRequest represents a new comment; text may be empty only when a photo is attached
type AddCommentRequest struct {
	Text  string        `json:"text"`
	Photo *models.Photo `json:"photo,omitempty"`
}

// EditCommentRequest represents a comment text change
type EditCommentRequest struct {
	Text string `json:"text"`
}

// UploadRequest is one image to hand to the image host
type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is what the image host returns for a stored image
type UploadResult struct {
	URL         string `json:"url"`
	FileID      string `json:"file_id"`
	DisplayName string `json:"name"`
	// Format is the stored file extension without the dot
	Format string `json:"format"`
}
