package bucketlist

import (
	"strings"
	"time"
)

// Comment is a remark embedded in exactly one Item. Its ID is only unique
// within the parent's comment collection.
type Comment struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Photo       *Photo    `json:"photo,omitempty"`
}

// OwnerEmail implements auth.OwnedResource.
func (c Comment) OwnerEmail() string { return c.AuthorEmail }

// IsEmpty reports a comment that has neither text nor a photo.
func (c Comment) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == "" && c.Photo == nil
}

// Clone returns a deep copy.
func (c Comment) Clone() Comment {
	c.Photo = c.Photo.Clone()
	return c
}
