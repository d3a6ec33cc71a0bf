package bucketlist

import "time"

// Item is one bucket-list challenge.
type Item struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Completed        bool       `json:"completed"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	SuggestedBy      string     `json:"suggested_by"`
	SuggestedByEmail string     `json:"suggested_by_email"`
	Photo            *Photo     `json:"photo,omitempty"`
	Comments         []Comment  `json:"comments"`
	// Revision is the store's optimistic-concurrency token for the document.
	Revision int64 `json:"revision"`
}

// OwnerEmail implements auth.OwnedResource.
func (i Item) OwnerEmail() string { return i.SuggestedByEmail }

// FindComment returns the comment with the given id and its index, or -1.
func (i Item) FindComment(commentID string) (Comment, int) {
	for idx, c := range i.Comments {
		if c.ID == commentID {
			return c, idx
		}
	}
	return Comment{}, -1
}

// Clone returns a deep copy so callers can never alias cached state.
func (i Item) Clone() Item {
	if i.CompletedAt != nil {
		t := *i.CompletedAt
		i.CompletedAt = &t
	}
	i.Photo = i.Photo.Clone()
	if i.Comments != nil {
		comments := make([]Comment, len(i.Comments))
		for idx, c := range i.Comments {
			comments[idx] = c.Clone()
		}
		i.Comments = comments
	}
	return i
}

// CloneItems deep-copies a list of items.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for idx, it := range items {
		out[idx] = it.Clone()
	}
	return out
}
