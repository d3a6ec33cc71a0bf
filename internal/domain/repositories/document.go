package repositories

import (
	"context"
	"time"
)

// Fields is the field map of a stored document. Values must be JSON
// compatible; timestamps travel as Timestamp.
type Fields map[string]interface{}

// Timestamp is the store's native temporal type. Callers convert to and
// from time.Time at the read/write boundary.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// FromTime converts a time.Time into the store representation (UTC).
func FromTime(t time.Time) Timestamp {
	t = t.UTC()
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time converts the store representation back into a time.Time (UTC).
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// IsZero reports whether the timestamp was never set.
func (ts Timestamp) IsZero() bool {
	return ts.Seconds == 0 && ts.Nanos == 0
}

// Document is one stored document. Revision increases by one on every write.
type Document struct {
	ID       string
	Revision int64
	Fields   Fields
}

// FieldUpdate is a partial update: Set keys are merged at the top level,
// Delete keys are removed. Keys absent from both are never touched.
type FieldUpdate struct {
	Set    Fields
	Delete []string
	// ExpectedRevision, when non-nil, rejects the write with
	// domain.ErrRevisionConflict unless the stored revision matches.
	ExpectedRevision *int64
}

// DocumentStore is the remote document database collaborator.
// Missing documents are reported with domain.ErrNotFound.
type DocumentStore interface {
	// ListAll returns every document of the collection in store order
	ListAll(ctx context.Context, collection string) ([]Document, error)

	// Insert stores a new document and returns its assigned ID
	Insert(ctx context.Context, collection string, fields Fields) (string, error)

	// Get returns one document
	Get(ctx context.Context, collection, id string) (*Document, error)

	// UpdateFields applies a partial field update
	UpdateFields(ctx context.Context, collection, id string, update FieldUpdate) error

	// Delete removes a document permanently
	Delete(ctx context.Context, collection, id string) error

	// ArrayAppend atomically appends value to the array stored under field
	ArrayAppend(ctx context.Context, collection, id, field string, value interface{}) error

	// ArrayRemove atomically removes every object element of the array under
	// field whose key equals value. Remaining elements keep their order.
	ArrayRemove(ctx context.Context, collection, id, field, key, value string) error
}
