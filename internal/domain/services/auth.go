package services

import models "bucketlist/internal/domain/models/bucketlist"

// OwnedResource is anything gated by an ownership key.
type OwnedResource interface {
	OwnerEmail() string
}

// ResourceAuthorizer decides whether an actor may modify a resource.
//
// Services consult the authorizer before owner-only operations; the
// mutators underneath never re-check.
type ResourceAuthorizer interface {
	// CanModify returns nil when actor may edit or delete resource,
	// otherwise an error wrapping domain.ErrForbidden
	CanModify(actor models.Actor, resource OwnedResource) error

	// Owns reports the same decision as a boolean for view projection
	Owns(actor models.Actor, resource OwnedResource) bool
}
