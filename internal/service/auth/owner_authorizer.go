package auth

import (
	"fmt"
	"strings"

	"bucketlist/internal/domain"
	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using the ownership
// key: an actor may modify what was created under the same email.
// Emails compare case-insensitively; identity providers normalize
// inconsistently.
type OwnerBasedAuthorizer struct{}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer() *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{}
}

var _ services.ResourceAuthorizer = (*OwnerBasedAuthorizer)(nil)

// Owns reports whether actor holds the resource's ownership key
func (a *OwnerBasedAuthorizer) Owns(actor models.Actor, resource services.OwnedResource) bool {
	if !actor.Authenticated() || resource == nil {
		return false
	}
	owner := resource.OwnerEmail()
	return owner != "" && strings.EqualFold(strings.TrimSpace(owner), strings.TrimSpace(actor.Email))
}

// CanModify checks ownership and returns a forbidden error otherwise
func (a *OwnerBasedAuthorizer) CanModify(actor models.Actor, resource services.OwnedResource) error {
	if !actor.Authenticated() {
		return fmt.Errorf("no signed-in user: %w", domain.ErrUnauthorized)
	}
	if !a.Owns(actor, resource) {
		return fmt.Errorf("only the author may change this: %w", domain.ErrForbidden)
	}
	return nil
}
