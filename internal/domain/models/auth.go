package models

import (
	"bucketlist/internal/domain/models/bucketlist"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims represents the JWT claims issued by the identity provider.
type IdentityClaims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	UserMetadata         map[string]interface{} `json:"user_metadata"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	SessionID            string                 `json:"session_id"`
	IsAnonymous          bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *IdentityClaims) GetUserID() string {
	return c.Subject
}

// DisplayName returns the provider's display name for the user, if any.
// Google sign-in fills full_name; email sign-up may only fill name.
func (c *IdentityClaims) DisplayName() string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := c.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Actor converts the claims into the identity used for ownership checks.
func (c *IdentityClaims) Actor() bucketlist.Actor {
	return bucketlist.Actor{
		DisplayName: c.DisplayName(),
		Email:       c.Email,
	}
}
