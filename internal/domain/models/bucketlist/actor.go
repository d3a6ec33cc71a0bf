package bucketlist

import "strings"

// AnonymousName is the display snapshot used when the identity provider
// gives neither a display name nor an email.
const AnonymousName = "Anonymous"

// Actor is the authenticated user performing an intent.
type Actor struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Snapshot returns the display name stored on items and comments the actor creates.
func (a Actor) Snapshot() string {
	if name := strings.TrimSpace(a.DisplayName); name != "" {
		return name
	}
	if a.Email != "" {
		return a.Email
	}
	return AnonymousName
}

// Authenticated reports whether the actor carries an ownership key.
func (a Actor) Authenticated() bool {
	return a.Email != ""
}
