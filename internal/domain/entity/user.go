// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity profile of the authenticated person. It is replaced
// wholesale on every authoritative fetch from the identity endpoint; partial
// updates are only ever applied for explicit local edits.
type User struct {
	ID        uuid.UUID `json:"id"`        // The Global Unique Identifier (GUID) for the user.
	Email     string    `json:"email"`     // The user's primary contact email, used as the login identifier.
	Name      string    `json:"name"`      // The user's display name or real name.
	AvatarURL string    `json:"avatarUrl"` // URL of the user's profile picture.
	Bio       string    `json:"bio"`       // Short free-form self description.
	CreatedAt time.Time `json:"createdAt"` // Timestamp of when this user account was created.
	UpdatedAt time.Time `json:"updatedAt"` // Timestamp of the last modification to this user's data.
}

// ProviderType identifies an external authentication provider.
type ProviderType string

const (
	// ProviderTypeEmail indicates email/password credentials.
	ProviderTypeEmail ProviderType = "email"
	// ProviderTypeGoogle indicates Google Sign-In.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeApple indicates Sign in with Apple.
	ProviderTypeApple ProviderType = "apple"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}
