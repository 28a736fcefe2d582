// Package service defines interfaces for infrastructure capabilities consumed
// by the use cases. These abstract the transport details away from the
// application logic.
package service

import (
	"context"

	"campus/internal/domain/entity"
)

// LoginResult carries the identity endpoint's answer to a successful
// authentication call. Both fields are guaranteed non-zero by the client;
// a response missing either is rejected before it reaches the caller.
type LoginResult struct {
	User  *entity.User
	Token string
}

// RegisterRequest is the payload of an account registration call.
type RegisterRequest struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth string // Optional, ISO 8601 date.
	Address     string // Optional.
}

// UserPatch describes an explicit local profile edit. Nil fields are left
// untouched by the identity endpoint.
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// IdentityClient consumes the backend identity endpoints. It owns the
// process-wide default Authorization header slot: SetAuthToken and
// ClearAuthToken mutate the credential attached to every subsequent call.
type IdentityClient interface {
	// Login exchanges email/password credentials for a user and token.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// LoginWithProvider exchanges a backend-verified external provider
	// credential (a Google ID token or Apple identity token) for a user and
	// token, under the same both-or-error contract as Login.
	LoginWithProvider(ctx context.Context, provider entity.ProviderType, credential string) (*LoginResult, error)

	// Register creates an account awaiting email verification. No token is
	// issued; the response carries a human-readable confirmation message.
	Register(ctx context.Context, req *RegisterRequest) (string, error)

	// Me fetches the authoritative identity profile for the current token.
	Me(ctx context.Context) (*entity.User, error)

	// UpdateMe applies an explicit profile edit and returns the updated profile.
	UpdateMe(ctx context.Context, patch *UserPatch) (*entity.User, error)

	// SetAuthToken installs the bearer token on the process-wide default header slot.
	SetAuthToken(token string)

	// ClearAuthToken removes the bearer token from the default header slot.
	ClearAuthToken()
}
