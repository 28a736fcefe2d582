package service

import (
	"context"

	"campus/internal/domain/entity"
)

// OAuthUser represents user information extracted from an external provider credential.
type OAuthUser struct {
	ID            string              // Provider-specific user ID (e.g., Google's 'sub' claim)
	Email         string              // User's email address
	Name          string              // User's display name
	Provider      entity.ProviderType // The provider (google, apple)
	AvatarURL     string              // URL to user's profile picture
	EmailVerified bool                // Whether the email is verified by the provider
}

// OAuthAuthService inspects an external provider ID token. The production
// login path is backend-verified: the raw credential is forwarded to the
// identity endpoint, which performs the cryptographic verification and issues
// the session. This service only checks the token's structure, issuer,
// audience and expiry so that obviously broken credentials fail fast without
// a network round trip, and maps the claims to an OAuthUser.
type OAuthAuthService interface {
	// InspectIDToken structurally validates the provider credential and
	// returns the user information carried in its claims.
	InspectIDToken(ctx context.Context, idToken string) (*OAuthUser, error)

	// Provider returns the provider this service understands.
	Provider() entity.ProviderType
}
