// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"campus/internal/domain/entity"
	"campus/internal/domain/service"
)

// --- Input DTOs ---

// LoginInput defines the data required for a credential login.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// SignupInput defines the data required to register a new account.
type SignupInput struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=8"`
	DateOfBirth string `validate:"omitempty,datetime=2006-01-02"`
	Address     string
}

// --- Output DTOs ---

// LoginOutput returns the authenticated identity after a successful login.
// The caller, not the session store, performs the post-login navigation using
// the stored redirect target.
type LoginOutput struct {
	User  *entity.User
	Token string
}

// SignupOutput returns the email now awaiting verification.
type SignupOutput struct {
	Email string
}

// SessionUsecase is the session store: the single owner of authentication
// status, the current user, the bearer token, and the redirect memory.
//
// Every transition that touches the token also updates the durable credential
// store and the HTTP client's default header in the same logical operation;
// no other component is allowed to touch either.
type SessionUsecase interface {
	// Init rehydrates the session from durable storage at process start. It
	// settles on authenticated or unauthenticated, never errors for transport
	// failures, and is idempotent. It must complete before any guard makes
	// its first gating decision.
	Init(ctx context.Context) error

	// Current returns a snapshot of the session.
	Current() entity.Session

	// Subscribe registers a watcher for session snapshots. The returned
	// cancel function must be called on unmount.
	Subscribe() (<-chan entity.Session, func())

	// LoginWithCredentials performs a password login.
	LoginWithCredentials(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Signup registers an account; the session moves to pending_verification
	// and no token is held.
	Signup(ctx context.Context, input *SignupInput) (*SignupOutput, error)

	// LoginWithGoogle performs a backend-verified Google Sign-In using the
	// provider's ID token.
	LoginWithGoogle(ctx context.Context, idToken string) (*LoginOutput, error)

	// LoginWithApple performs a backend-verified Sign in with Apple using the
	// provider's identity token.
	LoginWithApple(ctx context.Context, identityToken string) (*LoginOutput, error)

	// CompleteEmailVerification adopts the token delivered by the backend's
	// email-verified redirect and rehydrates the session from it. It never
	// calls a verification endpoint.
	CompleteEmailVerification(ctx context.Context, authToken string) (*LoginOutput, error)

	// FetchMe refreshes the profile from the identity endpoint. A rejection
	// is an authoritative logout: credentials are cleared everywhere and the
	// error is re-thrown.
	FetchMe(ctx context.Context) (*entity.User, error)

	// UpdateUser applies an explicit local profile edit.
	UpdateUser(ctx context.Context, patch *service.UserPatch) (*entity.User, error)

	// Logout destroys the session. The returned channel closes once a guard
	// confirms the forced navigation reset (or the bounded grace window
	// elapses), at which point IsLoggingOut is false again.
	Logout(ctx context.Context) (<-chan struct{}, error)

	// ConfirmLogoutHandled signals that the post-logout navigation reset has
	// been issued, ending the IsLoggingOut window early.
	ConfirmLogoutHandled()

	// SetRedirectTarget records the screen to resume after authentication.
	// A later call overwrites the previous target.
	SetRedirectTarget(ctx context.Context, target entity.RedirectTarget)

	// ClearRedirectTarget discards any stored redirect target.
	ClearRedirectTarget()

	// TakeRedirectTarget returns and clears the stored target (read-once).
	TakeRedirectTarget() (entity.RedirectTarget, bool)
}
