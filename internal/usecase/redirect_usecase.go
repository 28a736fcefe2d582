// Package usecase contains the application-specific business rules.
package usecase

import "context"

// RedirectUsecase resolves the stored redirect target after an
// authentication entry point completes. All entry points (password, Google,
// Apple, email-verification link) perform the same resolution.
type RedirectUsecase interface {
	// ResolveAfterLogin reads the redirect memory once, clears it, and issues
	// exactly one navigation reset: to the recorded destination if present,
	// otherwise to the default landing surface.
	ResolveAfterLogin(ctx context.Context)
}
