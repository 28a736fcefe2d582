// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"github.com/pkg/errors"
)

// Domain-specific errors for credential persistence.
var (
	// ErrTokenNotFound is returned when no bearer token is stored.
	ErrTokenNotFound = errors.New("no stored auth token")
	// ErrPendingEmailNotFound is returned when no pending signup email is stored.
	ErrPendingEmailNotFound = errors.New("no stored pending signup email")
)

// CredentialRepository is the durable secure storage for the session's
// credentials. Absence of a stored token is a legitimate terminal state, not
// an error condition for the caller: it is reported with ErrTokenNotFound so
// the session store can settle on unauthenticated.
//
// Only the session store is allowed to write through this interface, and
// every write must be paired with the matching update of the HTTP client's
// default credential in the same logical operation.
type CredentialRepository interface {
	// StoreToken persists the opaque bearer token.
	StoreToken(ctx context.Context, token string) error

	// LoadToken retrieves the stored bearer token, or ErrTokenNotFound.
	LoadToken(ctx context.Context) (string, error)

	// DeleteToken removes the stored bearer token. Deleting an absent token is not an error.
	DeleteToken(ctx context.Context) error

	// StorePendingEmail persists the email address of a signup awaiting verification.
	StorePendingEmail(ctx context.Context, email string) error

	// LoadPendingEmail retrieves the stored pending email, or ErrPendingEmailNotFound.
	LoadPendingEmail(ctx context.Context) (string, error)

	// DeletePendingEmail removes the stored pending email. Deleting an absent value is not an error.
	DeletePendingEmail(ctx context.Context) error
}
