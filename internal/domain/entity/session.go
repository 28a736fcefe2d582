// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

// Status represents the authentication state of the current session.
type Status string

const (
	// StatusUnauthenticated indicates no valid credential is held.
	StatusUnauthenticated Status = "unauthenticated"
	// StatusPendingVerification indicates a signup completed but the email is not verified yet.
	StatusPendingVerification Status = "pending_verification"
	// StatusAuthenticated indicates a validated user and bearer token are held.
	StatusAuthenticated Status = "authenticated"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the Status is a valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnauthenticated, StatusPendingVerification, StatusAuthenticated:
		return true
	default:
		return false
	}
}

// Session is the process-wide record of authentication status, user identity,
// and bearer token. It is the single source of truth for identity decisions.
//
// Invariant: Token is non-empty if and only if Status is StatusAuthenticated,
// and User is non-nil if and only if Status is StatusAuthenticated. All
// transitions that touch Token or User must also set Status in the same update.
type Session struct {
	Status       Status // Current authentication state.
	User         *User  // Identity profile; nil unless Status is StatusAuthenticated.
	Token        string // Opaque bearer credential; empty unless Status is StatusAuthenticated.
	PendingEmail string // Email awaiting verification; set only while Status is StatusPendingVerification.
	IsLoggingOut bool   // Transitional flag, true for a bounded window after logout is invoked.
}

// Authenticated reports whether the session holds a validated identity.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Consistent reports whether the token/user/status invariant holds.
func (s Session) Consistent() bool {
	if s.Status == StatusAuthenticated {
		return s.Token != "" && s.User != nil
	}

	return s.Token == "" && s.User == nil
}
