// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campus/config"
	deliverycontext "campus/internal/delivery/context"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"
	"campus/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const subscriberBuffer = 8

// sessionService implements the SessionUsecase interface. It is the single
// writer of the session record, the durable credential store, and the HTTP
// client's default header; those three are only ever updated together.
type sessionService struct {
	identity    service.IdentityClient
	credentials repository.CredentialRepository
	googleAuth  service.OAuthAuthService
	appleAuth   service.OAuthAuthService
	validate    *validator.Validate
	logoutGrace time.Duration
	logger      *slog.Logger

	mu          sync.Mutex
	session     entity.Session
	redirect    *entity.RedirectTarget
	initDone    bool
	logoutDone  chan struct{}
	logoutTimer *time.Timer
	subscribers map[int]chan entity.Session
	nextSubID   int
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	Identity    service.IdentityClient
	Credentials repository.CredentialRepository
	GoogleAuth  service.OAuthAuthService `name:"google"`
	AppleAuth   service.OAuthAuthService `name:"apple"`
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	grace := 100 * time.Millisecond
	if params.Config != nil && params.Config.Session != nil && params.Config.Session.LogoutGrace > 0 {
		grace = params.Config.Session.LogoutGrace
	}

	return &sessionService{
		identity:    params.Identity,
		credentials: params.Credentials,
		googleAuth:  params.GoogleAuth,
		appleAuth:   params.AppleAuth,
		validate:    validator.New(),
		logoutGrace: grace,
		logger:      params.Logger,
		session:     entity.Session{Status: entity.StatusUnauthenticated},
		subscribers: map[int]chan entity.Session{},
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Init rehydrates the session from durable storage.
func (srv *sessionService) Init(ctx context.Context) error {
	srv.mu.Lock()
	if srv.initDone {
		srv.mu.Unlock()

		return nil
	}
	srv.initDone = true
	srv.mu.Unlock()

	srv.log(ctx).Info("Rehydrating session from durable storage")

	token, err := srv.credentials.LoadToken(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			// Unreadable storage folds into unauthenticated, same as absence.
			srv.log(ctx).Warn("Failed to read stored token", slog.Any("error", err))
		}
		srv.settleUnauthenticated(ctx)

		return nil
	}

	srv.identity.SetAuthToken(token)

	user, err := srv.identity.Me(ctx)
	if err != nil {
		srv.log(ctx).Warn("Stored token failed revalidation", slog.Any("error", err))
		srv.discardCredential(ctx)
		srv.settleUnauthenticated(ctx)

		return nil
	}

	srv.setSession(entity.Session{
		Status: entity.StatusAuthenticated,
		User:   user,
		Token:  token,
	})
	srv.log(ctx).Info("Session rehydrated", slog.Any("userID", user.ID))

	return nil
}

// settleUnauthenticated finishes a failed or empty rehydrate. A stored
// pending-signup email survives restarts and keeps the mid-signup state.
func (srv *sessionService) settleUnauthenticated(ctx context.Context) {
	pendingEmail, err := srv.credentials.LoadPendingEmail(ctx)
	if err != nil || pendingEmail == "" {
		srv.setSession(entity.Session{Status: entity.StatusUnauthenticated})

		return
	}

	srv.setSession(entity.Session{
		Status:       entity.StatusPendingVerification,
		PendingEmail: pendingEmail,
	})
}

// Current returns a snapshot of the session.
func (srv *sessionService) Current() entity.Session {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.session
}

// Subscribe registers a watcher for session snapshots.
func (srv *sessionService) Subscribe() (<-chan entity.Session, func()) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	id := srv.nextSubID
	srv.nextSubID++
	ch := make(chan entity.Session, subscriberBuffer)
	srv.subscribers[id] = ch

	cancel := func() {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		if sub, ok := srv.subscribers[id]; ok {
			delete(srv.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// LoginWithCredentials performs a password login.
func (srv *sessionService) LoginWithCredentials(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	srv.log(ctx).Debug("Starting credential login", slog.String("email", input.Email))

	result, err := srv.identity.Login(ctx, input.Email, input.Password)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "login failed")
	}

	if err := srv.adoptCredential(ctx, result); err != nil {
		return nil, err
	}
	srv.log(ctx).Info("User logged in", slog.Any("userID", result.User.ID))

	return &usecase.LoginOutput{User: result.User, Token: result.Token}, nil
}

// Signup registers an account awaiting email verification. No token is ever
// requested or stored during signup.
func (srv *sessionService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	srv.log(ctx).Info("Starting signup", slog.String("email", input.Email))

	message, err := srv.identity.Register(ctx, &service.RegisterRequest{
		Name:        input.Name,
		Email:       input.Email,
		Password:    input.Password,
		DateOfBirth: input.DateOfBirth,
		Address:     input.Address,
	})
	if err != nil {
		srv.log(ctx).Warn("Signup failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "signup failed")
	}

	if err := srv.credentials.StorePendingEmail(ctx, input.Email); err != nil {
		srv.log(ctx).Warn("Failed to persist pending signup email", slog.Any("error", err))
	}

	srv.setSession(entity.Session{
		Status:       entity.StatusPendingVerification,
		PendingEmail: input.Email,
	})
	srv.log(ctx).Debug("Signup accepted", slog.String("email", input.Email), slog.String("message", message))

	return &usecase.SignupOutput{Email: input.Email}, nil
}

// LoginWithGoogle performs a backend-verified Google Sign-In.
func (srv *sessionService) LoginWithGoogle(ctx context.Context, idToken string) (*usecase.LoginOutput, error) {
	return srv.loginWithProvider(ctx, srv.googleAuth, idToken)
}

// LoginWithApple performs a backend-verified Sign in with Apple.
func (srv *sessionService) LoginWithApple(ctx context.Context, identityToken string) (*usecase.LoginOutput, error) {
	return srv.loginWithProvider(ctx, srv.appleAuth, identityToken)
}

func (srv *sessionService) loginWithProvider(ctx context.Context, inspector service.OAuthAuthService, credential string) (*usecase.LoginOutput, error) {
	provider := inspector.Provider()
	srv.log(ctx).Info("Starting provider login", slog.String("provider", provider.String()))

	// Fail fast on structurally broken provider credentials; the backend
	// performs the cryptographic verification and issues the session.
	if _, err := inspector.InspectIDToken(ctx, credential); err != nil {
		return nil, errors.Wrapf(err, "%s credential rejected", provider)
	}

	result, err := srv.identity.LoginWithProvider(ctx, provider, credential)
	if err != nil {
		srv.log(ctx).Warn("Provider login failed", slog.String("provider", provider.String()), slog.Any("error", err))

		return nil, errors.Wrapf(err, "%s login failed", provider)
	}

	if err := srv.adoptCredential(ctx, result); err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Provider login completed", slog.String("provider", provider.String()), slog.Any("userID", result.User.ID))

	return &usecase.LoginOutput{User: result.User, Token: result.Token}, nil
}

// CompleteEmailVerification adopts the token minted by the backend's
// email-verified redirect. Verification already happened server-side before
// this token existed, so no verification endpoint is ever called here.
func (srv *sessionService) CompleteEmailVerification(ctx context.Context, authToken string) (*usecase.LoginOutput, error) {
	srv.log(ctx).Info("Adopting token from email verification link")

	srv.identity.SetAuthToken(authToken)

	user, err := srv.identity.Me(ctx)
	if err != nil {
		srv.identity.ClearAuthToken()
		srv.log(ctx).Warn("Verification token failed revalidation", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to adopt verification token")
	}

	if err := srv.adoptCredential(ctx, &service.LoginResult{User: user, Token: authToken}); err != nil {
		return nil, err
	}

	if err := srv.credentials.DeletePendingEmail(ctx); err != nil {
		srv.log(ctx).Warn("Failed to clear pending signup email", slog.Any("error", err))
	}

	return &usecase.LoginOutput{User: user, Token: authToken}, nil
}

// FetchMe refreshes the profile from the identity endpoint. The session may
// change while the call is in flight, so both outcomes apply only if the
// refresh still belongs to the credential it started with.
func (srv *sessionService) FetchMe(ctx context.Context) (*entity.User, error) {
	srv.mu.Lock()
	if !srv.session.Authenticated() {
		srv.mu.Unlock()

		return nil, errors.Wrap(domainerrors.ErrNotAuthenticated, "fetch profile")
	}
	token := srv.session.Token
	srv.mu.Unlock()

	user, err := srv.identity.Me(ctx)
	if err != nil {
		// The endpoint rejected the token: treat as an authoritative logout,
		// whatever the underlying cause.
		srv.log(ctx).Warn("Profile refresh failed, clearing session", slog.Any("error", err))

		srv.mu.Lock()
		stale := srv.session.Authenticated() && srv.session.Token == token
		if stale {
			srv.session = entity.Session{Status: entity.StatusUnauthenticated}
		}
		snapshot := srv.session
		srv.mu.Unlock()

		if stale {
			srv.notify(snapshot)
			srv.discardCredential(ctx)
		}

		return nil, errors.Wrap(err, "failed to refresh profile")
	}

	srv.mu.Lock()
	if !srv.session.Authenticated() || srv.session.Token != token {
		// A logout or a new login won the race; this result is for a
		// credential that no longer exists.
		srv.mu.Unlock()

		return nil, errors.Wrap(domainerrors.ErrNotAuthenticated, "session ended during profile refresh")
	}
	srv.session.User = user // Replaced wholesale, never merged.
	snapshot := srv.session
	srv.mu.Unlock()
	srv.notify(snapshot)

	return user, nil
}

// UpdateUser applies an explicit local profile edit optimistically.
func (srv *sessionService) UpdateUser(ctx context.Context, patch *service.UserPatch) (*entity.User, error) {
	srv.mu.Lock()
	if !srv.session.Authenticated() {
		srv.mu.Unlock()

		return nil, errors.Wrap(domainerrors.ErrNotAuthenticated, "update profile")
	}
	previous := srv.session.User
	optimistic := applyPatch(previous, patch)
	srv.session.User = optimistic
	snapshot := srv.session
	srv.mu.Unlock()
	srv.notify(snapshot)

	user, err := srv.identity.UpdateMe(ctx, patch)
	if err != nil {
		// Roll the optimistic edit back; the server copy stays authoritative.
		srv.mu.Lock()
		if srv.session.Authenticated() {
			srv.session.User = previous
			snapshot = srv.session
		}
		srv.mu.Unlock()
		srv.notify(snapshot)

		return nil, errors.Wrap(err, "failed to update profile")
	}

	srv.mu.Lock()
	if srv.session.Authenticated() {
		srv.session.User = user
		snapshot = srv.session
	}
	srv.mu.Unlock()
	srv.notify(snapshot)

	return user, nil
}

func applyPatch(user *entity.User, patch *service.UserPatch) *entity.User {
	edited := *user
	if patch.Name != nil {
		edited.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		edited.AvatarURL = *patch.AvatarURL
	}
	if patch.Bio != nil {
		edited.Bio = *patch.Bio
	}

	return &edited
}

// Logout destroys the session and opens the IsLoggingOut window.
func (srv *sessionService) Logout(ctx context.Context) (<-chan struct{}, error) {
	srv.mu.Lock()
	if srv.session.IsLoggingOut && srv.logoutDone != nil {
		done := srv.logoutDone
		srv.mu.Unlock()

		return done, nil
	}
	srv.mu.Unlock()

	srv.log(ctx).Info("Logging out")

	srv.discardCredential(ctx)
	if err := srv.credentials.DeletePendingEmail(ctx); err != nil {
		srv.log(ctx).Warn("Failed to clear pending signup email", slog.Any("error", err))
	}

	srv.mu.Lock()
	done := make(chan struct{})
	srv.logoutDone = done
	srv.redirect = nil // A remembered destination must not survive a logout.
	srv.session = entity.Session{
		Status:       entity.StatusUnauthenticated,
		IsLoggingOut: true,
	}
	snapshot := srv.session
	// Fallback: if no guard is mounted to confirm the forced reset, the
	// window still closes after the configured grace period.
	srv.logoutTimer = time.AfterFunc(srv.logoutGrace, srv.ConfirmLogoutHandled)
	srv.mu.Unlock()
	srv.notify(snapshot)

	return done, nil
}

// ConfirmLogoutHandled ends the IsLoggingOut window.
func (srv *sessionService) ConfirmLogoutHandled() {
	srv.mu.Lock()
	if !srv.session.IsLoggingOut {
		srv.mu.Unlock()

		return
	}
	if srv.logoutTimer != nil {
		srv.logoutTimer.Stop()
		srv.logoutTimer = nil
	}
	srv.session.IsLoggingOut = false
	done := srv.logoutDone
	srv.logoutDone = nil
	snapshot := srv.session
	srv.mu.Unlock()

	if done != nil {
		close(done)
	}
	srv.notify(snapshot)
}

// SetRedirectTarget records the screen to resume after authentication.
func (srv *sessionService) SetRedirectTarget(ctx context.Context, target entity.RedirectTarget) {
	normalized := target.Normalize()

	srv.mu.Lock()
	srv.redirect = &normalized
	srv.mu.Unlock()

	srv.log(ctx).Debug("Redirect target stored", slog.String("name", normalized.Name))
}

// ClearRedirectTarget discards any stored redirect target.
func (srv *sessionService) ClearRedirectTarget() {
	srv.mu.Lock()
	srv.redirect = nil
	srv.mu.Unlock()
}

// TakeRedirectTarget returns and clears the stored target.
func (srv *sessionService) TakeRedirectTarget() (entity.RedirectTarget, bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.redirect == nil {
		return entity.RedirectTarget{}, false
	}

	target := *srv.redirect
	srv.redirect = nil

	return target, true
}

// adoptCredential persists the token, installs it on the HTTP client, and
// applies the authenticated session in one logical operation.
func (srv *sessionService) adoptCredential(ctx context.Context, result *service.LoginResult) error {
	if result.User == nil || result.Token == "" {
		return errors.Wrap(domainerrors.ErrInvalidServerResponse, "refusing partial credential")
	}

	if err := srv.credentials.StoreToken(ctx, result.Token); err != nil {
		srv.identity.ClearAuthToken()

		return errors.Wrap(err, "failed to persist token")
	}
	srv.identity.SetAuthToken(result.Token)

	srv.setSession(entity.Session{
		Status: entity.StatusAuthenticated,
		User:   result.User,
		Token:  result.Token,
	})

	return nil
}

// discardCredential removes the token from durable storage and the HTTP
// client together. Session state is the caller's responsibility.
func (srv *sessionService) discardCredential(ctx context.Context) {
	if err := srv.credentials.DeleteToken(ctx); err != nil {
		srv.log(ctx).Warn("Failed to delete stored token", slog.Any("error", err))
	}
	srv.identity.ClearAuthToken()
}

// setSession applies an atomic session transition and notifies subscribers.
func (srv *sessionService) setSession(session entity.Session) {
	srv.mu.Lock()
	srv.session = session
	srv.mu.Unlock()
	srv.notify(session)
}

func (srv *sessionService) notify(snapshot entity.Session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	for _, ch := range srv.subscribers {
		select {
		case ch <- snapshot:
		default:
			// A slow watcher drops intermediate snapshots; it will observe
			// the final state on its next receive.
		}
	}
}
