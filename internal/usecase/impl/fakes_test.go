package impl

import (
	"context"
	"sync"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"

	"github.com/pkg/errors"
)

// fakeIdentityClient is an in-memory IdentityClient test double.
type fakeIdentityClient struct {
	mu    sync.Mutex
	token string

	loginResult    *service.LoginResult
	loginErr       error
	providerResult *service.LoginResult
	providerErr    error
	registerMsg    string
	registerErr    error
	meUser         *entity.User
	meErr          error
	meGate         chan struct{} // When set, Me blocks until the gate closes.
	meStarted      chan struct{} // When set, receives a signal as a gated Me call begins.
	updateUser     *entity.User
	updateErr      error

	loginCalls    int
	providerCalls []entity.ProviderType
	meCalls       int
}

func (f *fakeIdentityClient) Login(_ context.Context, _, _ string) (*service.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++

	return f.loginResult, f.loginErr
}

func (f *fakeIdentityClient) LoginWithProvider(_ context.Context, provider entity.ProviderType, _ string) (*service.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providerCalls = append(f.providerCalls, provider)

	return f.providerResult, f.providerErr
}

func (f *fakeIdentityClient) Register(_ context.Context, _ *service.RegisterRequest) (string, error) {
	return f.registerMsg, f.registerErr
}

func (f *fakeIdentityClient) Me(_ context.Context) (*entity.User, error) {
	f.mu.Lock()
	gate := f.meGate
	started := f.meStarted
	f.mu.Unlock()
	if gate != nil {
		if started != nil {
			select {
			case started <- struct{}{}:
			default:
			}
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++

	return f.meUser, f.meErr
}

func (f *fakeIdentityClient) UpdateMe(_ context.Context, _ *service.UserPatch) (*entity.User, error) {
	return f.updateUser, f.updateErr
}

func (f *fakeIdentityClient) SetAuthToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeIdentityClient) ClearAuthToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
}

func (f *fakeIdentityClient) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.token
}

// fakeCredentialStore is an in-memory CredentialRepository test double.
type fakeCredentialStore struct {
	mu           sync.Mutex
	token        string
	pendingEmail string
	storeErr     error
}

func (f *fakeCredentialStore) StoreToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	f.token = token

	return nil
}

func (f *fakeCredentialStore) LoadToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return "", repository.ErrTokenNotFound
	}

	return f.token, nil
}

func (f *fakeCredentialStore) DeleteToken(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""

	return nil
}

func (f *fakeCredentialStore) StorePendingEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingEmail = email

	return nil
}

func (f *fakeCredentialStore) LoadPendingEmail(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingEmail == "" {
		return "", repository.ErrPendingEmailNotFound
	}

	return f.pendingEmail, nil
}

func (f *fakeCredentialStore) DeletePendingEmail(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingEmail = ""

	return nil
}

func (f *fakeCredentialStore) storedToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.token
}

// fakeInspector is an OAuthAuthService test double.
type fakeInspector struct {
	provider entity.ProviderType
	user     *service.OAuthUser
	err      error
	calls    int
}

func (f *fakeInspector) InspectIDToken(_ context.Context, _ string) (*service.OAuthUser, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil {
		return f.user, nil
	}

	return &service.OAuthUser{Email: "someone@example.com"}, nil
}

func (f *fakeInspector) Provider() entity.ProviderType {
	return f.provider
}

// navCall records a single navigation reset.
type navCall struct {
	op     string
	target string
	params map[string]any
}

// fakeNavigator records every reset issued against it.
type fakeNavigator struct {
	mu    sync.Mutex
	calls []navCall
}

func (f *fakeNavigator) ResetToTab(tab string) {
	f.record(navCall{op: "tab", target: tab})
}

func (f *fakeNavigator) ResetToStack(screen string, params map[string]any) {
	f.record(navCall{op: "stack", target: screen, params: params})
}

func (f *fakeNavigator) ResetAuth(screen string, params map[string]any) {
	f.record(navCall{op: "auth", target: screen, params: params})
}

func (f *fakeNavigator) ResetLanding() {
	f.record(navCall{op: "landing"})
}

func (f *fakeNavigator) Current() service.Route {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return service.Route{}
	}
	last := f.calls[len(f.calls)-1]

	return service.Route{Name: last.target, Params: last.params}
}

func (f *fakeNavigator) record(call navCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeNavigator) recorded() []navCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]navCall(nil), f.calls...)
}

var errFakeRejected = errors.New("fake: rejected")
