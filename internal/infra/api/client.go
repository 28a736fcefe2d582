// Package api implements the HTTP client for the backend identity endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"campus/config"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/service"

	"github.com/pkg/errors"
)

// Client talks to the identity backend. It holds the process-wide default
// Authorization header slot: once SetAuthToken is called, every request
// carries "Authorization: Bearer <token>" until ClearAuthToken.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.RWMutex
	authToken string
}

// NewClient is the constructor for the identity client.
func NewClient(cfg *config.Config, logger *slog.Logger) service.IdentityClient {
	return &Client{
		baseURL:    strings.TrimRight(cfg.API.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.API.Timeout},
		logger:     logger,
	}
}

// SetAuthToken installs the bearer token on the default header slot.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// ClearAuthToken removes the bearer token from the default header slot.
func (c *Client) ClearAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = ""
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type providerLoginRequest struct {
	Credential string `json:"credential"`
}

type loginResponse struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dob,omitempty"`
	Address     string `json:"address,omitempty"`
}

type registerResponse struct {
	Message string `json:"message"`
}

// Login exchanges email/password credentials for a user and token.
func (c *Client) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}

	return validateLoginResponse(&resp)
}

// LoginWithProvider exchanges an external provider credential for a user and token.
func (c *Client) LoginWithProvider(ctx context.Context, provider entity.ProviderType, credential string) (*service.LoginResult, error) {
	var resp loginResponse
	path := "/auth/" + provider.String()
	if err := c.do(ctx, http.MethodPost, path, providerLoginRequest{Credential: credential}, &resp); err != nil {
		return nil, err
	}

	return validateLoginResponse(&resp)
}

// Register creates an account awaiting email verification.
func (c *Client) Register(ctx context.Context, req *service.RegisterRequest) (string, error) {
	var resp registerResponse
	payload := registerRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

// Me fetches the authoritative identity profile for the current token.
func (c *Client) Me(ctx context.Context) (*entity.User, error) {
	var user entity.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateMe applies an explicit profile edit and returns the updated profile.
func (c *Client) UpdateMe(ctx context.Context, patch *service.UserPatch) (*entity.User, error) {
	var user entity.User
	if err := c.do(ctx, http.MethodPut, "/me", patch, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// validateLoginResponse enforces the both-or-error contract: a token without
// a user (or vice versa) is a hard login failure, not a partial success.
func validateLoginResponse(resp *loginResponse) (*service.LoginResult, error) {
	if resp.User == nil || resp.Token == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidServerResponse, "identity endpoint returned a partial login response")
	}

	return &service.LoginResult{User: resp.User, Token: resp.Token}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.authToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("identity endpoint rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))

		return c.statusError(path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", path)
	}

	return nil
}

func (c *Client) statusError(path string, status int) error {
	switch {
	case status == http.StatusUnauthorized && strings.HasPrefix(path, "/auth/"):
		return errors.Wrapf(domainerrors.ErrInvalidCredentials, "%s returned %d", path, status)
	case status == http.StatusUnauthorized:
		return errors.Wrapf(domainerrors.ErrSessionExpired, "%s returned %d", path, status)
	case status == http.StatusConflict:
		return errors.Wrapf(domainerrors.ErrEmailAlreadyRegistered, "%s returned %d", path, status)
	case status == http.StatusForbidden:
		return errors.Wrapf(domainerrors.ErrVerificationPending, "%s returned %d", path, status)
	default:
		return errors.Errorf("%s returned unexpected status %d", path, status)
	}
}
