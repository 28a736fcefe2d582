package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus/config"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) service.IdentityClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		API: &config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewClient(cfg, logger)
}

func TestClient_Login_Success(t *testing.T) {
	userID := uuid.New()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "me@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": userID.String(), "email": "me@example.com", "name": "Me"},
			"token": "tok-1",
		})
	}))

	result, err := client.Login(context.Background(), "me@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", result.Token)
	assert.Equal(t, userID, result.User.ID)
}

func TestClient_Login_TokenWithoutUserRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token": "tok-1"})
	}))

	_, err := client.Login(context.Background(), "me@example.com", "secret123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidServerResponse))
}

func TestClient_Login_UserWithoutTokenRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": uuid.New().String(), "email": "me@example.com"},
		})
	}))

	_, err := client.Login(context.Background(), "me@example.com", "secret123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidServerResponse))
}

func TestClient_Login_Unauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Login(context.Background(), "me@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestClient_Me_UsesAuthorizationHeader(t *testing.T) {
	var seenAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"id": uuid.New().String(), "email": "me@example.com"})
	}))

	client.SetAuthToken("tok-9")
	_, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", seenAuth)

	client.ClearAuthToken()
	_, err = client.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seenAuth)
}

func TestClient_Me_UnauthorizedMapsToSessionExpired(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	client.SetAuthToken("stale")
	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionExpired))
}

func TestClient_Register_ConflictMapsToAlreadyRegistered(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	_, err := client.Register(context.Background(), &service.RegisterRequest{
		Name: "Me", Email: "me@example.com", Password: "secret123",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyRegistered))
}

func TestClient_Register_ReturnsMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "verification email sent"})
	}))

	msg, err := client.Register(context.Background(), &service.RegisterRequest{
		Name: "Me", Email: "me@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "verification email sent", msg)
}
