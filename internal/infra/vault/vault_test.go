package vault

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"campus/config"
	"campus/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) repository.CredentialRepository {
	t.Helper()

	cfg := &config.Config{
		Vault: &config.VaultConfig{
			Path:   t.TempDir(),
			Secret: "test-secret",
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	v, err := New(cfg, logger)
	require.NoError(t, err)

	return v
}

func TestVault_TokenRoundTrip(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.StoreToken(ctx, "bearer-abc123"))

	token, err := v.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bearer-abc123", token)

	require.NoError(t, v.DeleteToken(ctx))

	_, err = v.LoadToken(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrTokenNotFound))
}

func TestVault_LoadToken_Absent(t *testing.T) {
	v := newTestVault(t)

	_, err := v.LoadToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrTokenNotFound))
}

func TestVault_DeleteToken_Idempotent(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.DeleteToken(ctx))
	require.NoError(t, v.DeleteToken(ctx))
}

func TestVault_PendingEmailRoundTrip(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	_, err := v.LoadPendingEmail(ctx)
	assert.True(t, errors.Is(err, repository.ErrPendingEmailNotFound))

	require.NoError(t, v.StorePendingEmail(ctx, "new@example.com"))

	email, err := v.LoadPendingEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", email)

	require.NoError(t, v.DeletePendingEmail(ctx))
	_, err = v.LoadPendingEmail(ctx)
	assert.True(t, errors.Is(err, repository.ErrPendingEmailNotFound))
}

func TestVault_ValuesEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Vault: &config.VaultConfig{Path: dir, Secret: "test-secret"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	v, err := New(cfg, logger)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, v.StoreToken(ctx, "bearer-abc123"))

	raw, err := os.ReadFile(filepath.Join(dir, "auth_token"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "bearer-abc123")
}

func TestVault_OverwriteReplacesValue(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.StoreToken(ctx, "first"))
	require.NoError(t, v.StoreToken(ctx, "second"))

	token, err := v.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}
