// Package vault implements durable secure credential storage on the local
// filesystem. Each value is sealed with ChaCha20-Poly1305 under a key derived
// from the configured secret, and written to its own file inside a 0700
// directory.
package vault

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"

	"campus/config"
	"campus/internal/domain/repository"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	tokenKey        = "auth_token"
	pendingEmailKey = "pending_signup_email"

	dirPerm  = 0o700
	filePerm = 0o600
)

// Vault is a file-backed CredentialRepository.
type Vault struct {
	baseDir string
	aeadKey []byte
	logger  *slog.Logger
}

// New creates a credential vault rooted at the configured path.
// An empty path defaults to ~/.campus/credentials.
func New(cfg *config.Config, logger *slog.Logger) (repository.CredentialRepository, error) {
	baseDir := ""
	secret := ""
	if cfg.Vault != nil {
		baseDir = cfg.Vault.Path
		secret = cfg.Vault.Secret
	}

	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve home directory")
		}
		baseDir = filepath.Join(home, ".campus", "credentials")
	}

	if err := os.MkdirAll(baseDir, dirPerm); err != nil {
		return nil, errors.Wrap(err, "failed to create vault directory")
	}

	// The key is derived, not stored: losing the secret invalidates the vault,
	// which degrades to a clean unauthenticated start.
	key := sha256.Sum256([]byte(secret))

	logger.Debug("credential vault initialized", slog.String("baseDir", baseDir))

	return &Vault{
		baseDir: baseDir,
		aeadKey: key[:],
		logger:  logger,
	}, nil
}

// StoreToken persists the opaque bearer token.
func (v *Vault) StoreToken(ctx context.Context, token string) error {
	return v.store(ctx, tokenKey, token)
}

// LoadToken retrieves the stored bearer token.
func (v *Vault) LoadToken(ctx context.Context) (string, error) {
	value, err := v.load(ctx, tokenKey)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrap(repository.ErrTokenNotFound, "load token")
	}

	return value, err
}

// DeleteToken removes the stored bearer token.
func (v *Vault) DeleteToken(ctx context.Context) error {
	return v.delete(ctx, tokenKey)
}

// StorePendingEmail persists the email of a signup awaiting verification.
func (v *Vault) StorePendingEmail(ctx context.Context, email string) error {
	return v.store(ctx, pendingEmailKey, email)
}

// LoadPendingEmail retrieves the stored pending email.
func (v *Vault) LoadPendingEmail(ctx context.Context) (string, error) {
	value, err := v.load(ctx, pendingEmailKey)
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrap(repository.ErrPendingEmailNotFound, "load pending email")
	}

	return value, err
}

// DeletePendingEmail removes the stored pending email.
func (v *Vault) DeletePendingEmail(ctx context.Context) error {
	return v.delete(ctx, pendingEmailKey)
}

func (v *Vault) store(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	aead, err := chacha20poly1305.NewX(v.aeadKey)
	if err != nil {
		return errors.Wrap(err, "failed to construct cipher")
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "failed to generate nonce")
	}

	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(key))

	// Write-then-rename so a crash mid-write never leaves a torn value.
	path := v.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sealed, filePerm); err != nil {
		return errors.Wrapf(err, "failed to write %s", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "failed to commit %s", key)
	}

	return nil
}

func (v *Vault) load(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	sealed, err := os.ReadFile(v.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", os.ErrNotExist
		}

		return "", errors.Wrapf(err, "failed to read %s", key)
	}

	aead, err := chacha20poly1305.NewX(v.aeadKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to construct cipher")
	}

	if len(sealed) < aead.NonceSize() {
		return "", errors.Errorf("stored %s is truncated", key)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", errors.Wrapf(err, "failed to decrypt %s", key)
	}

	return string(plain), nil
}

func (v *Vault) delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	if err := os.Remove(v.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete %s", key)
	}

	return nil
}

func (v *Vault) path(key string) string {
	return filepath.Join(v.baseDir, key)
}
