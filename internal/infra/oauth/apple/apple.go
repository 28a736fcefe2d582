// Package apple implements structural inspection of Apple identity tokens.
package apple

import (
	"context"
	"log/slog"
	"time"

	"campus/config"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const appleIssuer = "https://appleid.apple.com"

// identityTokenClaims are the Apple identity token claims the app cares
// about. Apple does not embed a display name; it arrives separately in the
// authorization payload on first sign-in.
type identityTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"` // Apple sends either a bool or the string "true".
	jwt.RegisteredClaims
}

// AuthService inspects Apple identity tokens before they are forwarded to the
// backend for cryptographic verification.
type AuthService struct {
	bundleID string
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService is the constructor for the Apple inspector.
func NewAuthService(cfg *config.Config, logger *slog.Logger) service.OAuthAuthService {
	bundleID := ""
	if cfg.AppleOAuth != nil {
		bundleID = cfg.AppleOAuth.BundleID
	}

	return &AuthService{
		bundleID: bundleID,
		logger:   logger,
		now:      time.Now,
	}
}

// Provider returns the provider this service understands.
func (s *AuthService) Provider() entity.ProviderType {
	return entity.ProviderTypeApple
}

// InspectIDToken structurally validates an Apple identity token and maps its claims.
func (s *AuthService) InspectIDToken(ctx context.Context, idToken string) (*service.OAuthUser, error) {
	claims := &identityTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		s.logger.Warn("malformed Apple identity token", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrProviderTokenInvalid, "failed to parse Apple identity token")
	}

	if claims.Issuer != appleIssuer {
		return nil, errors.Wrapf(domainerrors.ErrProviderTokenInvalid, "unexpected issuer %q", claims.Issuer)
	}

	if s.bundleID != "" && !containsAudience(claims.Audience, s.bundleID) {
		return nil, errors.Wrap(domainerrors.ErrProviderTokenInvalid, "token was issued for a different app")
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return nil, errors.Wrap(domainerrors.ErrProviderTokenInvalid, "token is expired")
	}

	if claims.Subject == "" {
		return nil, errors.Wrap(domainerrors.ErrProviderTokenInvalid, "token has no subject")
	}

	return &service.OAuthUser{
		ID:            claims.Subject,
		Email:         claims.Email,
		Provider:      entity.ProviderTypeApple,
		EmailVerified: emailVerified(claims.EmailVerified),
	}, nil
}

func emailVerified(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	default:
		return false
	}
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}

	return false
}
