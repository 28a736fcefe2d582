package impl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"campus/config"
	deliverycontext "campus/internal/delivery/context"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/service"
	"campus/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// linkRule maps one recognized path to its navigation action. Rules are
// evaluated in declaration order and the first match wins.
type linkRule struct {
	path   string
	handle func(ctx context.Context, link entity.NormalizedLink)
}

// linkService implements the LinkUsecase interface. It is stateless: each
// inbound URL is normalized and dispatched independently, regardless of
// login state.
type linkService struct {
	sessions  usecase.SessionUsecase
	redirect  usecase.RedirectUsecase
	navigator service.Navigator
	config    *config.Config
	logger    *slog.Logger
	rules     []linkRule
}

// LinkServiceParams holds dependencies for linkService, injected by Fx.
type LinkServiceParams struct {
	fx.In

	Sessions  usecase.SessionUsecase
	Redirect  usecase.RedirectUsecase
	Navigator service.Navigator
	Config    *config.Config
	Logger    *slog.Logger
}

// NewLinkService is the constructor for linkService.
func NewLinkService(params LinkServiceParams) usecase.LinkUsecase {
	srv := &linkService{
		sessions:  params.Sessions,
		redirect:  params.Redirect,
		navigator: params.Navigator,
		config:    params.Config,
		logger:    params.Logger,
	}
	srv.rules = []linkRule{
		{path: "email-verified", handle: srv.handleEmailVerified},
		{path: "reset-password", handle: srv.handleResetPassword},
		{path: "verify-email", handle: srv.handleVerifyEmail},
	}

	return srv
}

// Normalize strips scheme and host from an inbound URL and decodes its query
// parameters. The same function serves custom-scheme links, https app links,
// and already-bare paths.
func (srv *linkService) Normalize(raw string) (entity.NormalizedLink, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return entity.NormalizedLink{}, errors.Wrap(domainerrors.ErrValidationFailed, "empty link")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return entity.NormalizedLink{}, errors.Wrap(err, "failed to parse link")
	}

	path := parsed.Path
	switch {
	case parsed.Scheme == srv.config.Links.Scheme:
		switch {
		case parsed.Opaque != "":
			// campus:email-verified?token=x carries the path in the opaque part.
			path = parsed.Opaque
		case parsed.Host != "":
			// campus://email-verified?token=x parses the first segment as the
			// host; fold it back into the path.
			path = parsed.Host + "/" + strings.TrimPrefix(path, "/")
		}
	case parsed.Scheme == "https" || parsed.Scheme == "http":
		if !srv.recognizedHost(parsed.Hostname()) {
			return entity.NormalizedLink{}, errors.Wrapf(domainerrors.ErrValidationFailed, "unrecognized link host %q", parsed.Hostname())
		}
	case parsed.Scheme != "":
		return entity.NormalizedLink{}, errors.Wrapf(domainerrors.ErrValidationFailed, "unrecognized link scheme %q", parsed.Scheme)
	}

	params := map[string]string{}
	for name, values := range parsed.Query() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}

	return entity.NormalizedLink{
		Path:   strings.Trim(path, "/"),
		Params: params,
	}, nil
}

// recognizedHost reports whether an https link's host belongs to the app. An
// empty allow list accepts any host.
func (srv *linkService) recognizedHost(host string) bool {
	if len(srv.config.Links.WebHosts) == 0 {
		return true
	}
	for _, allowed := range srv.config.Links.WebHosts {
		if strings.EqualFold(allowed, host) {
			return true
		}
	}

	return false
}

// Dispatch walks the rule table in order; unrecognized links are dropped
// without any navigation.
func (srv *linkService) Dispatch(ctx context.Context, link entity.NormalizedLink) {
	for _, rule := range srv.rules {
		if strings.Contains(link.Path, rule.path) {
			srv.log(ctx).Info("Dispatching link", slog.String("path", link.Path))
			rule.handle(ctx, link)

			return
		}
	}

	srv.log(ctx).Debug("Ignoring unrecognized link", slog.String("path", link.Path))
}

// HandleURL funnels one inbound URL through Normalize and Dispatch.
func (srv *linkService) HandleURL(ctx context.Context, raw string) {
	link, err := srv.Normalize(raw)
	if err != nil {
		srv.log(ctx).Warn("Dropping malformed link", slog.Any("error", err))

		return
	}

	srv.Dispatch(ctx, link)
}

// handleEmailVerified lands the user on the post-verification screen and, if
// the backend attached a session token, adopts it and resumes any remembered
// gated navigation.
func (srv *linkService) handleEmailVerified(ctx context.Context, link entity.NormalizedLink) {
	srv.navigator.ResetAuth("EmailVerified", toAnyParams(link.Params))

	token := link.Param("authToken")
	if token == "" {
		return
	}

	if _, err := srv.sessions.CompleteEmailVerification(ctx, token); err != nil {
		// The screen already shows the verified state; the user signs in
		// manually from there.
		srv.log(ctx).Warn("Verification link token rejected", slog.Any("error", err))

		return
	}

	srv.redirect.ResolveAfterLogin(ctx)
}

// handleResetPassword opens the password reset form. Without a token the
// link cannot identify a reset request and is a no-op.
func (srv *linkService) handleResetPassword(ctx context.Context, link entity.NormalizedLink) {
	if !link.HasParam("token") {
		srv.log(ctx).Warn("Reset-password link missing token")

		return
	}

	srv.navigator.ResetAuth("ResetPassword", map[string]any{"token": link.Param("token")})
}

// handleVerifyEmail opens the manual verification screen for backends that
// delegate the final verification call to the app.
func (srv *linkService) handleVerifyEmail(ctx context.Context, link entity.NormalizedLink) {
	if !link.HasParam("token") {
		srv.log(ctx).Warn("Verify-email link missing token")

		return
	}

	srv.navigator.ResetAuth("VerifyEmail", map[string]any{"token": link.Param("token")})
}

func toAnyParams(params map[string]string) map[string]any {
	converted := make(map[string]any, len(params))
	for name, value := range params {
		converted[name] = value
	}

	return converted
}

func (srv *linkService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}
