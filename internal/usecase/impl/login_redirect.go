package impl

import (
	"context"
	"log/slog"

	"campus/config"
	deliverycontext "campus/internal/delivery/context"
	"campus/internal/domain/entity"
	"campus/internal/domain/service"
	"campus/internal/usecase"

	"go.uber.org/fx"
)

// loginRedirectService resolves the redirect memory after any authentication
// entry point completes. Password, provider, and email-verification logins
// all converge here so the post-login navigation behaves identically.
type loginRedirectService struct {
	sessions  usecase.SessionUsecase
	navigator service.Navigator
	config    *config.Config
	logger    *slog.Logger
}

// LoginRedirectServiceParams holds dependencies for loginRedirectService, injected by Fx.
type LoginRedirectServiceParams struct {
	fx.In

	Sessions  usecase.SessionUsecase
	Navigator service.Navigator
	Config    *config.Config
	Logger    *slog.Logger
}

// NewLoginRedirectService is the constructor for loginRedirectService.
func NewLoginRedirectService(params LoginRedirectServiceParams) usecase.RedirectUsecase {
	return &loginRedirectService{
		sessions:  params.Sessions,
		navigator: params.Navigator,
		config:    params.Config,
		logger:    params.Logger,
	}
}

// ResolveAfterLogin consumes the stored redirect target and issues exactly
// one navigation reset.
func (srv *loginRedirectService) ResolveAfterLogin(ctx context.Context) {
	logger := srv.log(ctx)

	target, ok := srv.sessions.TakeRedirectTarget()
	if !ok {
		logger.Debug("No redirect target, resetting to home tab")
		srv.navigator.ResetToTab(srv.config.Navigation.HomeTab)

		return
	}

	switch dest := srv.classify(target).(type) {
	case entity.TabDestination:
		logger.Info("Resuming gated navigation", slog.String("tab", dest.Tab))
		srv.navigator.ResetToTab(dest.Tab)
	case entity.StackDestination:
		logger.Info("Resuming gated navigation", slog.String("screen", dest.Screen))
		srv.navigator.ResetToStack(dest.Screen, dest.Params)
	}
}

// classify decides which nesting depth a redirect target lives at. Screens
// hosted by the main container's tab bar are addressed as a nested tab;
// everything else sits above the container on its own stack frame.
func (srv *loginRedirectService) classify(target entity.RedirectTarget) entity.Destination {
	for _, tab := range srv.config.Navigation.TabScreens {
		if tab == target.Name {
			return entity.TabDestination{Tab: target.Name}
		}
	}

	return entity.StackDestination{Screen: target.Name, Params: target.Params}
}

func (srv *loginRedirectService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}
