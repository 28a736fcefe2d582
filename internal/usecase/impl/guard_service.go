package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "campus/internal/delivery/context"
	"campus/internal/domain/entity"
	"campus/internal/domain/service"
	"campus/internal/usecase"

	"go.uber.org/fx"
)

// guardService implements the GuardUsecase interface. It is a factory: each
// mounted protected screen gets its own guard instance, because the one-shot
// capture and reset behaviours are scoped to a single mount.
type guardService struct {
	sessions  usecase.SessionUsecase
	navigator service.Navigator
	logger    *slog.Logger
}

// GuardServiceParams holds dependencies for guardService, injected by Fx.
type GuardServiceParams struct {
	fx.In

	Sessions  usecase.SessionUsecase
	Navigator service.Navigator
	Logger    *slog.Logger
}

// NewGuardService is the constructor for guardService.
func NewGuardService(params GuardServiceParams) usecase.GuardUsecase {
	return &guardService{
		sessions:  params.Sessions,
		navigator: params.Navigator,
		logger:    params.Logger,
	}
}

// NewScreenGuard creates a guard for one mounted screen instance.
func (srv *guardService) NewScreenGuard(route service.Route) usecase.ScreenGuard {
	return &screenGuard{
		sessions:  srv.sessions,
		navigator: srv.navigator,
		logger:    srv.logger,
		route:     route,
	}
}

// screenGuard gates one protected screen instance. The guard never renders
// anything itself; it only decides what the screen should do and performs
// the side effects tied to that decision.
type screenGuard struct {
	sessions  usecase.SessionUsecase
	navigator service.Navigator
	logger    *slog.Logger
	route     service.Route

	mu          sync.Mutex
	captured    bool
	resetIssued bool
}

// Evaluate makes the gating decision for the current session snapshot.
func (g *screenGuard) Evaluate(ctx context.Context) usecase.GuardDecision {
	session := g.sessions.Current()

	g.mu.Lock()
	defer g.mu.Unlock()

	if session.Authenticated() {
		// Re-arm the one-shot behaviours for a later logout on this mount.
		g.captured = false
		g.resetIssued = false

		return usecase.DecisionRenderContent
	}

	if session.IsLoggingOut {
		if !g.resetIssued {
			g.resetIssued = true
			g.log(ctx).Info("Session ended, leaving protected screen", slog.String("screen", g.route.Name))
			g.navigator.ResetLanding()
			g.sessions.ConfirmLogoutHandled()
		}

		return usecase.DecisionRedirecting
	}

	// A direct unauthenticated visit: remember where the visitor was headed
	// once per mount, then prompt in place instead of yanking them away.
	if !g.captured {
		g.captured = true
		g.sessions.SetRedirectTarget(ctx, entity.RedirectTarget{
			Name:   g.route.Name,
			Params: g.route.Params,
		})
	}

	return usecase.DecisionShowLoginPrompt
}

func (g *screenGuard) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, g.logger)
}
