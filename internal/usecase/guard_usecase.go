// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"campus/internal/domain/service"
)

// GuardDecision is what the rendering layer should do with a gated screen.
type GuardDecision string

const (
	// DecisionRenderContent means the protected content may be shown.
	DecisionRenderContent GuardDecision = "render_content"
	// DecisionShowLoginPrompt means an in-place login prompt should be shown.
	DecisionShowLoginPrompt GuardDecision = "show_login_prompt"
	// DecisionRedirecting means a forced navigation reset has been issued and
	// the screen should render nothing while it unwinds.
	DecisionRedirecting GuardDecision = "redirecting"
)

// ScreenGuard is a per-mount access guard for one protected screen instance.
type ScreenGuard interface {
	// Evaluate makes the gating decision for the current session snapshot.
	// It captures the redirect target once per mount on the first
	// unauthenticated evaluation, and on a just-completed logout issues the
	// forced landing reset exactly once.
	Evaluate(ctx context.Context) GuardDecision
}

// GuardUsecase constructs screen guards.
type GuardUsecase interface {
	// NewScreenGuard creates a guard for one mounted screen instance at the
	// given route.
	NewScreenGuard(route service.Route) ScreenGuard
}
