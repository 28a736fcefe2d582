// Package navigation implements the navigation surface as an in-process
// route tree. The rendering layer observes the tree; the session core only
// ever mutates it through whole-tree resets.
package navigation

import (
	"log/slog"
	"sync"

	"campus/config"
	"campus/internal/domain/service"
)

// Container names of the navigation tree roots.
const (
	ContainerMain = "Main"
	ContainerAuth = "Auth"
)

// Navigator keeps the current frame stack and applies reset operations.
type Navigator struct {
	landing string
	homeTab string
	logger  *slog.Logger

	mu     sync.RWMutex
	frames []service.Route
}

// New is the constructor for the Navigator. The tree starts at the public
// landing container until the session settles.
func New(cfg *config.Config, logger *slog.Logger) service.Navigator {
	n := &Navigator{
		landing: cfg.Navigation.LandingScreen,
		homeTab: cfg.Navigation.HomeTab,
		logger:  logger,
	}
	n.frames = []service.Route{{Name: n.landing, Params: map[string]any{}}}

	return n
}

// ResetToTab resets to the main container with the given nested tab selected.
func (n *Navigator) ResetToTab(tab string) {
	n.reset([]service.Route{
		{Name: ContainerMain, Params: map[string]any{"tab": tab}},
	})
}

// ResetToStack resets to a two-frame stack: main container, then the target.
func (n *Navigator) ResetToStack(screen string, params map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	n.reset([]service.Route{
		{Name: ContainerMain, Params: map[string]any{"tab": n.homeTab}},
		{Name: screen, Params: params},
	})
}

// ResetAuth resets into the authentication flow at the given screen.
func (n *Navigator) ResetAuth(screen string, params map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	n.reset([]service.Route{
		{Name: ContainerAuth, Params: map[string]any{}},
		{Name: screen, Params: params},
	})
}

// ResetLanding resets to the public landing container.
func (n *Navigator) ResetLanding() {
	n.reset([]service.Route{
		{Name: n.landing, Params: map[string]any{}},
	})
}

// Current returns the route at the top of the tree.
func (n *Navigator) Current() service.Route {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.frames[len(n.frames)-1]
}

// Frames returns a copy of the whole frame stack, bottom first.
func (n *Navigator) Frames() []service.Route {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]service.Route, len(n.frames))
	copy(out, n.frames)

	return out
}

func (n *Navigator) reset(frames []service.Route) {
	n.mu.Lock()
	n.frames = frames
	top := frames[len(frames)-1]
	n.mu.Unlock()

	n.logger.Debug("navigation reset", slog.String("top", top.Name), slog.Int("depth", len(frames)))
}
