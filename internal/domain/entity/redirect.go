// Package entity contains the core business objects of the project.
package entity

// RedirectTarget records the screen an unauthenticated visitor was trying to
// reach, so the attempt can be replayed after authentication completes. At
// most one live instance exists at a time; a newer gated attempt overwrites
// the previous one (last writer wins, there is no queue).
type RedirectTarget struct {
	Name   string         // Destination screen name, e.g. "Checkout" or "Library".
	Params map[string]any // Original parameters of the attempted navigation.
}

// NewRedirectTarget normalizes a bare screen name into a full target with an
// empty parameter map.
func NewRedirectTarget(name string) RedirectTarget {
	return RedirectTarget{Name: name, Params: map[string]any{}}
}

// Normalize guarantees the Params map is non-nil.
func (t RedirectTarget) Normalize() RedirectTarget {
	if t.Params == nil {
		t.Params = map[string]any{}
	}

	return t
}

// Destination is the resolved navigation outcome of a redirect target.
// The two kinds live at different nesting depths in the navigation tree,
// so resolution must branch exhaustively on the concrete type.
type Destination interface {
	isDestination()
}

// TabDestination addresses a screen hosted inside the main container's tab
// bar. It is reached by resetting to the host container with a nested tab
// parameter.
type TabDestination struct {
	Tab string // Name of the hosted tab, e.g. "Library".
}

func (TabDestination) isDestination() {}

// StackDestination addresses a screen pushed above the main container. It is
// reached by resetting to a two-frame stack: the host container first, then
// the target screen with its original parameters.
type StackDestination struct {
	Screen string         // Target screen name, e.g. "Checkout".
	Params map[string]any // Parameters captured with the original attempt.
}

func (StackDestination) isDestination() {}
