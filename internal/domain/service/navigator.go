package service

// Route identifies a screen instance in the navigation tree.
type Route struct {
	Name   string         // Screen name, e.g. "Checkout".
	Params map[string]any // Screen parameters.
}

// Navigator is the navigation surface produced by the core. All mutations are
// reset operations addressing the host container; the core never pushes
// screens incrementally.
type Navigator interface {
	// ResetToTab resets navigation to the main container with the given
	// nested tab selected.
	ResetToTab(tab string)

	// ResetToStack resets navigation to a two-frame stack: the main container,
	// then the target screen with its parameters.
	ResetToStack(screen string, params map[string]any)

	// ResetAuth resets navigation into the authentication flow at the given
	// screen (e.g. the reset-password or manual-verification screen).
	ResetAuth(screen string, params map[string]any)

	// ResetLanding resets navigation to the public landing container.
	ResetLanding()

	// Current returns the route currently at the top of the tree.
	Current() Route
}
