// Package delivery defines the contract shared by all delivery mechanisms.
package delivery

import "context"

// Delivery is a long-running inbound surface of the application, such as the
// deep-link listener. Serve blocks until the surface shuts down.
type Delivery interface {
	Serve(ctx context.Context) error
}
