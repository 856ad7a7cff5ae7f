// Package delivery holds the transports that expose the use cases.
package delivery

import "context"

// Delivery is a long-running server started by the binaries.
type Delivery interface {
	// Serve blocks until the server stops.
	Serve(ctx context.Context) error
}
