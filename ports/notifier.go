package ports

import "context"

// Notifier delivers a one-time code to a contact over some channel.
// Implementations must respect the context deadline.
type Notifier interface {
	Deliver(ctx context.Context, contact, code string) error
}
