package notifier

import (
	"context"
	"log/slog"

	"github.com/campuslink/warden/ports"
)

// ConsoleNotifier writes the code to the operator log. It is the fallback
// channel: development and degraded-dependency operation must never block
// on an external gateway. Logging the code here is intentional; this
// channel only carries codes when no external channel delivered them.
type ConsoleNotifier struct {
	log *slog.Logger
}

// NewConsoleNotifier creates a new operator-log notifier.
func NewConsoleNotifier(log *slog.Logger) ports.Notifier {
	return &ConsoleNotifier{log: log}
}

// Deliver logs the code for the operator.
func (n *ConsoleNotifier) Deliver(ctx context.Context, contact, code string) error {
	n.log.Info("one-time code delivery (operator channel)",
		"contact", contact,
		"code", code,
	)
	return nil
}
