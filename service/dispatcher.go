package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/campuslink/warden/ports"
)

// Delivery channels reported by the dispatcher.
const (
	ChannelExternal = "external"
	ChannelFallback = "fallback"
)

// Dispatcher delivers one-time codes, preferring an external channel for
// phone-shaped contacts and degrading to the fallback on any failure.
// Delivery failure is never fatal: the challenge is already persisted and
// valid regardless of the outcome.
type Dispatcher struct {
	external ports.Notifier // nil when no gateway is configured
	fallback ports.Notifier
	timeout  time.Duration
	log      *slog.Logger
}

// NewDispatcher creates a dispatcher. external may be nil, in which case
// every delivery uses the fallback channel.
func NewDispatcher(external, fallback ports.Notifier, timeout time.Duration, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		external: external,
		fallback: fallback,
		timeout:  timeout,
		log:      log,
	}
}

// Deliver sends the code to the contact and returns the channel used.
func (d *Dispatcher) Deliver(ctx context.Context, contact, code string) string {
	if d.external != nil && looksLikePhone(contact) {
		dctx, cancel := context.WithTimeout(ctx, d.timeout)
		err := d.external.Deliver(dctx, contact, code)
		cancel()
		if err == nil {
			return ChannelExternal
		}
		d.log.Warn("external delivery degraded, using fallback",
			"contact", contact,
			"error", err,
		)
	}

	if err := d.fallback.Deliver(ctx, contact, code); err != nil {
		// The fallback is an operator log and should not fail; if it
		// somehow does, the flow still proceeds.
		d.log.Error("fallback delivery failed", "contact", contact, "error", err)
	}
	return ChannelFallback
}

// looksLikePhone reports whether the contact is a country-code-prefixed
// phone number.
func looksLikePhone(contact string) bool {
	if len(contact) < 8 || contact[0] != '+' {
		return false
	}
	for _, r := range contact[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
