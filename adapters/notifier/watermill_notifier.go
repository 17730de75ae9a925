// Package notifier contains delivery channels for one-time codes.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/campuslink/warden/ports"
)

// DeliveryRequest is the payload published to the delivery stream. A
// separate delivery worker turns it into an SMS or email.
type DeliveryRequest struct {
	Contact     string    `json:"contact"`
	Code        string    `json:"code"`
	RequestedAt time.Time `json:"requested_at"`
}

// WatermillNotifier publishes delivery requests to a message stream. It is
// the external channel of the notification dispatcher.
type WatermillNotifier struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillNotifier creates a new stream-backed notifier.
func NewWatermillNotifier(publisher message.Publisher, topic string) ports.Notifier {
	return &WatermillNotifier{
		publisher: publisher,
		topic:     topic,
	}
}

// Deliver publishes a delivery request for the contact.
func (n *WatermillNotifier) Deliver(ctx context.Context, contact, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(DeliveryRequest{
		Contact:     contact,
		Code:        code,
		RequestedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal delivery request: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)

	if err := n.publisher.Publish(n.topic, msg); err != nil {
		return fmt.Errorf("failed to publish delivery request: %w", err)
	}

	return nil
}
