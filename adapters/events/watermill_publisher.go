package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/campuslink/warden/ports"
)

// Topic names for auth lifecycle events.
const (
	TopicChallengeIssued = "warden.auth.challenge_issued"
	TopicVerified        = "warden.auth.verified"
	TopicLogin           = "warden.auth.login"
)

// AuthEvent is the common payload for auth lifecycle events.
type AuthEvent struct {
	UserID     string    `json:"user_id"`
	Contact    string    `json:"contact,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill event publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishChallengeIssued publishes a challenge-issued event.
func (p *WatermillPublisher) PublishChallengeIssued(ctx context.Context, userID, contact string) error {
	return p.publish(TopicChallengeIssued, AuthEvent{UserID: userID, Contact: contact, OccurredAt: time.Now()})
}

// PublishVerified publishes a second-factor-verified event.
func (p *WatermillPublisher) PublishVerified(ctx context.Context, userID string) error {
	return p.publish(TopicVerified, AuthEvent{UserID: userID, OccurredAt: time.Now()})
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, userID string) error {
	return p.publish(TopicLogin, AuthEvent{UserID: userID, OccurredAt: time.Now()})
}

func (p *WatermillPublisher) publish(topic string, event AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
