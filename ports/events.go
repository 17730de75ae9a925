package ports

import "context"

// EventPublisher publishes auth lifecycle events for other services.
// Publish failures are logged by callers, never surfaced to the client.
type EventPublisher interface {
	PublishChallengeIssued(ctx context.Context, userID, contact string) error
	PublishVerified(ctx context.Context, userID string) error
	PublishLogin(ctx context.Context, userID string) error
}
