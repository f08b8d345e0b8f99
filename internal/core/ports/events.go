package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// EventSink accepts committed lifecycle events for asynchronous delivery.
// Enqueue must not block the caller on delivery.
type EventSink interface {
	Enqueue(event domain.LifecycleEvent)
}

// EventPublisher delivers a single lifecycle event to its destination.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LifecycleEvent) error
}
