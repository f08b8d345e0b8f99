package messaging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-api/internal/core/domain"
)

// LogPublisher records lifecycle events in the service log. It is used when
// no broker is configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.LifecycleEvent) error {
	p.log.Info().
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Str("username", event.Username).
		Str("actor", event.Actor).
		Time("occurred_at", event.OccurredAt).
		Msg("lifecycle event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
