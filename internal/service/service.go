package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/events"
)

// publisher stamps and dispatches domain events.
type publisher struct {
	dispatcher events.Dispatcher
	clock      clock.Clock
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	_ = p.dispatcher.Publish(ctx, event)
}

func (p publisher) now() time.Time {
	if p.clock == nil {
		return time.Now()
	}
	return p.clock.Now()
}
