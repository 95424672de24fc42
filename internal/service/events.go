package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workdesk/internal/events"
)

// publishEvent fills event identity fields and dispatches. Publication is
// best-effort; business mutations never roll back on a dispatch failure.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
