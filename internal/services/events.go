package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/events"
)

// emitter publishes best-effort events stamped with the service clock. A
// publish failure is logged; callers may count it but never fail on it.
type emitter struct {
	publisher events.Publisher
	clock     clock.Clock
	logger    logrus.FieldLogger
}

func newEmitter(publisher events.Publisher, clk clock.Clock, logger logrus.FieldLogger) emitter {
	return emitter{publisher: publisher, clock: clk, logger: logger}
}

func (e emitter) emit(ctx context.Context, eventType events.Type, workspaceID, actorID uint64, payload map[string]any) error {
	if e.publisher == nil {
		return nil
	}

	event := &events.Event{
		Type:        eventType,
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Payload:     payload,
		Timestamp:   e.clock.Now(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WithFields(logrus.Fields{
			"event_type":   eventType,
			"workspace_id": workspaceID,
			"actor_id":     actorID,
		}).WithError(err).Warn("failed to publish event")
		return err
	}
	return nil
}
