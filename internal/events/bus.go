// Package events carries best-effort workflow events to in-process
// subscribers. Delivery to people (push, email, sockets) happens elsewhere;
// a failed publish never fails the operation that produced the event.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Type identifies an event.
type Type string

const (
	TypeTaskCreated        Type = "task.created"
	TypeTaskUpdated        Type = "task.updated"
	TypeTaskStatusChanged  Type = "task.status_changed"
	TypeTaskDeleted        Type = "task.deleted"
	TypeSubmissionCreated  Type = "submission.created"
	TypeSubmissionReviewed Type = "submission.reviewed"
	TypeReviewEscalated    Type = "review.escalated"
)

// AllTypes lists every event type the workflow emits.
func AllTypes() []Type {
	return []Type{
		TypeTaskCreated,
		TypeTaskUpdated,
		TypeTaskStatusChanged,
		TypeTaskDeleted,
		TypeSubmissionCreated,
		TypeSubmissionReviewed,
		TypeReviewEscalated,
	}
}

// ErrBufferFull is returned when the bus cannot accept more events.
var ErrBufferFull = errors.New("event buffer full")

// Event is a workflow event.
type Event struct {
	ID          string         `json:"id"`
	Type        Type           `json:"type"`
	WorkspaceID uint64         `json:"workspace_id"`
	ActorID     uint64         `json:"actor_id,omitempty"`
	Payload     map[string]any `json:"payload"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Handler consumes an event.
type Handler func(ctx context.Context, event *Event) error

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Bus is a buffered in-process event bus.
type Bus struct {
	handlers map[Type][]Handler
	buffer   chan *Event
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   logrus.FieldLogger
}

// NewBus creates a bus with the given buffer size.
func NewBus(bufferSize int, logger logrus.FieldLogger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Bus{
		handlers: make(map[Type][]Handler),
		buffer:   make(chan *Event, bufferSize),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func stamp(event *Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
}

// Publish enqueues an event without blocking.
func (b *Bus) Publish(ctx context.Context, event *Event) error {
	stamp(event)

	select {
	case b.buffer <- event:
		b.logger.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Debug("event published")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Start launches workers that dispatch events until ctx is cancelled.
func (b *Bus) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.worker(ctx, i)
	}
	b.logger.WithField("workers", workers).Info("event bus started")
}

// Wait blocks until all workers have exited.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) worker(ctx context.Context, id int) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			b.logger.WithField("worker_id", id).Debug("event bus worker stopped")
			return
		case event := <-b.buffer:
			b.Dispatch(ctx, event)
		}
	}
}

// Dispatch runs every handler subscribed to the event's type. Handler errors
// are logged and do not stop the remaining handlers.
func (b *Bus) Dispatch(ctx context.Context, event *Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	for idx, h := range handlers {
		if err := h(ctx, event); err != nil {
			b.logger.WithFields(logrus.Fields{
				"event_id":      event.ID,
				"event_type":    event.Type,
				"handler_index": idx,
			}).WithError(err).Error("event handler failed")
		}
	}
}

// Drain dispatches whatever is still buffered on the calling goroutine.
// Use it after workers have stopped, or instead of starting them.
func (b *Bus) Drain(ctx context.Context) int {
	n := 0
	for {
		select {
		case event := <-b.buffer:
			b.Dispatch(ctx, event)
			n++
		default:
			return n
		}
	}
}

// Inline returns a publisher that dispatches each event on the caller's
// goroutine, bypassing the buffer. One-shot commands use it so nothing is
// dropped when more events are produced than the buffer holds.
func (b *Bus) Inline() Publisher {
	return inlinePublisher{bus: b}
}

type inlinePublisher struct {
	bus *Bus
}

func (p inlinePublisher) Publish(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp(event)
	p.bus.Dispatch(ctx, event)
	return nil
}

// LogSink returns a handler that records events in the log, acting as the
// outbox for whatever transport delivers notifications.
func LogSink(logger logrus.FieldLogger) Handler {
	return func(ctx context.Context, event *Event) error {
		logger.WithFields(logrus.Fields{
			"event_id":     event.ID,
			"event_type":   event.Type,
			"workspace_id": event.WorkspaceID,
			"actor_id":     event.ActorID,
			"payload":      event.Payload,
		}).Info("workflow event")
		return nil
	}
}
