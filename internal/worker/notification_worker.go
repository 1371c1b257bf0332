package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/slaworks/sla-service/internal/events"
)

const defaultNotificationQueue = 256

// NotificationHandler delivers one compliance event.
type NotificationHandler interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker queues published events and delivers them on its own
// goroutine, keeping slow email or webhook calls out of the sweep.
type NotificationWorker struct {
	handler NotificationHandler
	queue   chan events.Event
	logger  *zap.Logger
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(handler NotificationHandler, queueSize int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultNotificationQueue
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		handler: handler,
		queue:   make(chan events.Event, queueSize),
		logger:  logger,
	}
}

// Subscribe queues events of the given types for delivery.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher, types ...events.EventType) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

// enqueue never blocks the publisher; a full queue drops the event and
// reports it to the dispatcher.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		return fmt.Errorf("notification queue full: dropped %s for %s %s", event.Type, event.Subject.Type, event.Subject.ID)
	}
}

// Run delivers queued events until ctx is done.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.queue:
			if err := w.handler.Handle(ctx, event); err != nil {
				w.logger.Warn("notification delivery failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err),
				)
			}
		}
	}
}
