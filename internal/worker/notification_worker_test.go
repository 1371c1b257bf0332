package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/events"
	"github.com/slaworks/sla-service/internal/worker"
)

type channelHandler struct {
	delivered chan events.Event
	err       error
}

func (h *channelHandler) Handle(_ context.Context, event events.Event) error {
	h.delivered <- event
	return h.err
}

func breach(id string) events.Event {
	return events.Event{
		ID:      "evt-" + id,
		Type:    events.EventSLABreached,
		Subject: events.Subject{Type: domain.SubjectTicket, ID: id},
	}
}

func TestNotificationWorker_DeliversSubscribedEvents(t *testing.T) {
	handler := &channelHandler{delivered: make(chan events.Event, 4)}
	w := worker.NewNotificationWorker(handler, 4, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	w.Subscribe(dispatcher, events.EventSLABreached)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, dispatcher.Publish(ctx, breach("t-1")))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventSLAAtRisk}))

	select {
	case event := <-handler.delivered:
		assert.Equal(t, "t-1", event.Subject.ID)
	case <-time.After(time.Second):
		t.Fatal("breach was not delivered")
	}
	select {
	case event := <-handler.delivered:
		t.Fatalf("unsubscribed event delivered: %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationWorker_FullQueueDoesNotBlockPublisher(t *testing.T) {
	handler := &channelHandler{delivered: make(chan events.Event, 4)}
	w := worker.NewNotificationWorker(handler, 1, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	w.Subscribe(dispatcher, events.EventSLABreached)

	require.NoError(t, dispatcher.Publish(context.Background(), breach("t-1")))
	err := dispatcher.Publish(context.Background(), breach("t-2"))
	assert.ErrorContains(t, err, "notification queue full")
	assert.ErrorContains(t, err, "t-2")
}

func TestNotificationWorker_LogsDeliveryFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := &channelHandler{delivered: make(chan events.Event, 1), err: errors.New("smtp down")}
	w := worker.NewNotificationWorker(handler, 0, zap.New(core))
	dispatcher := events.NewInMemoryDispatcher()
	w.Subscribe(dispatcher, events.EventSLABreached)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.NoError(t, dispatcher.Publish(ctx, breach("t-9")))
	<-handler.delivered
	assert.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	entry := logs.All()[0]
	assert.Equal(t, "notification delivery failed", entry.Message)
	assert.Equal(t, "evt-t-9", entry.ContextMap()["event_id"])
}
