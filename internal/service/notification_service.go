package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/slaworks/sla-service/internal/config"
	"github.com/slaworks/sla-service/internal/events"
)

// NotificationEventTypes lists the events NotificationService delivers.
var NotificationEventTypes = []events.EventType{
	events.EventSLAAtRisk,
	events.EventSLABreached,
	events.EventSnapshotPublished,
}

// NotificationService delivers compliance events to people and integrations.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle delivers one event. Unknown event types are ignored.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventSLAAtRisk:
		n.logger.Info("SLAAtRisk", subjectFields(event, zap.Any("payload", event.Payload))...)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventSLABreached:
		n.logger.Warn("SLABreached", subjectFields(event, zap.Any("payload", event.Payload))...)
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventSnapshotPublished:
		n.logger.Debug("SLASnapshotPublished", zap.Any("payload", event.Payload))
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		subjectFields(event, zap.String("from", n.cfg.EmailFrom))...)
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		subjectFields(event, zap.String("url", n.cfg.WebhookURL))...)
}

func subjectFields(event events.Event, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("event_type", string(event.Type)),
		zap.String("subject_type", string(event.Subject.Type)),
		zap.String("subject_id", event.Subject.ID),
	}
	return append(fields, extra...)
}
