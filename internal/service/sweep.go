package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/events"
	"github.com/slaworks/sla-service/internal/repository"
	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

type slaUpdater func(ctx context.Context, id string, status compliance.Status, breachedAt *time.Time) error

type trackedRecord struct {
	subject domain.SubjectType
	id      string
	item    compliance.Item
	last    *compliance.Status
	update  slaUpdater
}

// Sweep evaluates every record against a single instant, persists status
// transitions of active records and publishes the resulting snapshot.
func (s *ComplianceService) Sweep(ctx context.Context) (*domain.ComplianceSnapshot, error) {
	started := time.Now()
	now := s.now()

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err, "tickets", nil)
	}
	tasks, err := s.tasks.ListWithFilter(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, apperrors.MapError(err, "tasks", nil)
	}
	instances, err := s.instances.List(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError(err, "process instances", nil)
	}

	snapshot := &domain.ComplianceSnapshot{GeneratedAt: now, Escalations: []domain.BreachRef{}}

	ticketSet := ticketItems(tickets)
	for i := range tickets {
		if !tickets[i].IsActive() {
			continue
		}
		s.observe(ctx, snapshot, trackedRecord{
			subject: domain.SubjectTicket,
			id:      tickets[i].ID,
			item:    ticketSet[i],
			last:    tickets[i].SLAStatus,
			update:  s.tickets.UpdateSLAState,
		}, now)
	}
	taskSet := taskItems(tasks)
	for i := range tasks {
		if !tasks[i].IsActive() {
			continue
		}
		s.observe(ctx, snapshot, trackedRecord{
			subject: domain.SubjectTask,
			id:      tasks[i].ID,
			item:    taskSet[i],
			last:    tasks[i].SLAStatus,
			update:  s.tasks.UpdateSLAState,
		}, now)
	}
	instanceSet := instanceItems(instances)
	for i := range instances {
		if !instances[i].IsActive() {
			continue
		}
		s.observe(ctx, snapshot, trackedRecord{
			subject: domain.SubjectInstance,
			id:      instances[i].ID,
			item:    instanceSet[i],
			last:    instances[i].SLAStatus,
			update:  s.instances.UpdateSLAState,
		}, now)
	}

	snapshot.TicketResponse = s.engine.AggregateWindow(ticketSet, compliance.WindowResponse, now)
	snapshot.TicketResolution = s.engine.AggregateWindow(ticketSet, compliance.WindowResolution, now)
	snapshot.Tasks = s.engine.Aggregate(taskSet, now)
	snapshot.Instances = s.engine.Aggregate(instanceSet, now)

	if !s.snapshots.Publish(snapshot) {
		s.logger.Warn("discarded stale compliance snapshot", zap.Time("generated_at", now))
		return snapshot, nil
	}
	if s.cache != nil {
		if err := s.cache.Save(ctx, snapshot, s.snapshotTTL); err != nil {
			s.logger.Warn("snapshot cache write failed", zap.Error(err))
		}
	}

	s.metrics.RecordCompliance("ticket", compliance.WindowResponse, snapshot.TicketResponse)
	s.metrics.RecordCompliance("ticket", compliance.WindowResolution, snapshot.TicketResolution)
	s.metrics.RecordCompliance("task", compliance.WindowResolution, snapshot.Tasks)
	s.metrics.RecordCompliance("instance", compliance.WindowResolution, snapshot.Instances)
	s.metrics.ObserveSweep(time.Since(started))

	s.publishEvent(ctx, events.Event{
		Type:      events.EventSnapshotPublished,
		Timestamp: now,
		Payload: events.SnapshotPublishedPayload{
			GeneratedAt: now,
			Escalations: len(snapshot.Escalations),
		},
	})

	s.logger.Info("compliance sweep finished",
		zap.Int("tickets", len(tickets)),
		zap.Int("tasks", len(tasks)),
		zap.Int("instances", len(instances)),
		zap.Int("escalations", len(snapshot.Escalations)),
		zap.Duration("took", time.Since(started)),
	)
	return snapshot, nil
}

// observe classifies one record's governing window. Persistence failures are
// logged and do not abort the pass.
func (s *ComplianceService) observe(ctx context.Context, snapshot *domain.ComplianceSnapshot, rec trackedRecord, now time.Time) {
	kind := s.engine.GoverningWindow(rec.item)
	status := s.engine.Evaluate(rec.item, kind, now)
	if status == nil {
		return
	}
	if status.Status == compliance.StatusOverdue {
		snapshot.Escalations = append(snapshot.Escalations, domain.BreachRef{
			SubjectType: rec.subject,
			SubjectID:   rec.id,
			Window:      kind,
			Percentage:  status.Percentage,
			Deadline:    status.Deadline,
		})
	}
	if rec.last != nil && *rec.last == status.Status {
		return
	}

	logger := s.logger.With(
		zap.String("subject_type", string(rec.subject)),
		zap.String("subject_id", rec.id),
		zap.String("window", string(kind)),
		zap.String("status", string(status.Status)),
	)

	var breachedAt *time.Time
	if status.Status == compliance.StatusOverdue {
		breachedAt = &now
	}
	if err := rec.update(ctx, rec.id, status.Status, breachedAt); err != nil {
		logger.Error("failed to persist sla status", zap.Error(err))
		return
	}

	if s.history != nil {
		entry := &domain.ComplianceHistory{
			SubjectType: rec.subject,
			SubjectID:   rec.id,
			Window:      kind,
			OldStatus:   rec.last,
			NewStatus:   status.Status,
			Percentage:  status.Percentage,
			CreatedAt:   now,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			logger.Warn("failed to record compliance history", zap.Error(err))
		}
	}

	var eventType events.EventType
	switch status.Status {
	case compliance.StatusAtRisk:
		eventType = events.EventSLAAtRisk
	case compliance.StatusOverdue:
		eventType = events.EventSLABreached
		s.metrics.RecordBreach(string(rec.subject))
	default:
		return
	}
	s.publishEvent(ctx, events.Event{
		Type:      eventType,
		Subject:   events.Subject{Type: rec.subject, ID: rec.id},
		Timestamp: now,
		Payload: events.StatusChangedPayload{
			Window:        kind,
			OldStatus:     rec.last,
			NewStatus:     status.Status,
			Percentage:    status.Percentage,
			Deadline:      status.Deadline,
			RemainingText: status.RemainingText,
		},
	})
}
