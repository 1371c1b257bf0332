package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/events"
	"github.com/slaworks/sla-service/internal/observability"
	"github.com/slaworks/sla-service/internal/repository"
	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// ComplianceService evaluates SLA and deadline compliance for tickets and BPM work.
type ComplianceService struct {
	engine      *compliance.Engine
	tickets     repository.TicketRepository
	tasks       repository.TaskRepository
	instances   repository.InstanceRepository
	history     repository.ComplianceHistoryRepository
	cache       repository.SnapshotCache
	snapshots   *SnapshotStore
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	snapshotTTL time.Duration
	now         func() time.Time
}

// ComplianceDependencies bundles collaborators for the compliance service.
type ComplianceDependencies struct {
	Engine       *compliance.Engine
	TicketRepo   repository.TicketRepository
	TaskRepo     repository.TaskRepository
	InstanceRepo repository.InstanceRepository
	HistoryRepo  repository.ComplianceHistoryRepository
	Cache        repository.SnapshotCache
	Snapshots    *SnapshotStore
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	SnapshotTTL  time.Duration
	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// NewComplianceService constructs the service.
func NewComplianceService(deps ComplianceDependencies) *ComplianceService {
	svc := &ComplianceService{
		engine:      deps.Engine,
		tickets:     deps.TicketRepo,
		tasks:       deps.TaskRepo,
		instances:   deps.InstanceRepo,
		history:     deps.HistoryRepo,
		cache:       deps.Cache,
		snapshots:   deps.Snapshots,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		snapshotTTL: deps.SnapshotTTL,
		now:         deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.snapshots == nil {
		svc.snapshots = NewSnapshotStore()
	}
	return svc
}

// Engine exposes the configured compliance engine.
func (s *ComplianceService) Engine() *compliance.Engine {
	return s.engine
}

// Now returns the service clock reading.
func (s *ComplianceService) Now() time.Time {
	return s.now()
}

// TicketCompliance is the SLA view of one ticket.
type TicketCompliance struct {
	Ticket      *domain.Ticket
	Response    *compliance.ComplianceStatus
	Resolution  *compliance.ComplianceStatus
	Governing   compliance.WindowKind
	Escalate    bool
	EvaluatedAt time.Time
}

// WorkItemCompliance is the deadline view of a BPM task or process instance.
type WorkItemCompliance struct {
	SubjectType domain.SubjectType
	SubjectID   string
	Deadline    *compliance.ComplianceStatus
	Escalate    bool
	EvaluatedAt time.Time
}

// TicketMetrics aggregates both ticket windows at one instant.
type TicketMetrics struct {
	EvaluatedAt time.Time
	Response    compliance.Metrics
	Resolution  compliance.Metrics
}

// WorkMetrics aggregates BPM deadlines at one instant.
type WorkMetrics struct {
	EvaluatedAt time.Time
	Deadline    compliance.Metrics
}

// TicketCompliance evaluates both windows of a ticket.
func (s *ComplianceService) TicketCompliance(ctx context.Context, ticketID string) (*TicketCompliance, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	now := s.now()
	item := ticket.ComplianceItem()
	return &TicketCompliance{
		Ticket:      ticket,
		Response:    s.engine.Evaluate(item, compliance.WindowResponse, now),
		Resolution:  s.engine.Evaluate(item, compliance.WindowResolution, now),
		Governing:   s.engine.GoverningWindow(item),
		Escalate:    s.engine.ShouldEscalate(item, now),
		EvaluatedAt: now,
	}, nil
}

// TaskCompliance evaluates the deadline of a BPM task.
func (s *ComplianceService) TaskCompliance(ctx context.Context, taskID string) (*WorkItemCompliance, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.MapError(err, "task", map[string]any{"task_id": taskID})
	}
	return s.workItem(domain.SubjectTask, task.ID, task.ComplianceItem()), nil
}

// InstanceCompliance evaluates the deadline of a process instance.
func (s *ComplianceService) InstanceCompliance(ctx context.Context, instanceID string) (*WorkItemCompliance, error) {
	instance, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, apperrors.MapError(err, "process instance", map[string]any{"instance_id": instanceID})
	}
	return s.workItem(domain.SubjectInstance, instance.ID, instance.ComplianceItem()), nil
}

func (s *ComplianceService) workItem(subject domain.SubjectType, id string, item compliance.Item) *WorkItemCompliance {
	now := s.now()
	return &WorkItemCompliance{
		SubjectType: subject,
		SubjectID:   id,
		Deadline:    s.engine.Evaluate(item, compliance.WindowResolution, now),
		Escalate:    s.engine.ShouldEscalate(item, now),
		EvaluatedAt: now,
	}
}

// TicketMetrics aggregates the tickets matching filter.
func (s *ComplianceService) TicketMetrics(ctx context.Context, filter repository.TicketFilter) (*TicketMetrics, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err, "tickets", nil)
	}
	now := s.now()
	items := ticketItems(tickets)
	return &TicketMetrics{
		EvaluatedAt: now,
		Response:    s.engine.AggregateWindow(items, compliance.WindowResponse, now),
		Resolution:  s.engine.AggregateWindow(items, compliance.WindowResolution, now),
	}, nil
}

// TaskMetrics aggregates the tasks matching filter.
func (s *ComplianceService) TaskMetrics(ctx context.Context, filter repository.TaskFilter) (*WorkMetrics, error) {
	tasks, err := s.tasks.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err, "tasks", nil)
	}
	now := s.now()
	return &WorkMetrics{EvaluatedAt: now, Deadline: s.engine.Aggregate(taskItems(tasks), now)}, nil
}

// InstanceMetrics aggregates process instances in the given statuses.
func (s *ComplianceService) InstanceMetrics(ctx context.Context, statuses []domain.InstanceStatus) (*WorkMetrics, error) {
	instances, err := s.instances.List(ctx, statuses)
	if err != nil {
		return nil, apperrors.MapError(err, "process instances", nil)
	}
	now := s.now()
	return &WorkMetrics{EvaluatedAt: now, Deadline: s.engine.Aggregate(instanceItems(instances), now)}, nil
}

// Snapshot returns the latest published snapshot, falling back to the shared cache.
func (s *ComplianceService) Snapshot(ctx context.Context) (*domain.ComplianceSnapshot, error) {
	if snapshot := s.snapshots.Latest(); snapshot != nil {
		return snapshot, nil
	}
	if s.cache != nil {
		snapshot, err := s.cache.Latest(ctx)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", zap.Error(err))
		} else if snapshot != nil {
			return snapshot, nil
		}
	}
	return nil, apperrors.NewNotFound("compliance snapshot", nil)
}

// History lists recorded status transitions for one subject, oldest first.
func (s *ComplianceService) History(ctx context.Context, subject domain.SubjectType, id string) ([]domain.ComplianceHistory, error) {
	if s.history == nil {
		return []domain.ComplianceHistory{}, nil
	}
	entries, err := s.history.ListBySubject(ctx, subject, id)
	if err != nil {
		return nil, apperrors.MapError(err, "compliance history", map[string]any{"subject_id": id})
	}
	if entries == nil {
		entries = []domain.ComplianceHistory{}
	}
	return entries, nil
}

func (s *ComplianceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func ticketItems(tickets []domain.Ticket) []compliance.Item {
	items := make([]compliance.Item, 0, len(tickets))
	for i := range tickets {
		items = append(items, tickets[i].ComplianceItem())
	}
	return items
}

func taskItems(tasks []domain.Task) []compliance.Item {
	items := make([]compliance.Item, 0, len(tasks))
	for i := range tasks {
		items = append(items, tasks[i].ComplianceItem())
	}
	return items
}

func instanceItems(instances []domain.ProcessInstance) []compliance.Item {
	items := make([]compliance.Item, 0, len(instances))
	for i := range instances {
		items = append(items, instances[i].ComplianceItem())
	}
	return items
}
