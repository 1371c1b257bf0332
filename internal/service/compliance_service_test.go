package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/events"
	"github.com/slaworks/sla-service/internal/observability"
	"github.com/slaworks/sla-service/internal/repository"
	"github.com/slaworks/sla-service/internal/service"
	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

type fixture struct {
	tickets   *fakeTicketRepo
	tasks     *fakeTaskRepo
	instances *fakeInstanceRepo
	history   *fakeHistoryRepo
	cache     *fakeCache
	recorder  *eventRecorder
	svc       *service.ComplianceService
	now       time.Time
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		tickets:   &fakeTicketRepo{},
		tasks:     &fakeTaskRepo{},
		instances: &fakeInstanceRepo{},
		history:   &fakeHistoryRepo{},
		cache:     &fakeCache{},
		recorder:  &eventRecorder{},
		now:       now,
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{events.EventSLAAtRisk, events.EventSLABreached, events.EventSnapshotPublished} {
		dispatcher.Subscribe(eventType, f.recorder.handle)
	}
	f.svc = service.NewComplianceService(service.ComplianceDependencies{
		Engine:       compliance.NewEngine(compliance.DefaultMatrix(), compliance.DefaultThresholds()),
		TicketRepo:   f.tickets,
		TaskRepo:     f.tasks,
		InstanceRepo: f.instances,
		HistoryRepo:  f.history,
		Cache:        f.cache,
		Dispatcher:   dispatcher,
		Metrics:      observability.NewMetrics(),
		SnapshotTTL:  5 * time.Minute,
		Now:          func() time.Time { return f.now },
	})
	return f
}

// seed loads a mixed population evaluated at t0+5h.
func (f *fixture) seed() {
	f.tickets.tickets = []domain.Ticket{
		{ID: "t-overdue", Tier: compliance.TierStandard, Priority: compliance.PriorityHigh, Status: domain.TicketStatusPending, CreatedAt: t0},
		{ID: "t-at-risk", Tier: compliance.TierStandard, Priority: compliance.PriorityHigh, Status: domain.TicketStatusInProgress, CreatedAt: t0.Add(90 * time.Minute)},
		{ID: "t-resolved", Tier: compliance.TierStandard, Priority: compliance.PriorityHigh, Status: domain.TicketStatusResolved, CreatedAt: t0, ResolvedAt: ptr(t0.Add(2 * time.Hour))},
		{ID: "t-cancelled", Tier: compliance.TierStandard, Priority: compliance.PriorityHigh, Status: domain.TicketStatusCancelled, CreatedAt: t0},
	}
	f.tasks.tasks = []domain.Task{
		{ID: "task-1", InstanceID: "p-1", Name: "review", Status: domain.TaskStatusPending, StartedAt: t0, DueAt: ptr(t0.Add(10 * time.Hour))},
	}
	f.instances.instances = []domain.ProcessInstance{
		{ID: "p-1", ProcessKey: "onboarding", Status: domain.InstanceStatusRunning, StartedAt: t0, DueAt: ptr(t0.Add(4 * time.Hour))},
	}
}

func TestTicketCompliance_UnansweredPastResponseDeadline(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	view, err := f.svc.TicketCompliance(context.Background(), "t-overdue")
	require.NoError(t, err)

	require.NotNil(t, view.Response)
	assert.Equal(t, compliance.StatusOverdue, view.Response.Status)
	assert.InDelta(t, 125.0, view.Response.Percentage, 0.001)
	require.NotNil(t, view.Resolution)
	assert.Equal(t, compliance.StatusOnTime, view.Resolution.Status)
	assert.Equal(t, compliance.WindowResponse, view.Governing)
	assert.True(t, view.Escalate)
	assert.Equal(t, f.now, view.EvaluatedAt)
}

func TestTicketCompliance_CancelledIsUntracked(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	view, err := f.svc.TicketCompliance(context.Background(), "t-cancelled")
	require.NoError(t, err)
	assert.Nil(t, view.Response)
	assert.Nil(t, view.Resolution)
	assert.False(t, view.Escalate)
}

func TestTicketCompliance_NotFound(t *testing.T) {
	f := newFixture(t0)

	_, err := f.svc.TicketCompliance(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestTaskAndInstanceCompliance(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	task, err := f.svc.TaskCompliance(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTask, task.SubjectType)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, compliance.StatusOnTime, task.Deadline.Status)
	assert.InDelta(t, 50.0, task.Deadline.Percentage, 0.001)
	assert.False(t, task.Escalate)

	instance, err := f.svc.InstanceCompliance(context.Background(), "p-1")
	require.NoError(t, err)
	require.NotNil(t, instance.Deadline)
	assert.Equal(t, compliance.StatusOverdue, instance.Deadline.Status)
	assert.True(t, instance.Escalate)

	_, err = f.svc.InstanceCompliance(context.Background(), "p-404")
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestTicketMetrics(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	metrics, err := f.svc.TicketMetrics(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.Resolution.Total)
	assert.Equal(t, 2, metrics.Resolution.OnTime)
	assert.Equal(t, 1, metrics.Resolution.Completed)
	assert.Equal(t, 1, metrics.Resolution.CompletedOnTime)
	assert.Equal(t, 1, metrics.Resolution.Untracked)
	assert.InDelta(t, 100.0, metrics.Resolution.ComplianceRate, 0.001)

	assert.Equal(t, 3, metrics.Response.Total)
	assert.Equal(t, 1, metrics.Response.Overdue)
	assert.Equal(t, 1, metrics.Response.AtRisk)
	assert.Equal(t, 1, metrics.Response.Completed)
}

func TestTicketMetrics_FilterAppliesBeforeAggregation(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	metrics, err := f.svc.TicketMetrics(context.Background(), repository.TicketFilter{
		Tiers: []compliance.Tier{compliance.TierEnterprise},
	})
	require.NoError(t, err)
	assert.Equal(t, compliance.Metrics{}, metrics.Resolution)
}

func TestWorkMetrics(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	tasks, err := f.svc.TaskMetrics(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, tasks.Deadline.OnTime)

	instances, err := f.svc.InstanceMetrics(context.Background(), []domain.InstanceStatus{domain.InstanceStatusRunning})
	require.NoError(t, err)
	assert.Equal(t, 1, instances.Deadline.Overdue)
	assert.Equal(t, 0.0, instances.Deadline.OnTimePercentage)
}

func TestSweep_FlagsTransitionsAndPublishesSnapshot(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	snapshot, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.now, snapshot.GeneratedAt)

	require.Len(t, f.tickets.updates, 2)
	assert.Equal(t, slaUpdate{ID: "t-overdue", Status: compliance.StatusOverdue, BreachedAt: &f.now}, f.tickets.updates[0])
	assert.Equal(t, "t-at-risk", f.tickets.updates[1].ID)
	assert.Equal(t, compliance.StatusAtRisk, f.tickets.updates[1].Status)
	assert.Nil(t, f.tickets.updates[1].BreachedAt)

	require.Len(t, f.tasks.updates, 1)
	assert.Equal(t, compliance.StatusOnTime, f.tasks.updates[0].Status)
	require.Len(t, f.instances.updates, 1)
	assert.Equal(t, compliance.StatusOverdue, f.instances.updates[0].Status)

	assert.Len(t, f.history.entries, 4)
	assert.Len(t, f.recorder.ofType(events.EventSLABreached), 2)
	atRisk := f.recorder.ofType(events.EventSLAAtRisk)
	require.Len(t, atRisk, 1)
	assert.Equal(t, events.Subject{Type: domain.SubjectTicket, ID: "t-at-risk"}, atRisk[0].Subject)
	assert.NotEmpty(t, atRisk[0].ID)
	assert.Len(t, f.recorder.ofType(events.EventSnapshotPublished), 1)

	require.Len(t, snapshot.Escalations, 2)
	assert.Equal(t, "t-overdue", snapshot.Escalations[0].SubjectID)
	assert.Equal(t, compliance.WindowResponse, snapshot.Escalations[0].Window)
	assert.Equal(t, domain.SubjectInstance, snapshot.Escalations[1].SubjectType)

	assert.Equal(t, 1, snapshot.TicketResponse.Overdue)
	assert.Equal(t, 1, snapshot.TicketResolution.Untracked)
	assert.Equal(t, 1, snapshot.Tasks.OnTime)
	assert.Equal(t, 1, snapshot.Instances.Overdue)

	assert.Same(t, snapshot, f.cache.saved)
	assert.Equal(t, 5*time.Minute, f.cache.ttl)

	latest, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, snapshot, latest)
}

func TestSweep_UnchangedStatusIsNotRewritten(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()

	_, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	_, err = f.svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.tickets.updates, 2)
	assert.Len(t, f.history.entries, 4)
	assert.Len(t, f.recorder.ofType(events.EventSLABreached), 2)
	assert.Len(t, f.recorder.ofType(events.EventSnapshotPublished), 2)
}

func TestSweep_ReplyMovesTicketToResolutionWindow(t *testing.T) {
	f := newFixture(t0.Add(5 * time.Hour))
	f.seed()
	_, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	f.tickets.tickets[0].FirstResponseAt = ptr(t0.Add(5 * time.Hour))
	f.now = t0.Add(6 * time.Hour)
	snapshot, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)

	last := f.tickets.updates[len(f.tickets.updates)-1]
	assert.Equal(t, "t-overdue", last.ID)
	assert.Equal(t, compliance.StatusOnTime, last.Status)
	require.NotNil(t, f.tickets.tickets[0].SLABreachedAt)
	assert.Equal(t, t0.Add(5*time.Hour), *f.tickets.tickets[0].SLABreachedAt)

	history, err := f.svc.History(context.Background(), domain.SubjectTicket, "t-overdue")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, compliance.WindowResolution, history[1].Window)
	require.NotNil(t, history[1].OldStatus)
	assert.Equal(t, compliance.StatusOverdue, *history[1].OldStatus)

	for _, ref := range snapshot.Escalations {
		assert.NotEqual(t, "t-overdue", ref.SubjectID)
	}
}

func TestSweep_ListFailureAborts(t *testing.T) {
	f := newFixture(t0)
	f.tickets.listErr = assert.AnError

	_, err := f.svc.Sweep(context.Background())
	require.Error(t, err)
	_, err = f.svc.Snapshot(context.Background())
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestSnapshot_FallsBackToCache(t *testing.T) {
	f := newFixture(t0)
	cached := &domain.ComplianceSnapshot{GeneratedAt: t0.Add(-time.Minute)}
	f.cache.saved = cached

	snapshot, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, cached, snapshot)
}

func TestSnapshotStore_RejectsOlderSnapshot(t *testing.T) {
	store := service.NewSnapshotStore()
	newer := &domain.ComplianceSnapshot{GeneratedAt: t0.Add(time.Minute)}
	older := &domain.ComplianceSnapshot{GeneratedAt: t0}

	assert.Nil(t, store.Latest())
	assert.True(t, store.Publish(newer))
	assert.False(t, store.Publish(older))
	assert.False(t, store.Publish(nil))
	assert.Same(t, newer, store.Latest())
}
