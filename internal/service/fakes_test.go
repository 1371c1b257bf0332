package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
	"github.com/slaworks/sla-service/internal/events"
	"github.com/slaworks/sla-service/internal/repository"
)

type slaUpdate struct {
	ID         string
	Status     compliance.Status
	BreachedAt *time.Time
}

type fakeTicketRepo struct {
	tickets []domain.Ticket
	updates []slaUpdate
	listErr error
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			ticket := r.tickets[i]
			return &ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if len(filter.Tiers) > 0 && !containsValue(filter.Tiers, ticket.Tier) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsValue(filter.Priorities, ticket.Priority) {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateSLAState(_ context.Context, id string, status compliance.Status, breachedAt *time.Time) error {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].SLAStatus = &status
			if r.tickets[i].SLABreachedAt == nil {
				r.tickets[i].SLABreachedAt = breachedAt
			}
			r.updates = append(r.updates, slaUpdate{ID: id, Status: status, BreachedAt: breachedAt})
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeTaskRepo struct {
	tasks   []domain.Task
	updates []slaUpdate
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			task := r.tasks[i]
			return &task, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTaskRepo) ListWithFilter(_ context.Context, _ repository.TaskFilter) ([]domain.Task, error) {
	return append([]domain.Task(nil), r.tasks...), nil
}

func (r *fakeTaskRepo) UpdateSLAState(_ context.Context, id string, status compliance.Status, breachedAt *time.Time) error {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i].SLAStatus = &status
			r.updates = append(r.updates, slaUpdate{ID: id, Status: status, BreachedAt: breachedAt})
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeInstanceRepo struct {
	instances []domain.ProcessInstance
	updates   []slaUpdate
}

func (r *fakeInstanceRepo) GetByID(_ context.Context, id string) (*domain.ProcessInstance, error) {
	for i := range r.instances {
		if r.instances[i].ID == id {
			instance := r.instances[i]
			return &instance, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeInstanceRepo) List(_ context.Context, statuses []domain.InstanceStatus) ([]domain.ProcessInstance, error) {
	var out []domain.ProcessInstance
	for _, instance := range r.instances {
		if len(statuses) > 0 && !containsValue(statuses, instance.Status) {
			continue
		}
		out = append(out, instance)
	}
	return out, nil
}

func (r *fakeInstanceRepo) UpdateSLAState(_ context.Context, id string, status compliance.Status, breachedAt *time.Time) error {
	for i := range r.instances {
		if r.instances[i].ID == id {
			r.instances[i].SLAStatus = &status
			r.updates = append(r.updates, slaUpdate{ID: id, Status: status, BreachedAt: breachedAt})
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeHistoryRepo struct {
	entries []domain.ComplianceHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.ComplianceHistory) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListBySubject(_ context.Context, subjectType domain.SubjectType, subjectID string) ([]domain.ComplianceHistory, error) {
	var out []domain.ComplianceHistory
	for _, entry := range r.entries {
		if entry.SubjectType == subjectType && entry.SubjectID == subjectID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeCache struct {
	saved *domain.ComplianceSnapshot
	ttl   time.Duration
}

func (c *fakeCache) Save(_ context.Context, snapshot *domain.ComplianceSnapshot, ttl time.Duration) error {
	c.saved = snapshot
	c.ttl = ttl
	return nil
}

func (c *fakeCache) Latest(_ context.Context) (*domain.ComplianceSnapshot, error) {
	return c.saved, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func containsValue[T comparable](values []T, want T) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
