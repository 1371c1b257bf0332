package domain

import (
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
)

// TaskStatus enumerates lifecycle states for BPM tasks.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Task is a human task inside a process instance with a direct due date.
type Task struct {
	ID            string
	InstanceID    string
	Name          string
	Assignee      *string
	Status        TaskStatus
	StartedAt     time.Time
	DueAt         *time.Time
	CompletedAt   *time.Time
	SLAStatus     *compliance.Status
	SLABreachedAt *time.Time
}

// IsActive reports whether the task still runs a deadline clock.
func (t *Task) IsActive() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}

// ComplianceItem converts the task into an engine snapshot.
func (t *Task) ComplianceItem() compliance.Item {
	if t.Status == TaskStatusCancelled {
		return compliance.Item{ID: t.ID}
	}
	return compliance.Item{
		ID:          t.ID,
		Start:       t.StartedAt,
		Deadline:    t.DueAt,
		CompletedAt: t.CompletedAt,
		Completed:   t.Status == TaskStatusCompleted,
	}
}

// InstanceStatus enumerates lifecycle states for process instances.
type InstanceStatus string

const (
	InstanceStatusRunning    InstanceStatus = "running"
	InstanceStatusCompleted  InstanceStatus = "completed"
	InstanceStatusTerminated InstanceStatus = "terminated"
)

// ProcessInstance is a running BPM process with an overall due date.
type ProcessInstance struct {
	ID            string
	ProcessKey    string
	Status        InstanceStatus
	StartedAt     time.Time
	DueAt         *time.Time
	CompletedAt   *time.Time
	SLAStatus     *compliance.Status
	SLABreachedAt *time.Time
}

// IsActive reports whether the instance still runs a deadline clock.
func (p *ProcessInstance) IsActive() bool {
	return p.Status == InstanceStatusRunning
}

// ComplianceItem converts the instance into an engine snapshot.
func (p *ProcessInstance) ComplianceItem() compliance.Item {
	if p.Status == InstanceStatusTerminated {
		return compliance.Item{ID: p.ID}
	}
	return compliance.Item{
		ID:          p.ID,
		Start:       p.StartedAt,
		Deadline:    p.DueAt,
		CompletedAt: p.CompletedAt,
		Completed:   p.Status == InstanceStatusCompleted,
	}
}
