package events

import (
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSLAAtRisk         EventType = "sla_at_risk"
	EventSLABreached       EventType = "sla_breached"
	EventSnapshotPublished EventType = "sla_snapshot_published"
)

// Subject identifies the record an event is about.
type Subject struct {
	Type domain.SubjectType `json:"type"`
	ID   string             `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   Subject     `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StatusChangedPayload accompanies at-risk and breach events.
type StatusChangedPayload struct {
	Window        compliance.WindowKind `json:"window"`
	OldStatus     *compliance.Status    `json:"old_status,omitempty"`
	NewStatus     compliance.Status     `json:"new_status"`
	Percentage    float64               `json:"percentage"`
	Deadline      time.Time             `json:"deadline"`
	RemainingText string                `json:"remaining_text"`
}

// SnapshotPublishedPayload summarizes a published snapshot.
type SnapshotPublishedPayload struct {
	GeneratedAt time.Time `json:"generated_at"`
	Escalations int       `json:"escalations"`
}
