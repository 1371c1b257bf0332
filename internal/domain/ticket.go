package domain

import (
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// Ticket is the support request tracked against the tier x priority matrix.
type Ticket struct {
	ID              string
	ExternalKey     string
	Title           string
	Tier            compliance.Tier
	Priority        compliance.Priority
	Status          TicketStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	SLAStatus       *compliance.Status
	SLABreachedAt   *time.Time
}

// IsActive reports whether the ticket still runs an SLA clock.
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusPending || t.Status == TicketStatusInProgress
}

// ComplianceItem converts the ticket into an engine snapshot. Cancelled tickets
// carry no start time and are therefore untracked.
func (t *Ticket) ComplianceItem() compliance.Item {
	if t.Status == TicketStatusCancelled {
		return compliance.Item{ID: t.ID}
	}
	item := compliance.Item{
		ID:          t.ID,
		Tier:        t.Tier,
		Priority:    t.Priority,
		Start:       t.CreatedAt,
		RespondedAt: t.FirstResponseAt,
	}
	if t.Status == TicketStatusResolved || t.Status == TicketStatusClosed {
		item.Completed = true
		item.CompletedAt = t.ResolvedAt
		if item.CompletedAt == nil {
			item.CompletedAt = t.ClosedAt
		}
	}
	return item
}
