package dto

import (
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
)

// TicketSLAResponse is the SLA view of a ticket.
type TicketSLAResponse struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	Title           string                `json:"title"`
	Tier            compliance.Tier       `json:"tier"`
	Priority        compliance.Priority   `json:"priority"`
	Status          domain.TicketStatus   `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	FirstResponseAt *time.Time            `json:"first_response_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
	ClosedAt        *time.Time            `json:"closed_at"`
	SLABreachedAt   *time.Time            `json:"sla_breached_at"`
	Response        WindowStatusResponse  `json:"response"`
	Resolution      WindowStatusResponse  `json:"resolution"`
	Governing       compliance.WindowKind `json:"governing_window"`
	Escalate        bool                  `json:"escalate"`
	EvaluatedAt     time.Time             `json:"evaluated_at"`
}

// TicketListQuery captures query filters for ticket compliance listings.
type TicketListQuery struct {
	Tiers       []compliance.Tier
	Priorities  []compliance.Priority
	Statuses    []domain.TicketStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TicketMetricsResponse aggregates both ticket windows.
type TicketMetricsResponse struct {
	EvaluatedAt time.Time          `json:"evaluated_at"`
	Response    compliance.Metrics `json:"response"`
	Resolution  compliance.Metrics `json:"resolution"`
}
