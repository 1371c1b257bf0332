package domain

import (
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
)

// BreachRef points at an item whose governing window is overdue.
type BreachRef struct {
	SubjectType SubjectType           `json:"subject_type"`
	SubjectID   string                `json:"subject_id"`
	Window      compliance.WindowKind `json:"window"`
	Percentage  float64               `json:"percentage"`
	Deadline    time.Time             `json:"deadline"`
}

// ComplianceSnapshot is the aggregate published by one sweep. All figures were
// computed against GeneratedAt.
type ComplianceSnapshot struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	TicketResponse   compliance.Metrics `json:"ticket_response"`
	TicketResolution compliance.Metrics `json:"ticket_resolution"`
	Tasks            compliance.Metrics `json:"tasks"`
	Instances        compliance.Metrics `json:"instances"`
	Escalations      []BreachRef        `json:"escalations"`
}
