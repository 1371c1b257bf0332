package domain

import (
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
)

// SubjectType identifies the owner of a tracked window.
type SubjectType string

const (
	SubjectTicket   SubjectType = "ticket"
	SubjectTask     SubjectType = "task"
	SubjectInstance SubjectType = "instance"
)

// ComplianceHistory is an immutable record of an observed status change.
type ComplianceHistory struct {
	ID          string
	SubjectType SubjectType
	SubjectID   string
	Window      compliance.WindowKind
	OldStatus   *compliance.Status
	NewStatus   compliance.Status
	Percentage  float64
	CreatedAt   time.Time
}
