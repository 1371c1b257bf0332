package compliance

import (
	"strings"
	"time"

	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// Tier is the service-level category of the tracked item.
type Tier string

const (
	TierBasic      Tier = "basic"
	TierStandard   Tier = "standard"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Tiers lists tiers from the most to the least generous deadlines.
var Tiers = []Tier{TierBasic, TierStandard, TierPremium, TierEnterprise}

// Priority is the urgency axis of the deadline matrix.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists priorities from the least to the most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// WindowKind identifies which clock of an item is measured.
type WindowKind string

const (
	WindowResponse   WindowKind = "response"
	WindowResolution WindowKind = "resolution"
)

// WindowKinds lists every supported window kind.
var WindowKinds = []WindowKind{WindowResponse, WindowResolution}

// Status is the normalized classification of a window.
type Status string

const (
	StatusOnTime    Status = "on_time"
	StatusAtRisk    Status = "at_risk"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// Statuses lists every status the classifier emits.
var Statuses = []Status{StatusOnTime, StatusAtRisk, StatusOverdue, StatusCompleted}

// ComplianceStatus is the classifier output for a single window.
type ComplianceStatus struct {
	Status        Status    `json:"status"`
	Percentage    float64   `json:"percentage"`
	IsOverdue     bool      `json:"is_overdue"`
	IsCompleted   bool      `json:"is_completed"`
	RemainingText string    `json:"remaining_text"`
	Deadline      time.Time `json:"deadline"`
}

// ParseTier validates a tier label.
func ParseTier(val string) (Tier, error) {
	candidate := Tier(normalize(val))
	for _, tier := range Tiers {
		if tier == candidate {
			return tier, nil
		}
	}
	return "", apperrors.NewValidationError("unknown tier", map[string]any{"tier": val})
}

// ParsePriority validates a priority label.
func ParsePriority(val string) (Priority, error) {
	candidate := Priority(normalize(val))
	for _, priority := range Priorities {
		if priority == candidate {
			return priority, nil
		}
	}
	return "", apperrors.NewValidationError("unknown priority", map[string]any{"priority": val})
}

// ParseWindowKind validates a window kind label.
func ParseWindowKind(val string) (WindowKind, error) {
	candidate := WindowKind(normalize(val))
	for _, kind := range WindowKinds {
		if kind == candidate {
			return kind, nil
		}
	}
	return "", apperrors.NewValidationError("unknown window kind", map[string]any{"kind": val})
}

// ParseStatus validates a status label.
func ParseStatus(val string) (Status, error) {
	candidate := Status(normalize(val))
	for _, status := range Statuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", apperrors.NewValidationError("unknown status", map[string]any{"status": val})
}

func normalize(val string) string {
	return strings.ToLower(strings.TrimSpace(val))
}
