package dto

import (
	"time"

	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/domain"
)

// StatusPresentation is the display label and color of a status.
type StatusPresentation struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusPresentation = map[compliance.Status]StatusPresentation{
	compliance.StatusOnTime:    {Label: "On Time", Color: "green"},
	compliance.StatusAtRisk:    {Label: "At Risk", Color: "amber"},
	compliance.StatusOverdue:   {Label: "Overdue", Color: "red"},
	compliance.StatusCompleted: {Label: "Completed", Color: "blue"},
}

var untrackedPresentation = StatusPresentation{Label: "Not Tracked", Color: "gray"}

// Present returns the display entry for a status. Unknown statuses render as untracked.
func Present(status compliance.Status) StatusPresentation {
	if p, ok := statusPresentation[status]; ok {
		return p
	}
	return untrackedPresentation
}

// WindowStatusResponse renders one classified window. Untracked windows carry
// only the neutral presentation.
type WindowStatusResponse struct {
	Tracked       bool              `json:"tracked"`
	Status        compliance.Status `json:"status,omitempty"`
	Percentage    float64           `json:"percentage"`
	IsOverdue     bool              `json:"is_overdue"`
	IsCompleted   bool              `json:"is_completed"`
	RemainingText string            `json:"remaining_text,omitempty"`
	Deadline      *time.Time        `json:"deadline,omitempty"`
	StatusPresentation
}

// NewWindowStatus converts classifier output, accepting nil for untracked windows.
func NewWindowStatus(status *compliance.ComplianceStatus) WindowStatusResponse {
	if status == nil {
		return WindowStatusResponse{StatusPresentation: untrackedPresentation}
	}
	deadline := status.Deadline
	return WindowStatusResponse{
		Tracked:            true,
		Status:             status.Status,
		Percentage:         status.Percentage,
		IsOverdue:          status.IsOverdue,
		IsCompleted:        status.IsCompleted,
		RemainingText:      status.RemainingText,
		Deadline:           &deadline,
		StatusPresentation: Present(status.Status),
	}
}

// WorkItemDeadlineResponse is the deadline view of a BPM task or process instance.
type WorkItemDeadlineResponse struct {
	SubjectType domain.SubjectType   `json:"subject_type"`
	SubjectID   string               `json:"subject_id"`
	Deadline    WindowStatusResponse `json:"deadline"`
	Escalate    bool                 `json:"escalate"`
	EvaluatedAt time.Time            `json:"evaluated_at"`
}

// WorkMetricsResponse aggregates BPM deadlines.
type WorkMetricsResponse struct {
	EvaluatedAt time.Time          `json:"evaluated_at"`
	Deadline    compliance.Metrics `json:"deadline"`
}

// ClassifyRequest classifies an ad hoc window. Either Deadline or the
// Tier/Priority/Kind triple must be given.
type ClassifyRequest struct {
	Start       time.Time  `json:"start"`
	Deadline    *time.Time `json:"deadline"`
	CompletedAt *time.Time `json:"completed_at"`
	Completed   bool       `json:"completed"`
	Now         *time.Time `json:"now"`
	Tier        string     `json:"tier"`
	Priority    string     `json:"priority"`
	Kind        string     `json:"kind"`
}

// ClassifyResponse echoes the evaluated window.
type ClassifyResponse struct {
	Start       time.Time            `json:"start"`
	Deadline    *time.Time           `json:"deadline"`
	EvaluatedAt time.Time            `json:"evaluated_at"`
	Window      WindowStatusResponse `json:"window"`
}

// MatrixResponse lists the configured matrix and thresholds.
type MatrixResponse struct {
	Thresholds compliance.Thresholds                    `json:"thresholds"`
	Entries    []compliance.MatrixEntry                 `json:"entries"`
	Statuses   map[compliance.Status]StatusPresentation `json:"statuses"`
}

// NewMatrixResponse renders the engine configuration.
func NewMatrixResponse(engine *compliance.Engine) MatrixResponse {
	statuses := make(map[compliance.Status]StatusPresentation, len(statusPresentation))
	for status, p := range statusPresentation {
		statuses[status] = p
	}
	return MatrixResponse{
		Thresholds: engine.Thresholds(),
		Entries:    engine.Matrix().Entries(),
		Statuses:   statuses,
	}
}

// HistoryEntryResponse is one recorded status transition.
type HistoryEntryResponse struct {
	ID         string                `json:"id"`
	Window     compliance.WindowKind `json:"window"`
	OldStatus  *compliance.Status    `json:"old_status"`
	NewStatus  compliance.Status     `json:"new_status"`
	Percentage float64               `json:"percentage"`
	CreatedAt  time.Time             `json:"created_at"`
}
