// Package compliance classifies deadline windows for tickets and BPM work items.
//
// Every function is a pure computation over its arguments. The current time is
// always passed in by the caller.
package compliance

import (
	"math"
	"time"

	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// MaxPercentage caps the consumed percentage of overdue windows.
const MaxPercentage = 150.0

// Thresholds holds the consumed-percentage boundaries used by the classifier.
type Thresholds struct {
	AtRisk  float64 `json:"at_risk"`
	Overdue float64 `json:"overdue"`
}

// DefaultThresholds returns the 80% warning and 100% breach boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{AtRisk: 80, Overdue: 100}
}

// Validate rejects thresholds that cannot produce all three open statuses.
func (t Thresholds) Validate() error {
	if t.AtRisk <= 0 || t.Overdue <= 0 {
		return apperrors.NewValidationError("sla thresholds must be positive", map[string]any{
			"at_risk": t.AtRisk, "overdue": t.Overdue,
		})
	}
	if t.AtRisk >= t.Overdue {
		return apperrors.NewValidationError("at-risk threshold must be below overdue threshold", map[string]any{
			"at_risk": t.AtRisk, "overdue": t.Overdue,
		})
	}
	if t.Overdue > MaxPercentage {
		return apperrors.NewValidationError("overdue threshold exceeds the percentage cap", map[string]any{
			"overdue": t.Overdue, "max": MaxPercentage,
		})
	}
	return nil
}

func (t Thresholds) classify(percentage float64) Status {
	switch {
	case percentage >= t.Overdue:
		return StatusOverdue
	case percentage >= t.AtRisk:
		return StatusAtRisk
	default:
		return StatusOnTime
	}
}

// Engine resolves and classifies deadline windows.
type Engine struct {
	matrix     Matrix
	thresholds Thresholds
}

// NewEngine builds an engine. A nil matrix disables tier-based windows.
func NewEngine(matrix Matrix, thresholds Thresholds) *Engine {
	if matrix == nil {
		matrix = Matrix{}
	}
	return &Engine{matrix: matrix, thresholds: thresholds}
}

// Matrix returns the configured deadline matrix.
func (e *Engine) Matrix() Matrix {
	return e.matrix
}

// Thresholds returns the configured classification thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// ResolveWindow returns the window length in hours for the tier and priority.
// ok is false when the combination is not SLA-tracked.
func (e *Engine) ResolveWindow(tier Tier, priority Priority, kind WindowKind) (hours float64, ok bool) {
	return e.matrix.Hours(tier, priority, kind)
}

// Window is one tracked clock.
type Window struct {
	Kind        WindowKind
	Start       time.Time
	Deadline    time.Time
	CompletedAt *time.Time
	// Completed marks windows closed by their owner without a completion timestamp.
	Completed bool
}

// IsCompleted reports whether the owner closed the window.
func (w Window) IsCompleted() bool {
	return w.Completed || w.CompletedAt != nil
}

// Classify classifies a window given explicit timestamps. It returns nil when
// start or deadline is missing.
func (e *Engine) Classify(start, deadline time.Time, completedAt *time.Time, now time.Time) *ComplianceStatus {
	return e.ClassifyWindow(Window{Start: start, Deadline: deadline, CompletedAt: completedAt}, now)
}

// ClassifyWindow classifies a window. Completed windows are measured at their
// completion time when one is known.
func (e *Engine) ClassifyWindow(w Window, now time.Time) *ComplianceStatus {
	if w.Start.IsZero() || w.Deadline.IsZero() {
		return nil
	}

	ref := now
	if w.CompletedAt != nil {
		ref = *w.CompletedAt
	}
	completed := w.IsCompleted()
	percentage := consumedPercentage(w.Start, w.Deadline, ref)

	status := StatusCompleted
	if !completed {
		status = e.thresholds.classify(percentage)
	}

	return &ComplianceStatus{
		Status:        status,
		Percentage:    percentage,
		IsOverdue:     !completed && percentage >= e.thresholds.Overdue,
		IsCompleted:   completed,
		RemainingText: RemainingText(w.Deadline, ref),
		Deadline:      w.Deadline,
	}
}

// consumedPercentage is elapsed over total window time, clamped to [0, MaxPercentage].
// Zero-length and inverted windows count as fully consumed.
func consumedPercentage(start, deadline, ref time.Time) float64 {
	total := deadline.Sub(start)
	if total <= 0 {
		return 100
	}
	percentage := float64(ref.Sub(start)) / float64(total) * 100
	return math.Min(math.Max(percentage, 0), MaxPercentage)
}
