package compliance

import "time"

// Metrics summarizes a collection of items. Untracked items are counted apart
// and never enter the rates.
type Metrics struct {
	Total            int     `json:"total"`
	OnTime           int     `json:"on_time"`
	AtRisk           int     `json:"at_risk"`
	Overdue          int     `json:"overdue"`
	Completed        int     `json:"completed"`
	CompletedOnTime  int     `json:"completed_on_time"`
	CompletedLate    int     `json:"completed_late"`
	Untracked        int     `json:"untracked"`
	OnTimePercentage float64 `json:"on_time_percentage"`
	ComplianceRate   float64 `json:"compliance_rate"`
}

// Count returns the number of items in the given status.
func (m Metrics) Count(status Status) int {
	switch status {
	case StatusOnTime:
		return m.OnTime
	case StatusAtRisk:
		return m.AtRisk
	case StatusOverdue:
		return m.Overdue
	case StatusCompleted:
		return m.Completed
	default:
		return 0
	}
}

// Aggregate summarizes the resolution window of every item.
func (e *Engine) Aggregate(items []Item, now time.Time) Metrics {
	return e.AggregateWindow(items, WindowResolution, now)
}

// AggregateWindow summarizes the given window kind of every item in one pass.
func (e *Engine) AggregateWindow(items []Item, kind WindowKind, now time.Time) Metrics {
	var m Metrics
	for _, item := range items {
		status := e.Evaluate(item, kind, now)
		if status == nil {
			m.Untracked++
			continue
		}
		m.add(status, e.thresholds)
	}
	m.computeRates()
	return m
}

func (m *Metrics) add(status *ComplianceStatus, thresholds Thresholds) {
	m.Total++
	switch status.Status {
	case StatusOnTime:
		m.OnTime++
	case StatusAtRisk:
		m.AtRisk++
	case StatusOverdue:
		m.Overdue++
	case StatusCompleted:
		m.Completed++
		// completed items keep the percentage measured at completion
		if status.Percentage < thresholds.Overdue {
			m.CompletedOnTime++
		} else {
			m.CompletedLate++
		}
	}
}

func (m *Metrics) computeRates() {
	if m.Total > 0 {
		m.OnTimePercentage = float64(m.OnTime) / float64(m.Total) * 100
	}
	if m.Completed > 0 {
		m.ComplianceRate = float64(m.CompletedOnTime) / float64(m.Completed) * 100
	}
}
