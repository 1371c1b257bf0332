package compliance

import "time"

// Item is the snapshot of a ticket, task or process instance the engine needs.
// Tier and Priority are optional; Deadline, when set, overrides the matrix for
// the resolution window.
type Item struct {
	ID          string
	Tier        Tier
	Priority    Priority
	Start       time.Time
	Deadline    *time.Time
	RespondedAt *time.Time
	CompletedAt *time.Time
	Completed   bool
}

// IsCompleted reports whether the owner closed the item.
func (i Item) IsCompleted() bool {
	return i.Completed || i.CompletedAt != nil
}

// Window resolves one clock of the item. ok is false when the window is not
// tracked for this item.
func (e *Engine) Window(item Item, kind WindowKind) (Window, bool) {
	if item.Start.IsZero() {
		return Window{}, false
	}

	switch kind {
	case WindowResponse:
		length, ok := e.matrix.Duration(item.Tier, item.Priority, WindowResponse)
		if !ok {
			return Window{}, false
		}
		w := Window{Kind: kind, Start: item.Start, Deadline: item.Start.Add(length)}
		switch {
		case item.RespondedAt != nil:
			w.CompletedAt = item.RespondedAt
		case item.IsCompleted():
			// closing an item without a reply also stops its response clock
			w.CompletedAt = item.CompletedAt
			w.Completed = true
		}
		return w, true
	case WindowResolution:
		w := Window{Kind: kind, Start: item.Start, CompletedAt: item.CompletedAt, Completed: item.Completed}
		if item.Deadline != nil {
			w.Deadline = *item.Deadline
			return w, !w.Deadline.IsZero()
		}
		length, ok := e.matrix.Duration(item.Tier, item.Priority, WindowResolution)
		if !ok {
			return Window{}, false
		}
		w.Deadline = item.Start.Add(length)
		return w, true
	default:
		return Window{}, false
	}
}

// Evaluate classifies one window of the item, or returns nil when it is untracked.
func (e *Engine) Evaluate(item Item, kind WindowKind, now time.Time) *ComplianceStatus {
	w, ok := e.Window(item, kind)
	if !ok {
		return nil
	}
	return e.ClassifyWindow(w, now)
}

// GoverningWindow is the response window while it is tracked and unanswered,
// otherwise the resolution window.
func (e *Engine) GoverningWindow(item Item) WindowKind {
	if item.RespondedAt == nil && !item.IsCompleted() {
		if _, ok := e.Window(item, WindowResponse); ok {
			return WindowResponse
		}
	}
	return WindowResolution
}

// ShouldEscalate reports whether the governing window of the item is overdue.
func (e *Engine) ShouldEscalate(item Item, now time.Time) bool {
	status := e.Evaluate(item, e.GoverningWindow(item), now)
	return status != nil && status.Status == StatusOverdue
}
