package compliance

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// FormatDuration renders a coarse duration: "Nd", "Nd Nh", "Nh Nm" or "Nm".
// Sub-minute values round up to "1m" so at least one non-zero unit is shown.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	days := int(d / day)
	hours := int(d % day / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0 && hours == 0:
		return fmt.Sprintf("%dd", days)
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "1m"
	}
}

// RemainingText describes the time left until deadline, or how late ref is.
func RemainingText(deadline, ref time.Time) string {
	if ref.Before(deadline) {
		return FormatDuration(deadline.Sub(ref))
	}
	return "overdue by " + FormatDuration(ref.Sub(deadline))
}
