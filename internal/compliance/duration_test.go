package compliance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slaworks/sla-service/internal/compliance"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "1m"},
		{30 * time.Second, "1m"},
		{45 * time.Minute, "45m"},
		{59*time.Minute + 59*time.Second, "59m"},
		{time.Hour, "1h 0m"},
		{90 * time.Minute, "1h 30m"},
		{24 * time.Hour, "1d"},
		{26 * time.Hour, "1d 2h"},
		{49*time.Hour + 30*time.Minute, "2d 1h"},
		{-90 * time.Minute, "1h 30m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, compliance.FormatDuration(tc.in), tc.in.String())
	}
}

func TestRemainingText(t *testing.T) {
	deadline := t0.Add(3 * 24 * time.Hour)

	assert.Equal(t, "3d", compliance.RemainingText(deadline, t0))
	assert.Equal(t, "2h 15m", compliance.RemainingText(deadline, deadline.Add(-135*time.Minute)))
	assert.Equal(t, "overdue by 1m", compliance.RemainingText(deadline, deadline))
	assert.Equal(t, "overdue by 1d 4h", compliance.RemainingText(deadline, deadline.Add(28*time.Hour)))
}
