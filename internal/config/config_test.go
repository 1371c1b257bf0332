package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slaworks/sla-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SLA_AT_RISK_PERCENT", "")
	t.Setenv("SLA_OVERDUE_PERCENT", "")
	t.Setenv("SLA_SWEEP_INTERVAL_SECONDS", "")
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("NOTIFY_QUEUE_SIZE", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 256, cfg.Notification.QueueSize)
	assert.Equal(t, 80.0, cfg.SLA.AtRiskPercent)
	assert.Equal(t, 100.0, cfg.SLA.OverduePercent)
	assert.Equal(t, time.Minute, cfg.Sweep.Interval())
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SLA_AT_RISK_PERCENT", "70.5")
	t.Setenv("SLA_OVERDUE_PERCENT", "95")
	t.Setenv("SLA_SWEEP_INTERVAL_SECONDS", "15")
	t.Setenv("SLA_SNAPSHOT_TTL_SECONDS", "0")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 70.5, cfg.SLA.AtRiskPercent)
	assert.Equal(t, 95.0, cfg.SLA.OverduePercent)
	assert.Equal(t, 15*time.Second, cfg.Sweep.Interval())
	assert.Equal(t, time.Duration(0), cfg.Sweep.SnapshotTTL())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_RejectsBadThresholds(t *testing.T) {
	t.Setenv("SLA_AT_RISK_PERCENT", "100")
	t.Setenv("SLA_OVERDUE_PERCENT", "100")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("SLA_AT_RISK_PERCENT", "80")
	t.Setenv("SLA_OVERDUE_PERCENT", "160")
	_, err = config.Load()
	assert.Error(t, err)

	t.Setenv("SLA_OVERDUE_PERCENT", "100")
	t.Setenv("SLA_AT_RISK_PERCENT", "eighty")
	_, err = config.Load()
	assert.Error(t, err)
}
