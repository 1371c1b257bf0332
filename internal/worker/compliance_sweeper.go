package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/slaworks/sla-service/internal/domain"
)

// Sweeper runs one compliance pass.
type Sweeper interface {
	Sweep(ctx context.Context) (*domain.ComplianceSnapshot, error)
}

// ComplianceSweeper periodically re-evaluates every tracked record.
type ComplianceSweeper struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewComplianceSweeper builds a sweeper; a non-positive interval defaults to one minute.
func NewComplianceSweeper(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *ComplianceSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplianceSweeper{sweeper: sweeper, interval: interval, logger: logger}
}

// Run sweeps immediately and then on every tick until ctx is cancelled. A
// failed pass is logged and the loop continues.
func (w *ComplianceSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("compliance sweeper started", zap.Duration("interval", w.interval))
	for {
		w.runOnce(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("compliance sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *ComplianceSweeper) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.sweeper.Sweep(ctx); err != nil {
		w.logger.Error("compliance sweep failed", zap.Error(err))
	}
}
