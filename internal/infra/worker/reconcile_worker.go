package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/usecase"
)

// Reconciler re-asserts the funnel invariants over every record.
type Reconciler interface {
	Reconcile(ctx context.Context) (usecase.ReconcileReport, error)
}

// ReconcileWorker runs the reconciler once at start and then on every tick.
type ReconcileWorker struct {
	reconciler   Reconciler
	tickInterval time.Duration
	logger       *zap.Logger
	onReport     func(usecase.ReconcileReport)
}

func NewReconcileWorker(r Reconciler, interval time.Duration, logger *zap.Logger, onReport func(usecase.ReconcileReport)) *ReconcileWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileWorker{
		reconciler:   r,
		tickInterval: interval,
		logger:       logger,
		onReport:     onReport,
	}
}

func (w *ReconcileWorker) Start(ctx context.Context) {
	w.logger.Info("reconcile worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconcile worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReconcileWorker) runOnce(ctx context.Context) {
	report, err := w.reconciler.Reconcile(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("reconcile failed", zap.Error(err), zap.Int("repaired_before_failure", report.Repaired()))
	}
	if w.onReport != nil {
		w.onReport(report)
	}
}
