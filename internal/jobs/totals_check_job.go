package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TotalsCheckJobName is the name of the nightly budget totals reconciliation job.
const TotalsCheckJobName = "totals_check"

// TotalsRecalculator recomputes the stored aggregates of every grupo and
// centro de custo from their itens. The aggregates are maintained
// synchronously inside every approval transaction, so under normal
// operation this job is a no-op safety net against drift from manual
// database changes.
type TotalsRecalculator interface {
	RefreshAll(ctx context.Context) error
}

// TotalsCheckJob reconciles the denormalized budget roll-ups overnight.
type TotalsCheckJob struct {
	orcamento TotalsRecalculator
	logger    *zap.Logger
	timeout   time.Duration
}

func NewTotalsCheckJob(orcamento TotalsRecalculator, logger *zap.Logger, timeout time.Duration) *TotalsCheckJob {
	return &TotalsCheckJob{
		orcamento: orcamento,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes the reconciliation. Called by the scheduler.
func (j *TotalsCheckJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting budget totals reconciliation")

	if err := j.orcamento.RefreshAll(ctx); err != nil {
		j.logger.Error("budget totals reconciliation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("budget totals reconciliation completed",
		zap.Duration("duration", time.Since(start)))
}

// RegisterTotalsCheckJob registers the reconciliation job with the scheduler.
func RegisterTotalsCheckJob(scheduler *Scheduler, orcamento TotalsRecalculator, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewTotalsCheckJob(orcamento, logger, timeout)
	return scheduler.AddJob(TotalsCheckJobName, cronExpr, job.Run)
}
