package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"lingo-server/internal/config"
	"lingo-server/internal/repository"
)

// Pool runs a fixed number of job pollers plus a sweep loop that requeues
// jobs stuck in the running state.
type Pool struct {
	cfg          *config.Config
	orchestrator *Orchestrator
	jobs         repository.JobRepository
	logger       *zap.Logger
}

func NewPool(cfg *config.Config, orchestrator *Orchestrator, jobs repository.JobRepository, logger *zap.Logger) *Pool {
	return &Pool{
		cfg:          cfg,
		orchestrator: orchestrator,
		jobs:         jobs,
		logger:       logger.Named("worker_pool"),
	}
}

// Run blocks until ctx is cancelled and all pollers have drained their
// current job.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < p.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.pollLoop(ctx, workerID)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.sweepLoop(ctx)
	}()

	p.logger.Info("Worker pool started",
		zap.Int("workers", p.cfg.WorkerCount),
		zap.Duration("poll_interval", p.cfg.WorkerPollInterval),
		zap.Duration("stale_timeout", p.cfg.JobStaleTimeout))

	wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// pollLoop drains the pending queue, then sleeps for the poll interval.
func (p *Pool) pollLoop(ctx context.Context, workerID int) {
	logger := p.logger.With(zap.Int("worker_id", workerID))

	for {
		if ctx.Err() != nil {
			return
		}

		processed, err := p.orchestrator.ProcessNext(ctx)
		if err != nil {
			logger.Error("Failed to process next job", zap.Error(err))
		}
		if processed {
			// Queue may hold more work, go straight back for it.
			continue
		}

		select {
		case <-time.After(p.cfg.WorkerPollInterval):
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.JobSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-p.cfg.JobStaleTimeout)
			requeued, err := p.jobs.RequeueStale(ctx, cutoff)
			if err != nil {
				p.logger.Error("Stale job sweep failed", zap.Error(err))
				continue
			}
			if requeued > 0 {
				staleJobsRequeued.Add(float64(requeued))
				p.logger.Warn("Requeued stale running jobs", zap.Int64("count", requeued))
			}
		case <-ctx.Done():
			return
		}
	}
}
