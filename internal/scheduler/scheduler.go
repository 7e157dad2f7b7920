// internal/scheduler/scheduler.go

// Package scheduler runs the periodic maintenance jobs, currently the
// expired-analysis sweep that plays the role a MongoDB TTL index would.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"jobmate-backend/internal/common/logger"

	"github.com/go-co-op/gocron/v2"
)

// AnalysisSweeper deletes expired ML analyses. Satisfied by
// service.AnalysisService.
type AnalysisSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron   gocron.Scheduler
	logger logger.Logger
}

// New builds the scheduler with the analysis sweep registered under the
// given cron expression.
func New(sweepCron string, sweeper AnalysisSweeper, log logger.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		cron:   cron,
		logger: log.WithFields(map[string]interface{}{"component": "scheduler"}),
	}

	_, err = cron.NewJob(
		gocron.CronJob(sweepCron, false),
		gocron.NewTask(func() { s.runSweep(sweeper) }),
		gocron.WithName("analysis-sweep"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule analysis sweep: %w", err)
	}

	return s, nil
}

func (s *Scheduler) runSweep(sweeper AnalysisSweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("analysis sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if deleted > 0 {
		s.logger.Info("analysis sweep completed", map[string]interface{}{
			"deleted": deleted,
		})
	}
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", nil)
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}
