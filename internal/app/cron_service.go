package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropforge/internal/config"
	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/service"

	"github.com/robfig/cron/v3"
)

// CronService runs the batch occurrence scheduler on its cron spec. The
// default spec fires at the top of every hour, matching the hourly windows.
type CronService struct {
	name      string
	cron      *cron.Cron
	scheduler *service.SchedulerService
	spec      string
}

// NewCronService creates the cron service.
func NewCronService(cfg *config.SchedulerConfig, scheduler *service.SchedulerService) (*CronService, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("scheduler disabled")
	}
	if scheduler == nil {
		return nil, errors.New("scheduler service is nil")
	}
	spec := strings.TrimSpace(cfg.CronSpec)
	if spec == "" {
		spec = "0 * * * *"
	}
	return &CronService{
		name:      "scheduler",
		cron:      cron.New(cron.WithLocation(time.UTC)),
		scheduler: scheduler,
		spec:      spec,
	}, nil
}

// Name is the service name.
func (s *CronService) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start registers the job, fires one catch-up pass, and blocks until the
// context ends. The catch-up pass covers a restart inside an hour.
func (s *CronService) Start(ctx context.Context) error {
	if s == nil || s.cron == nil || s.scheduler == nil {
		return errors.New("scheduler not initialized")
	}
	run := func() {
		if _, err := s.scheduler.RunDueOccurrences(ctx, time.Now().UTC()); err != nil {
			logger.Errorw("scheduler_cron_run_failed", "error", err)
		}
	}
	if _, err := s.cron.AddFunc(s.spec, run); err != nil {
		return err
	}
	run()
	s.cron.Start()
	<-ctx.Done()
	return ctx.Err()
}

// Stop waits for a running pass to finish.
func (s *CronService) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	return nil
}
