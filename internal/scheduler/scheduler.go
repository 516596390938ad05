package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/config"
)

const runTimeout = 2 * time.Minute

// DigestPublisher writes the nightly farm digest.
type DigestPublisher interface {
	PublishDigest(ctx context.Context, now time.Time) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	digest   DigestPublisher
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a scheduler that runs in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, digest DigestPublisher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		digest:   digest,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.publishDigest); err != nil {
		return fmt.Errorf("schedule digest %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("digest_schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := s.now()
	rows, err := s.digest.PublishDigest(ctx, start)
	if err != nil {
		s.logger.Error("failed to publish digest", zap.Error(err))
		return
	}
	s.logger.Info("digest run finished", zap.Int("rows", rows), zap.Duration("took", time.Since(start)))
}
