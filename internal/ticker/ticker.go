// Package ticker wraps gocron to run fixed-interval periodic tasks whose
// ticks never stack, generalizing the cron-expression scheduler this
// codebase otherwise uses to the fixed-duration ticks spec.md requires for
// Sender, Getter, Cleaner, and Runner.
package ticker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Scheduler runs a set of named periodic tasks, each on its own interval,
// each guaranteed not to overlap itself (gocron.LimitModeReschedule).
type Scheduler struct {
	sched  gocron.Scheduler
	logger *zap.Logger
}

// New constructs a Scheduler. Call Start to begin running registered tasks.
func New(logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("ticker: %w", err)
	}
	return &Scheduler{sched: s, logger: logger}, nil
}

// Every registers fn to run every interval, starting immediately, never
// overlapping itself. name is used only for logging.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			fn(context.Background())
			s.logger.Debug("tick complete", zap.String("task", name), zap.Duration("took", time.Since(start)))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("ticker: registering %s: %w", name, err)
	}
	return nil
}

// Start begins running all registered tasks in the background.
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler, waiting for any in-flight tick to finish.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
