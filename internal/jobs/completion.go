// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultSweepTimeout = 2 * time.Minute

// Completer moves finished reservations to their terminal state.
type Completer interface {
	CompleteFinished(ctx context.Context, limit int) (int, error)
}

// CompletionSweep periodically completes confirmed reservations whose end
// time has passed.
type CompletionSweep struct {
	cron      *cron.Cron
	completer Completer
	limit     int
	timeout   time.Duration
	logger    *zap.Logger
}

// SweepConfig configures a CompletionSweep.
type SweepConfig struct {
	Spec     string
	Limit    int
	Timeout  time.Duration
	Location *time.Location
}

// NewCompletionSweep registers the sweep under spec. Overlapping runs are
// skipped.
func NewCompletionSweep(completer Completer, cfg SweepConfig, logger *zap.Logger) (*CompletionSweep, error) {
	if completer == nil {
		return nil, fmt.Errorf("completion sweep requires a completer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSweepTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	logger = logger.With(zap.String("job", "completion_sweep"))
	sweep := &CompletionSweep{
		completer: completer,
		limit:     cfg.Limit,
		timeout:   cfg.Timeout,
		logger:    logger,
	}

	sweep.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
	)
	if _, err := sweep.cron.AddFunc(cfg.Spec, sweep.tick); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.Spec, err)
	}
	return sweep, nil
}

// Start runs the schedule in the background.
func (s *CompletionSweep) Start() {
	s.cron.Start()
	s.logger.Info("completion sweep started")
}

// Stop halts the schedule and waits for a running sweep until ctx ends.
func (s *CompletionSweep) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("completion sweep still running at shutdown")
	}
}

// RunOnce performs a single sweep.
func (s *CompletionSweep) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.completer.CompleteFinished(ctx, s.limit)
}

func (s *CompletionSweep) tick() {
	completed, err := s.RunOnce(context.Background())
	if err != nil {
		s.logger.Error("completion sweep failed", zap.Int("completed", completed), zap.Error(err))
		return
	}
	if completed > 0 {
		s.logger.Info("completed finished reservations", zap.Int("completed", completed))
	}
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
