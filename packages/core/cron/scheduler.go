package cron

import (
	"context"
	"time"

	"kicker-api/packages/core/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultStaleSweepSpec runs the sweep at minute 0 of every hour.
const DefaultStaleSweepSpec = "0 0 * * * *"

// Sweeper is the job the scheduler drives.
type Sweeper interface {
	CountStaleMatches(ctx context.Context) (int, error)
	SweepStaleMatches(ctx context.Context) (services.SweepResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string
	timeout time.Duration
	logger  *zap.Logger
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

func NewScheduler(sweeper Sweeper, spec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = DefaultStaleSweepSpec
	}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger{sugar: logger.Sugar()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{sugar: logger.Sugar()})),
	)

	return &Scheduler{
		cron:    c,
		sweeper: sweeper,
		spec:    spec,
		timeout: 5 * time.Minute,
		logger:  logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runStaleSweep); err != nil {
		s.logger.Error("failed to schedule stale match sweep", zap.String("spec", s.spec), zap.Error(err))
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started", zap.String("stale_sweep_spec", s.spec))
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron scheduler stopped")
}

func (s *Scheduler) runStaleSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := s.sweeper.CountStaleMatches(ctx)
	if err != nil {
		s.logger.Error("failed to count stale matches", zap.Error(err))
		return
	}
	if count == 0 {
		s.logger.Debug("no stale matches")
		return
	}

	s.logger.Info("sweeping stale matches", zap.Int("count", count))

	result, err := s.sweeper.SweepStaleMatches(ctx)
	if err != nil {
		s.logger.Error("stale match sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("stale match sweep completed",
		zap.Int("ended", result.Ended),
		zap.Int("cancelled", result.Cancelled),
		zap.Int("failed", result.Failed))
}

// RunNow runs the sweep synchronously.
func (s *Scheduler) RunNow() {
	s.runStaleSweep()
}
