// Package scheduler drives the sync orchestrator: a run at start, then one
// every interval, with backoff between retries and coalesced manual kicks.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/store"
	"github.com/dmitrijs2005/reelsync/internal/client/syncer"
	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/sethvargo/go-retry"
)

type Runner interface {
	RunReport(ctx context.Context) syncer.Report
}

// Recorder persists the outcome of each run; optional.
type Recorder interface {
	RecordRun(ctx context.Context, rec store.RunRecord) error
}

type Config struct {
	Interval      time.Duration
	RetryDelay    time.Duration
	RetryAttempts int
	// JitterPercent spreads retry delays; 0 disables jitter.
	JitterPercent uint64
}

var errPermanent = errors.New("permanent sync failure")

type Scheduler struct {
	runner Runner
	rec    Recorder
	log    logging.Logger
	cfg    Config
	kick   chan struct{}
}

func New(r Runner, rec Recorder, log logging.Logger, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	return &Scheduler{
		runner: r,
		rec:    rec,
		log:    log,
		cfg:    cfg,
		kick:   make(chan struct{}, 1),
	}
}

// Kick asks for a run as soon as the current one, if any, ends. Kicks that
// arrive while one is already pending are dropped.
func (s *Scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done. Runs never overlap.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info(ctx, "sync scheduler started", "interval", s.cfg.Interval, "retry_attempts", s.cfg.RetryAttempts)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "sync scheduler stopped")
			return nil
		case <-timer.C:
		case <-s.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		res := s.Cycle(ctx)
		s.log.Debug(ctx, "sync cycle done", "result", res, "next_in", s.cfg.Interval)
		timer.Reset(s.cfg.Interval)
	}
}

// Cycle runs the orchestrator and retries Retry outcomes with exponential
// backoff until success, a permanent failure, or the attempts run out.
func (s *Scheduler) Cycle(ctx context.Context) syncer.Result {
	last := syncer.Retry

	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		rep := s.Once(ctx)
		last = rep.Result

		switch rep.Result {
		case syncer.Success:
			return nil
		case syncer.Failure:
			return errPermanent
		default:
			return retry.RetryableError(errors.New("sync requested retry"))
		}
	})
	if err != nil && last == syncer.Retry && ctx.Err() == nil {
		s.log.Warn(ctx, "sync retries exhausted, waiting for next tick", "attempts", s.cfg.RetryAttempts+1)
	}
	return last
}

// Once performs a single orchestrator run and records it.
func (s *Scheduler) Once(ctx context.Context) syncer.Report {
	rep := s.runner.RunReport(ctx)
	if s.rec != nil {
		err := s.rec.RecordRun(ctx, store.RunRecord{
			At:         rep.StartedAt,
			Result:     rep.Result.String(),
			ServerTime: rep.ServerTime,
		})
		if err != nil {
			s.log.Warn(ctx, "failed to record sync run", "error", err)
		}
	}
	return rep
}

func (s *Scheduler) backoff() retry.Backoff {
	b := retry.NewExponential(s.cfg.RetryDelay)
	if s.cfg.JitterPercent > 0 {
		b = retry.WithJitterPercent(s.cfg.JitterPercent, b)
	}
	b = retry.WithCappedDuration(s.cfg.Interval, b)
	return retry.WithMaxRetries(uint64(s.cfg.RetryAttempts), b)
}
