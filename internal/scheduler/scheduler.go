// Package scheduler runs the contact pipeline on a fixed interval during
// business hours.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/paylink-sync/internal/usecase"
)

// Pass is one run of the pipeline.
type Pass interface {
	RunPass(ctx context.Context) usecase.PassResult
}

// Scheduler checks business hours, runs a pass when open, then waits the
// interval. The wait starts after the pass returns, so passes never
// overlap.
type Scheduler struct {
	pass     Pass
	hours    BusinessHours
	interval time.Duration
	now      func() time.Time
	running  atomic.Bool
	logger   *zap.Logger
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a scheduler.
func New(pass Pass, hours BusinessHours, interval time.Duration, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		pass:     pass,
		hours:    hours,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.String("timezone", s.hours.Location.String()),
		zap.Int("start_hour", s.hours.StartHour),
		zap.Int("end_hour", s.hours.EndHour))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.interval)
		}
	}
}

// Tick runs one pass if the current time is within business hours. It
// reports whether a pass ran, including a pass that panicked. A tick that
// arrives while another is still running is skipped.
func (s *Scheduler) Tick(ctx context.Context) (ran bool) {
	now := s.now()
	if !s.hours.Contains(now) {
		s.logger.Info("Outside business hours, sleeping until next check",
			zap.Time("local_time", now.In(s.hours.Location)))
		return false
	}

	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous pass still running, skipping tick")
		return false
	}
	defer s.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Pass panicked", zap.String("panic", fmt.Sprint(r)), zap.Stack("stack"))
		}
	}()

	ran = true
	s.pass.RunPass(ctx)
	return ran
}
