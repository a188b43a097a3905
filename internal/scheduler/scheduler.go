// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package scheduler runs watch log consolidation at the right moments.
//
// Two things wake it: watch events routed through the provider, and
// program end times discovered by a previous sweep. All timers coalesce
// into a single goroutine so rapid zapping arms one sweep, not one per
// event.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridwatch/gridwatch/internal/logging"
	"github.com/gridwatch/gridwatch/internal/metrics"
)

// Consolidator defines the consolidation operations the scheduler
// drives. Satisfied by *consolidator.Engine.
type Consolidator interface {
	ConsolidateSession(ctx context.Context, sessionToken string, watchEndTime int64) error
	SweepAll(ctx context.Context) (nextWake int64, ok bool, err error)
}

// sessionTask is a pending per-session consolidation. A later end event
// for the same session replaces the earlier one.
type sessionTask struct {
	due          time.Time
	watchEndTime int64
}

// Scheduler owns the consolidation timer. The provider hands it work
// through TriggerSweepAfter and TriggerSession; the run loop executes
// whichever task comes due first.
type Scheduler struct {
	engine   Consolidator
	debounce time.Duration
	logger   zerolog.Logger
	clock    func() time.Time

	mu       sync.Mutex
	sweepAt  time.Time // zero means no sweep armed
	sessions map[string]sessionTask
	wake     chan struct{}
}

// New creates a scheduler. debounce is the delay applied to session end
// events before their consolidation runs.
func New(engine Consolidator, debounce time.Duration) *Scheduler {
	return &Scheduler{
		engine:   engine,
		debounce: debounce,
		logger:   logging.With().Str("component", "scheduler").Logger(),
		clock:    time.Now,
		sessions: make(map[string]sessionTask),
		wake:     make(chan struct{}, 1),
	}
}

// TriggerSweepAfter arms a global sweep. If a sweep is already armed,
// the earlier deadline wins; a later request never pushes it back.
func (s *Scheduler) TriggerSweepAfter(delay time.Duration) {
	due := s.clock().Add(delay)

	s.mu.Lock()
	if s.sweepAt.IsZero() || due.Before(s.sweepAt) {
		s.sweepAt = due
		metrics.ScheduledSweeps.Inc()
	}
	s.mu.Unlock()
	s.poke()
}

// TriggerSession queues consolidation of one session, debounced so
// program data written moments after the end event is still seen.
func (s *Scheduler) TriggerSession(sessionToken string, watchEndTime int64) {
	s.mu.Lock()
	s.sessions[sessionToken] = sessionTask{
		due:          s.clock().Add(s.debounce),
		watchEndTime: watchEndTime,
	}
	s.mu.Unlock()
	s.poke()
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// nextDue reports the earliest pending deadline, if any.
func (s *Scheduler) nextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.sweepAt
	for _, task := range s.sessions {
		if next.IsZero() || task.due.Before(next) {
			next = task.due
		}
	}
	return next, !next.IsZero()
}

// collectDue pops every task whose deadline has passed. The sweep flag
// and the session list come back together so one timer fire drains all
// overdue work.
func (s *Scheduler) collectDue(now time.Time) (sweep bool, sessions map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sweepAt.IsZero() && !s.sweepAt.After(now) {
		s.sweepAt = time.Time{}
		sweep = true
	}
	for token, task := range s.sessions {
		if !task.due.After(now) {
			if sessions == nil {
				sessions = make(map[string]int64)
			}
			sessions[token] = task.watchEndTime
			delete(s.sessions, token)
		}
	}
	return sweep, sessions
}

// Serve implements suture.Service. It blocks running the timer loop
// until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	s.logger.Info().Dur("debounce", s.debounce).Msg("Consolidation scheduler started")

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		next, have := s.nextDue()
		if have {
			timer.Reset(next.Sub(s.clock()))
		}

		select {
		case <-ctx.Done():
			if have && !timer.Stop() {
				<-timer.C
			}
			s.logger.Info().Msg("Consolidation scheduler stopped")
			return ctx.Err()
		case <-s.wake:
			if have && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
			s.runDue(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Scheduler) String() string {
	return "consolidation-scheduler"
}

func (s *Scheduler) runDue(ctx context.Context) {
	sweep, sessions := s.collectDue(s.clock())

	for token, watchEnd := range sessions {
		if err := s.engine.ConsolidateSession(ctx, token, watchEnd); err != nil {
			s.logger.Error().Err(err).Str("session", token).Msg("Session consolidation failed")
		}
	}

	if !sweep {
		return
	}
	nextWake, ok, err := s.engine.SweepAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Consolidation sweep failed")
		return
	}
	if ok {
		// Rearm for the next program boundary discovered by the sweep.
		delay := time.UnixMilli(nextWake).Sub(s.clock())
		if delay < 0 {
			delay = 0
		}
		s.TriggerSweepAfter(delay)
	}
}
