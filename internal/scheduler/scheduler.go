// Package scheduler drives the weekday posting loop.
//
// Each pass reads the wall clock and moves through three states:
//
//	WEEKEND_WAIT    Saturday/Sunday: sleep until the resume instant (Monday 10:00).
//	WINDOW_WAIT     before today's window: sleep until it opens.
//	ACTIVE_POSTING  inside the window: post, sleep a random delay, repeat until it closes.
//
// After the window closes the loop sleeps until the rollover instant (10:00
// the next day) and starts over. Nothing is persisted; a restart simply
// recomputes the current state from the clock.
package scheduler

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"TransferCast/internal/model"
	"TransferCast/internal/poster"
	"TransferCast/internal/recorder"

	"github.com/robfig/cron/v3"
)

// State is the loop's current phase.
type State string

const (
	StateIdle          State = "IDLE"
	StateWeekendWait   State = "WEEKEND_WAIT"
	StateWindowWait    State = "WINDOW_WAIT"
	StateActivePosting State = "ACTIVE_POSTING"
)

// Planner computes the posting window for the day of now.
type Planner interface {
	Plan(now time.Time) model.PostingWindow
}

// Poster runs a single post cycle. It must not return errors; failures are
// reported in the Result.
type Poster interface {
	PostOnce(ctx context.Context) poster.Result
}

// Options holds the timing parameters of the loop.
type Options struct {
	Location *time.Location
	Resume   cron.Schedule // next active instant after a weekend
	Rollover cron.Schedule // next evaluation after a window closes
	MinDelay time.Duration // inclusive, whole minutes
	MaxDelay time.Duration // inclusive, whole minutes
}

// Scheduler runs the posting loop. It is driven by a single goroutine and is
// not safe for concurrent use.
type Scheduler struct {
	Options  Options
	Planner  Planner
	Poster   Poster
	Recorder recorder.Recorder
	Clock    Clock
	rnd      *rand.Rand
	state    State
}

// NewScheduler creates a new Scheduler.
func NewScheduler(opts Options, planner Planner, p Poster, rec recorder.Recorder, clock Clock, rnd *rand.Rand) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Options:  opts,
		Planner:  planner,
		Poster:   p,
		Recorder: rec,
		Clock:    clock,
		rnd:      rnd,
		state:    StateIdle,
	}
}

// State returns the current phase.
func (s *Scheduler) State() State { return s.state }

// Run loops forever. It returns only when a sleep is interrupted, i.e. when
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("[INFO] scheduler started (tz=%s, delay %v-%v)", s.Options.Location, s.Options.MinDelay, s.Options.MaxDelay)
	for {
		if err := s.step(ctx); err != nil {
			log.Printf("[INFO] scheduler stopped: %v", err)
			return err
		}
	}
}

// step evaluates the clock once and runs until the next re-evaluation point.
func (s *Scheduler) step(ctx context.Context) error {
	now := s.now()
	if isWeekend(now) {
		s.enter(StateWeekendWait)
		resume := s.Options.Resume.Next(now)
		log.Printf("[INFO] weekend, sleeping until %s", resume.Format(time.RFC3339))
		return s.sleepUntil(ctx, resume)
	}

	w := s.Planner.Plan(now)
	log.Printf("[INFO] today's window: %s", w)
	if err := s.Recorder.RecordWindow(&recorder.WindowEvent{Date: w.Date, Start: w.Start, End: w.End}); err != nil {
		log.Printf("[ERROR] record window: %v", err)
	}

	if now.Before(w.Start) {
		s.enter(StateWindowWait)
		if err := s.sleepUntil(ctx, w.Start); err != nil {
			return err
		}
	}

	for s.now().Before(w.End) {
		s.enter(StateActivePosting)
		s.Poster.PostOnce(ctx)
		delay := s.nextDelay()
		log.Printf("[INFO] next post in %v", delay)
		if err := s.Clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	s.enter(StateIdle)
	next := s.Options.Rollover.Next(s.now())
	log.Printf("[INFO] window closed, sleeping until %s", next.Format(time.RFC3339))
	return s.sleepUntil(ctx, next)
}

func (s *Scheduler) enter(st State) {
	if s.state != st {
		log.Printf("[INFO] scheduler state %s -> %s", s.state, st)
		s.state = st
	}
}

func (s *Scheduler) now() time.Time {
	return s.Clock.Now().In(s.Options.Location)
}

func (s *Scheduler) sleepUntil(ctx context.Context, t time.Time) error {
	d := t.Sub(s.now())
	if d <= 0 {
		return ctx.Err()
	}
	return s.Clock.Sleep(ctx, d)
}

// nextDelay is a uniform whole number of minutes in [MinDelay, MaxDelay].
func (s *Scheduler) nextDelay() time.Duration {
	lo := int64(s.Options.MinDelay / time.Minute)
	hi := int64(s.Options.MaxDelay / time.Minute)
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return time.Duration(lo+s.rnd.Int64N(hi-lo+1)) * time.Minute
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
