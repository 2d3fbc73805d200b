// Package window computes the randomized daily posting window.
package window

import (
	"math/rand/v2"
	"time"

	"TransferCast/internal/model"
)

// Settings describes the nominal window and the jitter applied to each edge.
type Settings struct {
	OpenAt      model.TimeOfDay
	OpenJitter  time.Duration
	CloseAt     model.TimeOfDay
	CloseJitter time.Duration
}

// DefaultSettings opens at 10:00+[0,60m) and closes at 20:00+[0,2m).
var DefaultSettings = Settings{
	OpenAt:      model.TimeOfDay{Hour: 10},
	OpenJitter:  60 * time.Minute,
	CloseAt:     model.TimeOfDay{Hour: 20},
	CloseJitter: 2 * time.Minute,
}

// Planner produces today's PostingWindow in a fixed location.
type Planner struct {
	Settings Settings
	Location *time.Location
	rnd      *rand.Rand
}

// NewPlanner creates a Planner.
func NewPlanner(settings Settings, loc *time.Location, rnd *rand.Rand) *Planner {
	return &Planner{Settings: settings, Location: loc, rnd: rnd}
}

// Plan returns the window for the calendar day of now.
func (p *Planner) Plan(now time.Time) model.PostingWindow {
	now = now.In(p.Location)
	start := p.Settings.OpenAt.On(now, p.Location).Add(p.jitter(p.Settings.OpenJitter))
	end := p.Settings.CloseAt.On(now, p.Location).Add(p.jitter(p.Settings.CloseJitter))
	if end.Before(start) {
		end = start
	}
	return model.PostingWindow{
		Date:  now.Format("2006-01-02"),
		Start: start,
		End:   end,
	}
}

// jitter is uniform in [0, limit).
func (p *Planner) jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(p.rnd.Int64N(int64(limit)))
}
