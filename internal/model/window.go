package model

import (
	"fmt"
	"time"
)

// PostingWindow is the active span of a single calendar day.
type PostingWindow struct {
	Date  string // 2006-01-02 in the planner's location
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start, End).
func (w PostingWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w PostingWindow) String() string {
	return fmt.Sprintf("%s %s-%s", w.Date, w.Start.Format("15:04:05"), w.End.Format("15:04:05"))
}

// TimeOfDay is a wall-clock hour and minute.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On returns the instant at this time of day on the calendar day of t, in loc.
func (d TimeOfDay) On(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), d.Hour, d.Minute, 0, 0, loc)
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}
