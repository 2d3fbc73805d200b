package window

import (
	"math/rand/v2"
	"testing"
	"time"

	"TransferCast/internal/model"
)

var kyiv = time.FixedZone("EET", 2*60*60)

func TestPlan_Bounds(t *testing.T) {
	p := NewPlanner(DefaultSettings, kyiv, rand.New(rand.NewPCG(42, 7)))
	days := []time.Time{
		time.Date(2026, 10, 19, 0, 0, 0, 0, kyiv),
		time.Date(2026, 10, 20, 9, 0, 0, 0, kyiv),
		time.Date(2026, 10, 21, 15, 30, 0, 0, kyiv),
		time.Date(2026, 10, 22, 23, 59, 59, 0, kyiv),
		// same instant expressed in another zone still plans for the Kyiv day
		time.Date(2026, 10, 22, 22, 30, 0, 0, time.UTC),
	}
	for _, now := range days {
		for i := 0; i < 500; i++ {
			w := p.Plan(now)
			local := now.In(kyiv)
			openAt := time.Date(local.Year(), local.Month(), local.Day(), 10, 0, 0, 0, kyiv)
			closeAt := time.Date(local.Year(), local.Month(), local.Day(), 20, 0, 0, 0, kyiv)
			if w.Start.Before(openAt) || !w.Start.Before(openAt.Add(time.Hour)) {
				t.Fatalf("start %v outside [10:00, 11:00) for %v", w.Start, now)
			}
			if w.End.Before(closeAt) || !w.End.Before(closeAt.Add(2*time.Minute)) {
				t.Fatalf("end %v outside [20:00, 20:02) for %v", w.End, now)
			}
			if w.End.Before(w.Start) {
				t.Fatalf("end before start: %v", w)
			}
			if w.Date != local.Format("2006-01-02") {
				t.Fatalf("expected date %s, got %s", local.Format("2006-01-02"), w.Date)
			}
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, kyiv)
	a := NewPlanner(DefaultSettings, kyiv, rand.New(rand.NewPCG(1, 1))).Plan(now)
	b := NewPlanner(DefaultSettings, kyiv, rand.New(rand.NewPCG(1, 1))).Plan(now)
	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		t.Errorf("same seed produced different windows: %v vs %v", a, b)
	}
}

func TestPlan_ZeroJitter(t *testing.T) {
	s := Settings{OpenAt: model.TimeOfDay{Hour: 9, Minute: 15}, CloseAt: model.TimeOfDay{Hour: 18}}
	w := NewPlanner(s, kyiv, rand.New(rand.NewPCG(3, 4))).Plan(time.Date(2026, 10, 19, 12, 0, 0, 0, kyiv))
	if w.Start.Hour() != 9 || w.Start.Minute() != 15 || w.End.Hour() != 18 || w.End.Minute() != 0 {
		t.Errorf("unexpected window %v", w)
	}
}

func TestPlan_ClampsInvertedWindow(t *testing.T) {
	s := Settings{OpenAt: model.TimeOfDay{Hour: 21}, CloseAt: model.TimeOfDay{Hour: 20}}
	w := NewPlanner(s, kyiv, rand.New(rand.NewPCG(3, 4))).Plan(time.Date(2026, 10, 19, 12, 0, 0, 0, kyiv))
	if !w.End.Equal(w.Start) {
		t.Errorf("expected end clamped to start, got %v", w)
	}
}
