package reminder

import (
	"math"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/pkg/errs"
)

var ErrInvalidOffset = errs.Kinded(errs.ErrValidation, "reminder offsets must be positive")

// Slot is one reminder offset before the scheduled start.
type Slot struct {
	Name   booking.ReminderSlot
	Offset time.Duration
}

func (s Slot) FireAt(start time.Time) time.Time {
	return start.Add(-s.Offset)
}

// Label renders the offset relative to the session, e.g. "in 1 hour".
func (s Slot) Label() string {
	return "in " + booking.FormatWindow(s.Offset)
}

// Plan maps the configured offsets onto the fixed reminder slots.
type Plan struct {
	slots []Slot
}

// NewPlan takes offsets in hours, in slot order.
func NewPlan(offsetHours []float64) (Plan, error) {
	names := booking.ReminderSlots()
	if len(offsetHours) != len(names) {
		return Plan{}, errs.Wrapf(ErrInvalidOffset, "expected %d offsets, got %d", len(names), len(offsetHours))
	}
	slots := make([]Slot, len(names))
	for i, h := range offsetHours {
		if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return Plan{}, errs.Wrapf(ErrInvalidOffset, "%s: %v", names[i], h)
		}
		slots[i] = Slot{
			Name:   names[i],
			Offset: time.Duration(h * float64(time.Hour)).Round(time.Second),
		}
	}
	return Plan{slots: slots}, nil
}

func (p Plan) Slots() []Slot {
	out := make([]Slot, len(p.slots))
	copy(out, p.slots)
	return out
}

func (p Plan) Slot(name booking.ReminderSlot) (Slot, bool) {
	for _, s := range p.slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Upcoming returns the unsent slots whose fire time is still ahead.
func (p Plan) Upcoming(start time.Time, sent booking.ReminderFlags, now time.Time) []Slot {
	var out []Slot
	for _, s := range p.slots {
		if sent.Sent(s.Name) {
			continue
		}
		if s.FireAt(start).After(now) {
			out = append(out, s)
		}
	}
	return out
}

// Overdue returns the slot that should still go out although its fire time
// has passed. Only the most recent slot to come due qualifies, it must have
// come due after the start time was set, and the session must not have
// started yet.
func (p Plan) Overdue(start time.Time, sent booking.ReminderFlags, setAt, now time.Time) (Slot, bool) {
	if !start.After(now) {
		return Slot{}, false
	}
	var (
		latest Slot
		found  bool
	)
	for _, s := range p.slots {
		fireAt := s.FireAt(start)
		if fireAt.After(now) {
			continue
		}
		if !found || fireAt.After(latest.FireAt(start)) {
			latest = s
			found = true
		}
	}
	if !found || sent.Sent(latest.Name) {
		return Slot{}, false
	}
	if !latest.FireAt(start).After(setAt) {
		return Slot{}, false
	}
	return latest, true
}
