package booking

import (
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

const (
	MaxOccurrences = 52
	MaxInterval    = 12
)

// Recurrence describes how an availability window repeats. Count includes
// the first occurrence.
type Recurrence struct {
	frequency Frequency
	interval  int
	count     int
}

// RecurrencePattern is the persisted form.
type RecurrencePattern struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	Count     int    `json:"count"`
}

func NewRecurrence(frequency string, interval, count int) (Recurrence, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(frequency)))
	if f != FrequencyDaily && f != FrequencyWeekly {
		return Recurrence{}, ErrInvalidRecurrence
	}
	if interval < 1 || interval > MaxInterval {
		return Recurrence{}, ErrInvalidRecurrence
	}
	if count < 1 || count > MaxOccurrences {
		return Recurrence{}, ErrInvalidRecurrence
	}
	return Recurrence{frequency: f, interval: interval, count: count}, nil
}

func (r Recurrence) Frequency() Frequency { return r.frequency }
func (r Recurrence) Interval() int        { return r.interval }
func (r Recurrence) Count() int           { return r.count }

func (r Recurrence) step() time.Duration {
	day := 24 * time.Hour
	if r.frequency == FrequencyWeekly {
		return time.Duration(r.interval) * 7 * day
	}
	return time.Duration(r.interval) * day
}

// Occurrences returns every window of the series, starting with first.
func (r Recurrence) Occurrences(first TimeSlot) []TimeSlot {
	out := make([]TimeSlot, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, first.Shift(time.Duration(i)*r.step()))
	}
	return out
}

func (r Recurrence) Pattern() RecurrencePattern {
	return RecurrencePattern{Frequency: string(r.frequency), Interval: r.interval, Count: r.count}
}

func RecurrenceFromPattern(p RecurrencePattern) (Recurrence, error) {
	return NewRecurrence(p.Frequency, p.Interval, p.Count)
}
