package booking

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNoteLength   = 2000
	MaxReasonLength = 500
)

type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start.UTC(), end: end.UTC()}, nil
}

func (ts TimeSlot) Start() time.Time        { return ts.start }
func (ts TimeSlot) End() time.Time          { return ts.end }
func (ts TimeSlot) Duration() time.Duration { return ts.end.Sub(ts.start) }

func (ts TimeSlot) StartsAfter(t time.Time) bool {
	return ts.start.After(t)
}

func (ts TimeSlot) Shift(d time.Duration) TimeSlot {
	return TimeSlot{start: ts.start.Add(d), end: ts.end.Add(d)}
}

func (ts TimeSlot) Equal(other TimeSlot) bool {
	return ts.start.Equal(other.start) && ts.end.Equal(other.end)
}

type Note struct {
	text string
}

func NewNote(s string) (Note, error) {
	t := strings.TrimSpace(s)
	if utf8.RuneCountInString(t) > MaxNoteLength {
		return Note{}, ErrNoteTooLong
	}
	return Note{text: t}, nil
}

func (n Note) String() string { return n.text }
func (n Note) IsEmpty() bool  { return n.text == "" }

type Reason struct {
	text string
}

func NewReason(s string) (Reason, error) {
	t := strings.TrimSpace(s)
	if utf8.RuneCountInString(t) > MaxReasonLength {
		return Reason{}, ErrReasonTooLong
	}
	return Reason{text: t}, nil
}

func (r Reason) String() string { return r.text }
func (r Reason) IsEmpty() bool  { return r.text == "" }
