package booking

import (
	"fmt"
	"time"

	"tutorlink/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeSlot      = errs.Kinded(errs.ErrValidation, "end time must be after start time")
	ErrStartInPast          = errs.Kinded(errs.ErrValidation, "start time must be in the future")
	ErrNoteTooLong          = errs.Kinded(errs.ErrValidation, "note is too long")
	ErrReasonTooLong        = errs.Kinded(errs.ErrValidation, "reason is too long")
	ErrReasonRequired       = errs.Kinded(errs.ErrValidation, "a reason is required")
	ErrInvalidStatus        = errs.Kinded(errs.ErrValidation, "invalid booking status")
	ErrInvalidRecurrence    = errs.Kinded(errs.ErrValidation, "invalid recurrence pattern")
	ErrSlotUnavailable      = errs.Kinded(errs.ErrConflict, "slot no longer available")
	ErrInvalidTransition    = errs.Kinded(errs.ErrConflict, "booking status does not allow this change")
	ErrOwnSlot              = errs.Kinded(errs.ErrForbidden, "tutors cannot claim their own availability")
	ErrCancellationTooLate  = errs.Kinded(errs.ErrForbidden, "cancellation window has closed")
	ErrSessionNotInProgress = errs.Kinded(errs.ErrConflict, "session has not been started")
)

type Cancellation struct {
	By     uuid.UUID
	At     time.Time
	Reason Reason
}

// Booking is a tutor availability window and, once claimed, the session
// booked against it.
type Booking struct {
	id              uuid.UUID
	tutorID         uuid.UUID
	studentID       *uuid.UUID
	subjectID       *uuid.UUID
	timeSlot        TimeSlot
	status          Status
	tutorNotes      Note
	studentNotes    Note
	cancellation    *Cancellation
	rejectionReason *Reason
	recurrence      *Recurrence
	parentID        *uuid.UUID
	reminders       ReminderFlags
	scheduleSetAt   time.Time
	actualStart     *time.Time
	actualEnd       *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

type AvailabilityParams struct {
	TutorID    uuid.UUID
	SubjectID  *uuid.UUID
	TimeSlot   TimeSlot
	TutorNotes Note
	Recurrence *Recurrence
}

// NewAvailability creates an open slot. When a recurrence is given the
// returned booking is the series parent; see Occurrences.
func NewAvailability(p AvailabilityParams, now time.Time) (*Booking, error) {
	if !p.TimeSlot.StartsAfter(now) {
		return nil, ErrStartInPast
	}
	return &Booking{
		id:            uuid.New(),
		tutorID:       p.TutorID,
		subjectID:     p.SubjectID,
		timeSlot:      p.TimeSlot,
		status:        StatusOpen,
		tutorNotes:    p.TutorNotes,
		recurrence:    p.Recurrence,
		reminders:     NewReminderFlags(),
		scheduleSetAt: now,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Occurrences builds the follow-up bookings of a recurring parent. The
// parent itself is not included.
func (b *Booking) Occurrences(now time.Time) ([]*Booking, error) {
	if b.recurrence == nil {
		return nil, nil
	}
	slots := b.recurrence.Occurrences(b.timeSlot)
	out := make([]*Booking, 0, len(slots)-1)
	parentID := b.id
	for _, slot := range slots[1:] {
		child, err := NewAvailability(AvailabilityParams{
			TutorID:    b.tutorID,
			SubjectID:  b.subjectID,
			TimeSlot:   slot,
			TutorNotes: b.tutorNotes,
		}, now)
		if err != nil {
			return nil, err
		}
		child.parentID = &parentID
		out = append(out, child)
	}
	return out, nil
}

// Claim assigns the student. The slot moves to pending, or straight to
// confirmed when autoConfirm is set.
func (b *Booking) Claim(studentID uuid.UUID, notes Note, autoConfirm bool, now time.Time) error {
	if b.status != StatusOpen {
		return ErrSlotUnavailable
	}
	if studentID == b.tutorID {
		return ErrOwnSlot
	}
	if !b.timeSlot.StartsAfter(now) {
		return ErrStartInPast
	}
	next := StatusPending
	if autoConfirm {
		next = StatusConfirmed
	}
	id := studentID
	b.studentID = &id
	b.studentNotes = notes
	b.rejectionReason = nil
	b.status = next
	b.updatedAt = now
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.status != StatusPending {
		return ErrInvalidTransition
	}
	b.status = StatusConfirmed
	b.updatedAt = now
	return nil
}

// Reject returns a pending booking to the open pool.
func (b *Booking) Reject(reason Reason, now time.Time) error {
	if b.status != StatusPending {
		return ErrInvalidTransition
	}
	b.status = StatusOpen
	b.studentID = nil
	b.studentNotes = Note{}
	if !reason.IsEmpty() {
		b.rejectionReason = &reason
	}
	b.updatedAt = now
	return nil
}

// Cancel is allowed from any non-terminal status while the start is more
// than window away.
func (b *Booking) Cancel(actorID uuid.UUID, reason Reason, window time.Duration, now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	if b.timeSlot.Start().Sub(now) <= window {
		return errs.Wrap(ErrCancellationTooLate,
			fmt.Sprintf("bookings can only be cancelled more than %s before the start", FormatWindow(window)))
	}
	b.status = StatusCancelled
	b.cancellation = &Cancellation{By: actorID, At: now, Reason: reason}
	b.updatedAt = now
	return nil
}

// StartSession records the actual start of a confirmed session.
func (b *Booking) StartSession(at time.Time) error {
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	if b.actualStart == nil {
		t := at
		b.actualStart = &t
	}
	b.updatedAt = at
	return nil
}

// Complete ends a confirmed session. A session that was never explicitly
// started is treated as having started on schedule.
func (b *Booking) Complete(at time.Time) error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidTransition
	}
	if b.actualStart == nil {
		start := b.timeSlot.Start()
		if at.Before(start) {
			return ErrSessionNotInProgress
		}
		b.actualStart = &start
	}
	end := at
	b.actualEnd = &end
	b.status = StatusCompleted
	b.updatedAt = at
	return nil
}

// Reschedule moves the window. Changing the start resets reminder state.
func (b *Booking) Reschedule(slot TimeSlot, now time.Time) error {
	if b.status.IsTerminal() {
		return ErrInvalidTransition
	}
	if !slot.StartsAfter(now) {
		return ErrStartInPast
	}
	if !slot.Start().Equal(b.timeSlot.Start()) {
		b.reminders = NewReminderFlags()
		b.scheduleSetAt = now
	}
	b.timeSlot = slot
	b.updatedAt = now
	return nil
}

func (b *Booking) UpdateTutorDetails(subjectID *uuid.UUID, notes Note, now time.Time) error {
	if b.status.IsTerminal() {
		return ErrInvalidTransition
	}
	b.subjectID = subjectID
	b.tutorNotes = notes
	b.updatedAt = now
	return nil
}

func (b *Booking) UpdateStudentNotes(notes Note, now time.Time) error {
	if b.status.IsTerminal() || b.status == StatusOpen {
		return ErrInvalidTransition
	}
	b.studentNotes = notes
	b.updatedAt = now
	return nil
}

func (b *Booking) MarkReminderSent(slot ReminderSlot) {
	b.reminders = b.reminders.With(slot)
}

func (b *Booking) IsTutor(id uuid.UUID) bool {
	return b.tutorID == id
}

func (b *Booking) IsStudent(id uuid.UUID) bool {
	return b.studentID != nil && *b.studentID == id
}

// Participants returns the tutor and, when assigned, the student.
func (b *Booking) Participants() []uuid.UUID {
	out := []uuid.UUID{b.tutorID}
	if b.studentID != nil {
		out = append(out, *b.studentID)
	}
	return out
}

type ReconstructParams struct {
	ID              uuid.UUID
	TutorID         uuid.UUID
	StudentID       *uuid.UUID
	SubjectID       *uuid.UUID
	TimeSlot        TimeSlot
	Status          Status
	TutorNotes      Note
	StudentNotes    Note
	Cancellation    *Cancellation
	RejectionReason *Reason
	Recurrence      *Recurrence
	ParentID        *uuid.UUID
	Reminders       ReminderFlags
	ScheduleSetAt   time.Time
	ActualStart     *time.Time
	ActualEnd       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructBooking(p ReconstructParams) *Booking {
	reminders := p.Reminders
	if reminders == nil {
		reminders = NewReminderFlags()
	}
	return &Booking{
		id:              p.ID,
		tutorID:         p.TutorID,
		studentID:       p.StudentID,
		subjectID:       p.SubjectID,
		timeSlot:        p.TimeSlot,
		status:          p.Status,
		tutorNotes:      p.TutorNotes,
		studentNotes:    p.StudentNotes,
		cancellation:    p.Cancellation,
		rejectionReason: p.RejectionReason,
		recurrence:      p.Recurrence,
		parentID:        p.ParentID,
		reminders:       reminders,
		scheduleSetAt:   p.ScheduleSetAt,
		actualStart:     p.ActualStart,
		actualEnd:       p.ActualEnd,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}

func (b *Booking) ID() uuid.UUID                 { return b.id }
func (b *Booking) TutorID() uuid.UUID            { return b.tutorID }
func (b *Booking) StudentID() *uuid.UUID         { return b.studentID }
func (b *Booking) SubjectID() *uuid.UUID         { return b.subjectID }
func (b *Booking) TimeSlot() TimeSlot            { return b.timeSlot }
func (b *Booking) Status() Status                { return b.status }
func (b *Booking) TutorNotes() Note              { return b.tutorNotes }
func (b *Booking) StudentNotes() Note            { return b.studentNotes }
func (b *Booking) Cancellation() *Cancellation   { return b.cancellation }
func (b *Booking) RejectionReason() *Reason      { return b.rejectionReason }
func (b *Booking) Recurrence() *Recurrence       { return b.recurrence }
func (b *Booking) ParentID() *uuid.UUID          { return b.parentID }
func (b *Booking) Reminders() ReminderFlags      { return b.reminders }
func (b *Booking) ScheduleSetAt() time.Time      { return b.scheduleSetAt }
func (b *Booking) ActualStart() *time.Time       { return b.actualStart }
func (b *Booking) ActualEnd() *time.Time         { return b.actualEnd }
func (b *Booking) CreatedAt() time.Time          { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time          { return b.updatedAt }
func (b *Booking) IsRecurring() bool             { return b.recurrence != nil }

// FormatWindow renders a duration the way it appears in user-facing messages.
func FormatWindow(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d%time.Minute == 0:
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		return d.String()
	}
}
