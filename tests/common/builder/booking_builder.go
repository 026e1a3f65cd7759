//go:build unit || e2e

package builder

import (
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID            uuid.UUID
	TutorID       uuid.UUID
	StudentID     *uuid.UUID
	SubjectID     *uuid.UUID
	Start         time.Time
	Duration      time.Duration
	Status        booking.Status
	TutorNotes    string
	StudentNotes  string
	Reminders     map[string]bool
	ScheduleSetAt time.Time
	Now           time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:            uuid.New(),
		TutorID:       uuid.New(),
		Start:         now.Add(48 * time.Hour),
		Duration:      time.Hour,
		Status:        booking.StatusOpen,
		TutorNotes:    "Bring past papers",
		ScheduleSetAt: now,
		Now:           now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// BuildDomain reconstructs the aggregate directly so any status can be set up.
func (b *BookingBuilder) BuildDomain() *booking.Booking {
	slot, err := booking.NewTimeSlot(b.Start, b.Start.Add(b.Duration))
	if err != nil {
		panic(err)
	}
	tutorNotes, _ := booking.NewNote(b.TutorNotes)
	studentNotes, _ := booking.NewNote(b.StudentNotes)
	return booking.ReconstructBooking(booking.ReconstructParams{
		ID:            b.ID,
		TutorID:       b.TutorID,
		StudentID:     b.StudentID,
		SubjectID:     b.SubjectID,
		TimeSlot:      slot,
		Status:        b.Status,
		TutorNotes:    tutorNotes,
		StudentNotes:  studentNotes,
		Reminders:     booking.ReminderFlagsFromMap(b.Reminders),
		ScheduleSetAt: b.ScheduleSetAt,
		CreatedAt:     b.ScheduleSetAt,
		UpdatedAt:     b.ScheduleSetAt,
	})
}

func (b *BookingBuilder) WithStatus(status booking.Status) *BookingBuilder {
	b.Status = status
	return b
}

func (b *BookingBuilder) WithStart(start time.Time) *BookingBuilder {
	b.Start = start
	return b
}

func (b *BookingBuilder) WithTutor(id uuid.UUID) *BookingBuilder {
	b.TutorID = id
	return b
}

func (b *BookingBuilder) WithStudent(id uuid.UUID) *BookingBuilder {
	b.StudentID = &id
	return b
}

func (b *BookingBuilder) WithReminderSent(slot booking.ReminderSlot) *BookingBuilder {
	if b.Reminders == nil {
		b.Reminders = map[string]bool{}
	}
	b.Reminders[string(slot)] = true
	return b
}

// AsConfirmed assigns a fresh student and confirms.
func (b *BookingBuilder) AsConfirmed() *BookingBuilder {
	b.Status = booking.StatusConfirmed
	if b.StudentID == nil {
		id := uuid.New()
		b.StudentID = &id
	}
	return b
}

func (b *BookingBuilder) AsCompleted() *BookingBuilder {
	b.AsConfirmed()
	b.Status = booking.StatusCompleted
	b.Start = b.Now.Add(-2 * time.Hour)
	return b
}

// BuildView returns the read model the handlers render.
func (b *BookingBuilder) BuildView() *queries.BookingView {
	reminders := map[string]bool{}
	for k, v := range b.Reminders {
		reminders[k] = v
	}
	v := &queries.BookingView{
		ID:             b.ID,
		TutorID:        b.TutorID,
		TutorName:      "Tina Tutor",
		TutorEmail:     "tutor@example.com",
		StudentID:      b.StudentID,
		SubjectID:      b.SubjectID,
		ScheduledStart: b.Start,
		ScheduledEnd:   b.Start.Add(b.Duration),
		Status:         b.Status.String(),
		RemindersSent:  reminders,
		ScheduleSetAt:  b.ScheduleSetAt,
		CreatedAt:      b.ScheduleSetAt,
		UpdatedAt:      b.ScheduleSetAt,
	}
	if b.TutorNotes != "" {
		notes := b.TutorNotes
		v.TutorNotes = &notes
	}
	if b.StudentID != nil {
		name, email := "Sam Student", "test@example.com"
		v.StudentName, v.StudentEmail = &name, &email
	}
	return v
}
