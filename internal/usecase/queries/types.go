package queries

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
}

func (u *AuthorizedUserView) FullName() string {
	return u.FirstName + " " + u.LastName
}

type RecurrenceView struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	Count     int    `json:"count"`
}

// BookingView is a booking joined with the display data of its participants.
type BookingView struct {
	ID                 uuid.UUID       `json:"id"`
	TutorID            uuid.UUID       `json:"tutor_id"`
	TutorName          string          `json:"tutor_name"`
	TutorEmail         string          `json:"tutor_email"`
	StudentID          *uuid.UUID      `json:"student_id,omitempty"`
	StudentName        *string         `json:"student_name,omitempty"`
	StudentEmail       *string         `json:"student_email,omitempty"`
	SubjectID          *uuid.UUID      `json:"subject_id,omitempty"`
	SubjectName        *string         `json:"subject_name,omitempty"`
	ScheduledStart     time.Time       `json:"scheduled_start"`
	ScheduledEnd       time.Time       `json:"scheduled_end"`
	Status             string          `json:"status"`
	TutorNotes         *string         `json:"tutor_notes,omitempty"`
	StudentNotes       *string         `json:"student_notes,omitempty"`
	CancelledBy        *uuid.UUID      `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	RejectionReason    *string         `json:"rejection_reason,omitempty"`
	IsRecurring        bool            `json:"is_recurring"`
	Recurrence         *RecurrenceView `json:"recurrence,omitempty"`
	ParentBookingID    *uuid.UUID      `json:"parent_booking_id,omitempty"`
	RemindersSent      map[string]bool `json:"reminders_sent"`
	ScheduleSetAt      time.Time       `json:"schedule_set_at"`
	ActualStart        *time.Time      `json:"actual_start,omitempty"`
	ActualEnd          *time.Time      `json:"actual_end,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (v *BookingView) IsParticipant(id uuid.UUID) bool {
	return v.TutorID == id || (v.StudentID != nil && *v.StudentID == id)
}

// BookingFilter narrows a listing. Nil fields are ignored; an empty Statuses
// means every non-terminal status.
type BookingFilter struct {
	TutorID   *uuid.UUID
	StudentID *uuid.UUID
	SubjectID *uuid.UUID
	Statuses  []string
	From      *time.Time
	To        *time.Time
	Limit     int
}
