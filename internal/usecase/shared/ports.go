package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a command.
type Actor struct {
	ID   uuid.UUID
	Role string
}

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type Email struct {
	To         string
	ToName     string
	Subject    string
	HTML       string
	Text       string
	Categories []string
}

type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

type BookingEventType string

const (
	EventAvailabilityCreated BookingEventType = "availability.created"
	EventBookingClaimed      BookingEventType = "booking.claimed"
	EventBookingConfirmed    BookingEventType = "booking.confirmed"
	EventBookingRejected     BookingEventType = "booking.rejected"
	EventBookingUpdated      BookingEventType = "booking.updated"
	EventBookingCancelled    BookingEventType = "booking.cancelled"
	EventBookingDeleted      BookingEventType = "booking.deleted"
	EventSessionStarted      BookingEventType = "session.started"
	EventSessionCompleted    BookingEventType = "session.completed"
	EventReminderSent        BookingEventType = "reminder.sent"
)

type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  uuid.UUID        `json:"booking_id"`
	TutorID    uuid.UUID        `json:"tutor_id"`
	StudentID  *uuid.UUID       `json:"student_id,omitempty"`
	Status     string           `json:"status"`
	ActorID    *uuid.UUID       `json:"actor_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, evt BookingEvent) error
}

type ChatMember struct {
	ID   uuid.UUID
	Name string
}

type ChatProvisioner interface {
	// UserToken issues a client token for the chat provider.
	UserToken(userID uuid.UUID) (string, time.Time, error)
	EnsureChannel(ctx context.Context, bookingID uuid.UUID, members []ChatMember) error
}

// ReminderScheduler keeps in-process reminder timers in step with bookings.
type ReminderScheduler interface {
	Reschedule(ctx context.Context, bookingID uuid.UUID) error
	Cancel(bookingID uuid.UUID)
}
