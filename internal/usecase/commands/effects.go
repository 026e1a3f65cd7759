package commands

import (
	"context"
	"log/slog"

	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/pkg/ptr"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

// BookingNotifier sends the courtesy mails that accompany booking changes.
type BookingNotifier interface {
	BookingClaimed(ctx context.Context, v *queries.BookingView) error
	BookingCancelled(ctx context.Context, v *queries.BookingView, actorID uuid.UUID) error
}

// effects runs the post-commit work of a booking change. Failures are
// logged, never returned.
type effects struct {
	reads     queries.BookingReadStore
	scheduler shared.ReminderScheduler
	notifier  BookingNotifier
	chat      shared.ChatProvisioner
	events    shared.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

func (e *effects) changed(ctx context.Context, bookingID uuid.UUID, evt shared.BookingEventType, actor shared.Actor) {
	ctx = context.WithoutCancel(ctx)

	if err := e.scheduler.Reschedule(ctx, bookingID); err != nil {
		e.logger.Warn("failed to reschedule reminders", "booking_id", bookingID, "error", err)
	}

	view, err := e.reads.FindByID(ctx, bookingID)
	if err != nil {
		e.logger.Warn("failed to load booking after change", "booking_id", bookingID, "error", err)
		return
	}
	e.publish(ctx, evt, view.ID, view.TutorID, view.StudentID, view.Status, actor)

	switch evt {
	case shared.EventBookingClaimed:
		if err := e.notifier.BookingClaimed(ctx, view); err != nil {
			e.logger.Warn("failed to send booking claimed mail", "booking_id", bookingID, "error", err)
		}
	case shared.EventBookingCancelled:
		if err := e.notifier.BookingCancelled(ctx, view, actor.ID); err != nil {
			e.logger.Warn("failed to send booking cancelled mail", "booking_id", bookingID, "error", err)
		}
	}

	if view.Status == "confirmed" && (evt == shared.EventBookingClaimed || evt == shared.EventBookingConfirmed) {
		e.ensureChannel(ctx, view)
	}
}

func (e *effects) deleted(ctx context.Context, bookingID, tutorID uuid.UUID, actor shared.Actor) {
	ctx = context.WithoutCancel(ctx)
	e.scheduler.Cancel(bookingID)
	e.publish(ctx, shared.EventBookingDeleted, bookingID, tutorID, nil, "deleted", actor)
}

func (e *effects) ensureChannel(ctx context.Context, v *queries.BookingView) {
	if v.StudentID == nil {
		return
	}
	members := []shared.ChatMember{
		{ID: v.TutorID, Name: v.TutorName},
		{ID: *v.StudentID, Name: ptr.Deref(v.StudentName)},
	}
	if err := e.chat.EnsureChannel(ctx, v.ID, members); err != nil {
		e.logger.Warn("failed to create chat channel", "booking_id", v.ID, "error", err)
	}
}

func (e *effects) publish(ctx context.Context, evt shared.BookingEventType, bookingID, tutorID uuid.UUID, studentID *uuid.UUID, status string, actor shared.Actor) {
	actorID := actor.ID
	err := e.events.Publish(ctx, shared.BookingEvent{
		Type:       evt,
		BookingID:  bookingID,
		TutorID:    tutorID,
		StudentID:  studentID,
		Status:     status,
		ActorID:    &actorID,
		OccurredAt: e.clock.Now(),
	})
	if err != nil {
		e.logger.Warn("failed to publish booking event", "booking_id", bookingID, "type", evt, "error", err)
	}
}
