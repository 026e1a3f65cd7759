package commands

import (
	"context"
	"log/slog"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/infra"
	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/pkg/patch"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrSubjectNotTaught = errs.Kinded(errs.ErrValidation, "tutor does not teach this subject")
	ErrUseCancelRoute   = errs.Kinded(errs.ErrValidation, "use the cancel endpoint to cancel a booking")
	ErrNotBookingTutor  = errs.Kinded(errs.ErrForbidden, "only the tutor of this booking may change it")
	ErrNotBookingOwner  = errs.Kinded(errs.ErrForbidden, "only the student of this booking may change it")
	ErrBookingClaimed   = errs.Kinded(errs.ErrConflict, "booking has a student; cancel it instead")
	ErrBookingInUse     = errs.Kinded(errs.ErrConflict, "booking is referenced by other records")
	ErrBookingInvalid   = errs.Kinded(errs.ErrValidation, "booking data violates a constraint")
	ErrBookingConflict  = errs.Kinded(errs.ErrConflict, "booking was changed by another request")
)

type RecurrenceInput struct {
	Frequency string
	Interval  int
	Count     int
}

type CreateAvailabilityInput struct {
	Start      time.Time
	End        time.Time
	SubjectID  *uuid.UUID
	Notes      string
	Recurrence *RecurrenceInput
}

type CreateAvailabilityResult struct {
	BookingID     uuid.UUID
	OccurrenceIDs []uuid.UUID
}

// UpdateAvailabilityInput carries a partial update. Status accepts
// "confirmed" (confirm a pending claim) and "open" (reject it).
type UpdateAvailabilityInput struct {
	Start           *time.Time
	End             *time.Time
	SubjectID       *uuid.UUID
	Notes           *string
	Status          *string
	RejectionReason *string
}

type BookingCommands interface {
	CreateAvailability(ctx context.Context, actor shared.Actor, in CreateAvailabilityInput) (*CreateAvailabilityResult, error)
	UpdateAvailability(ctx context.Context, actor shared.Actor, id uuid.UUID, in UpdateAvailabilityInput) error
	CancelAsTutor(ctx context.Context, actor shared.Actor, id uuid.UUID, reason string) error
	DeleteAvailability(ctx context.Context, actor shared.Actor, id uuid.UUID) error

	Claim(ctx context.Context, actor shared.Actor, id uuid.UUID, notes string) error
	UpdateAsStudent(ctx context.Context, actor shared.Actor, id uuid.UUID, notes string) error
	CancelAsStudent(ctx context.Context, actor shared.Actor, id uuid.UUID, reason string) error

	StartSession(ctx context.Context, actor shared.Actor, id uuid.UUID) error
	EndSession(ctx context.Context, actor shared.Actor, id uuid.UUID) error
}

type bookingCommandsImpl struct {
	uow     shared.UnitOfWork
	cfg     config.BookingConfig
	clock   clock.Clock
	effects *effects
	logger  *slog.Logger
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	cfg config.BookingConfig,
	reads queries.BookingReadStore,
	scheduler shared.ReminderScheduler,
	notifier BookingNotifier,
	chat shared.ChatProvisioner,
	events shared.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:   uow,
		cfg:   cfg,
		clock: clk,
		effects: &effects{
			reads:     reads,
			scheduler: scheduler,
			notifier:  notifier,
			chat:      chat,
			events:    events,
			clock:     clk,
			logger:    logger,
		},
		logger: logger,
	}
}

func (uc *bookingCommandsImpl) CreateAvailability(ctx context.Context, actor shared.Actor, in CreateAvailabilityInput) (*CreateAvailabilityResult, error) {
	slot, err := booking.NewTimeSlot(in.Start, in.End)
	if err != nil {
		return nil, err
	}
	notes, err := booking.NewNote(in.Notes)
	if err != nil {
		return nil, err
	}
	var rec *booking.Recurrence
	if in.Recurrence != nil {
		r, err := booking.NewRecurrence(in.Recurrence.Frequency, in.Recurrence.Interval, in.Recurrence.Count)
		if err != nil {
			return nil, err
		}
		rec = &r
	}
	if err := uc.checkSubject(ctx, uc.uow.CommandReads(), actor.ID, in.SubjectID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	parent, err := booking.NewAvailability(booking.AvailabilityParams{
		TutorID:    actor.ID,
		SubjectID:  in.SubjectID,
		TimeSlot:   slot,
		TutorNotes: notes,
		Recurrence: rec,
	}, now)
	if err != nil {
		return nil, err
	}
	children, err := parent.Occurrences(now)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().Create(ctx, parent); err != nil {
			return err
		}
		return tx.Bookings().CreateMany(ctx, children)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	result := &CreateAvailabilityResult{BookingID: parent.ID()}
	uc.effects.changed(ctx, parent.ID(), shared.EventAvailabilityCreated, actor)
	for _, c := range children {
		result.OccurrenceIDs = append(result.OccurrenceIDs, c.ID())
		uc.effects.changed(ctx, c.ID(), shared.EventAvailabilityCreated, actor)
	}
	uc.logger.Info("availability created", "booking_id", parent.ID(), "tutor_id", actor.ID, "occurrences", len(children))
	return result, nil
}

func (uc *bookingCommandsImpl) UpdateAvailability(ctx context.Context, actor shared.Actor, id uuid.UUID, in UpdateAvailabilityInput) error {
	evt := shared.EventBookingUpdated
	err := uc.mutate(ctx, id, func(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
		if !b.IsTutor(actor.ID) && !actor.IsAdmin() {
			return ErrNotBookingTutor
		}

		if in.SubjectID != nil || in.Notes != nil {
			subjectID := b.SubjectID()
			if in.SubjectID != nil {
				if err := uc.checkSubject(ctx, tx.Reads(), b.TutorID(), in.SubjectID); err != nil {
					return err
				}
				subjectID = in.SubjectID
			}
			notes := b.TutorNotes()
			if in.Notes != nil {
				n, err := booking.NewNote(*in.Notes)
				if err != nil {
					return err
				}
				notes = n
			}
			if err := b.UpdateTutorDetails(subjectID, notes, now); err != nil {
				return err
			}
		}

		if in.Start != nil || in.End != nil {
			current := b.TimeSlot()
			slot, err := booking.NewTimeSlot(patch.Coalesce(in.Start, current.Start()), patch.Coalesce(in.End, current.End()))
			if err != nil {
				return err
			}
			if !slot.Equal(current) {
				if err := b.Reschedule(slot, now); err != nil {
					return err
				}
			}
		}

		if in.Status != nil {
			next, err := booking.NewStatus(*in.Status)
			if err != nil {
				return err
			}
			switch next {
			case booking.StatusConfirmed:
				if err := b.Confirm(now); err != nil {
					return err
				}
				evt = shared.EventBookingConfirmed
			case booking.StatusOpen:
				reason, err := booking.NewReason(patch.Coalesce(in.RejectionReason, ""))
				if err != nil {
					return err
				}
				if err := b.Reject(reason, now); err != nil {
					return err
				}
				evt = shared.EventBookingRejected
			case booking.StatusCancelled:
				return ErrUseCancelRoute
			default:
				return booking.ErrInvalidTransition
			}
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return err
	}
	uc.effects.changed(ctx, id, evt, actor)
	return nil
}

func (uc *bookingCommandsImpl) CancelAsTutor(ctx context.Context, actor shared.Actor, id uuid.UUID, reason string) error {
	r, err := booking.NewReason(reason)
	if err != nil {
		return err
	}
	if r.IsEmpty() {
		return booking.ErrReasonRequired
	}
	return uc.cancel(ctx, actor, id, r, func(b *booking.Booking) error {
		if !b.IsTutor(actor.ID) && !actor.IsAdmin() {
			return ErrNotBookingTutor
		}
		return nil
	})
}

func (uc *bookingCommandsImpl) CancelAsStudent(ctx context.Context, actor shared.Actor, id uuid.UUID, reason string) error {
	r, err := booking.NewReason(reason)
	if err != nil {
		return err
	}
	return uc.cancel(ctx, actor, id, r, func(b *booking.Booking) error {
		if !b.IsStudent(actor.ID) && !actor.IsAdmin() {
			return ErrNotBookingOwner
		}
		return nil
	})
}

func (uc *bookingCommandsImpl) cancel(ctx context.Context, actor shared.Actor, id uuid.UUID, reason booking.Reason, authorize func(*booking.Booking) error) error {
	err := uc.mutate(ctx, id, func(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
		if err := authorize(b); err != nil {
			return err
		}
		if err := b.Cancel(actor.ID, reason, uc.cfg.CancellationWindow, now); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return err
	}
	uc.logger.Info("booking cancelled", "booking_id", id, "actor_id", actor.ID)
	uc.effects.changed(ctx, id, shared.EventBookingCancelled, actor)
	return nil
}

func (uc *bookingCommandsImpl) DeleteAvailability(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	var tutorID uuid.UUID
	err := uc.mutate(ctx, id, func(ctx context.Context, tx shared.Tx, b *booking.Booking, _ time.Time) error {
		if !b.IsTutor(actor.ID) && !actor.IsAdmin() {
			return ErrNotBookingTutor
		}
		if b.Status() == booking.StatusPending || b.Status() == booking.StatusConfirmed {
			return ErrBookingClaimed
		}
		tutorID = b.TutorID()
		return tx.Bookings().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.effects.deleted(ctx, id, tutorID, actor)
	return nil
}

// Claim relies on a conditional update rather than a row lock, so of two
// concurrent claims exactly one succeeds and the other sees a conflict.
func (uc *bookingCommandsImpl) Claim(ctx context.Context, actor shared.Actor, id uuid.UUID, notes string) error {
	n, err := booking.NewNote(notes)
	if err != nil {
		return err
	}
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := b.Claim(actor.ID, n, uc.cfg.AutoConfirm, uc.clock.Now()); err != nil {
			return err
		}
		if err := tx.Bookings().ClaimOpen(ctx, b); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return booking.ErrSlotUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		return mapRepoErr(err)
	}
	uc.logger.Info("booking claimed", "booking_id", id, "student_id", actor.ID)
	uc.effects.changed(ctx, id, shared.EventBookingClaimed, actor)
	return nil
}

func (uc *bookingCommandsImpl) UpdateAsStudent(ctx context.Context, actor shared.Actor, id uuid.UUID, notes string) error {
	n, err := booking.NewNote(notes)
	if err != nil {
		return err
	}
	err = uc.mutate(ctx, id, func(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
		if !b.IsStudent(actor.ID) && !actor.IsAdmin() {
			return ErrNotBookingOwner
		}
		if err := b.UpdateStudentNotes(n, now); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return err
	}
	uc.effects.changed(ctx, id, shared.EventBookingUpdated, actor)
	return nil
}

func (uc *bookingCommandsImpl) StartSession(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	err := uc.mutate(ctx, id, func(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
		if !b.IsTutor(actor.ID) && !actor.IsAdmin() {
			return ErrNotBookingTutor
		}
		if err := b.StartSession(now); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return err
	}
	uc.effects.changed(ctx, id, shared.EventSessionStarted, actor)
	return nil
}

func (uc *bookingCommandsImpl) EndSession(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	err := uc.mutate(ctx, id, func(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error {
		if !b.IsTutor(actor.ID) && !actor.IsAdmin() {
			return ErrNotBookingTutor
		}
		if err := b.Complete(now); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return err
	}
	uc.logger.Info("session completed", "booking_id", id)
	uc.effects.changed(ctx, id, shared.EventSessionCompleted, actor)
	return nil
}

// mutate loads the booking under a row lock and runs fn in the same
// transaction.
func (uc *bookingCommandsImpl) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, tx shared.Tx, b *booking.Booking, now time.Time) error) error {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return err
		}
		return fn(ctx, tx, b, uc.clock.Now())
	})
	return mapRepoErr(err)
}

func (uc *bookingCommandsImpl) checkSubject(ctx context.Context, reads shared.CommandReads, tutorID uuid.UUID, subjectID *uuid.UUID) error {
	if subjectID == nil {
		return nil
	}
	ok, err := reads.TutorTeachesSubject(ctx, tutorID, *subjectID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSubjectNotTaught
	}
	return nil
}

// mapRepoErr gives repository failures a kind and a message fit for
// clients. Errors that already carry a kind pass through unchanged.
func mapRepoErr(err error) error {
	if err == nil || errs.KindOf(err) != nil {
		return err
	}
	switch {
	case infra.IsKind(err, infra.KindNotFound):
		return queries.ErrBookingNotFound
	case infra.IsKind(err, infra.KindCheckViolated):
		return errs.Public(ErrBookingInvalid, err)
	case infra.IsKind(err, infra.KindForeignKeyViolated):
		return errs.Public(ErrBookingInUse, err)
	case infra.IsKind(err, infra.KindDuplicateKey), infra.IsKind(err, infra.KindConflict):
		return errs.Public(ErrBookingConflict, err)
	}
	return err
}
