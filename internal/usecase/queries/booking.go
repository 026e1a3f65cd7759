package queries

import (
	"context"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/infra"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrBookingNotFound = errs.Kinded(errs.ErrNotFound, "booking not found")

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]*BookingView, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*BookingView, error)
	ListForTutor(ctx context.Context, tutorID uuid.UUID, filter BookingFilter) ([]*BookingView, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID, filter BookingFilter) ([]*BookingView, error)
	ListOpen(ctx context.Context, filter BookingFilter) ([]*BookingView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

// GetByID hides bookings the actor may not see behind a not-found error.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if actor.IsAdmin() || view.IsParticipant(actor.ID) || view.Status == booking.StatusOpen.String() {
		return view, nil
	}
	return nil, ErrBookingNotFound
}

func (q *bookingQueriesImpl) ListForTutor(ctx context.Context, tutorID uuid.UUID, filter BookingFilter) ([]*BookingView, error) {
	filter.TutorID = &tutorID
	return q.list(ctx, filter)
}

func (q *bookingQueriesImpl) ListForStudent(ctx context.Context, studentID uuid.UUID, filter BookingFilter) ([]*BookingView, error) {
	filter.StudentID = &studentID
	return q.list(ctx, filter)
}

func (q *bookingQueriesImpl) ListOpen(ctx context.Context, filter BookingFilter) ([]*BookingView, error) {
	filter.StudentID = nil
	filter.Statuses = []string{booking.StatusOpen.String()}
	return q.list(ctx, filter)
}

func (q *bookingQueriesImpl) list(ctx context.Context, filter BookingFilter) ([]*BookingView, error) {
	statuses, err := booking.ParseStatuses(filter.Statuses)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		statuses = booking.ActiveStatuses()
	}
	filter.Statuses = make([]string, len(statuses))
	for i, s := range statuses {
		filter.Statuses[i] = s.String()
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, booking.ErrInvalidTimeSlot
	}
	filter.Limit = ValidateLimit(filter.Limit)
	return q.store.FindAll(ctx, filter)
}
