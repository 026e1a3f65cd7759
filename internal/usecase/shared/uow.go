package shared

import (
	"context"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/domain/review"
	"tutorlink/internal/domain/user"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Reviews() ReviewRepository
	Users() UserRepository
	Reads() CommandReads
}

type CommandReads interface {
	BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	UserByEmail(ctx context.Context, email user.Email) (*user.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	TutorTeachesSubject(ctx context.Context, tutorID, subjectID uuid.UUID) (bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	CreateMany(ctx context.Context, bs []*booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	LockByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Update(ctx context.Context, b *booking.Booking) error
	ClaimOpen(ctx context.Context, b *booking.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	MarkReminderSent(ctx context.Context, id uuid.UUID, slot booking.ReminderSlot, expectedStart time.Time) (bool, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, rev *review.Review) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}
