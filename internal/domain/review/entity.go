package review

import (
	"time"

	"tutorlink/internal/domain/booking"

	"github.com/google/uuid"
)

// Review is a student's rating of a completed session. The tutor is taken
// from the booking, never from the request.
type Review struct {
	id        uuid.UUID
	bookingID uuid.UUID
	studentID uuid.UUID
	tutorID   uuid.UUID
	rating    Rating
	comment   Comment
	createdAt time.Time
	updatedAt time.Time
}

// CheckEligibility reports whether studentID may review b.
func CheckEligibility(b *booking.Booking, studentID uuid.UUID) error {
	if !b.IsStudent(studentID) {
		return ErrNotSessionStudent
	}
	if b.Status() != booking.StatusCompleted {
		return ErrBookingNotEligible
	}
	return nil
}

func NewReview(b *booking.Booking, studentID uuid.UUID, ratingValue int, commentText string, now time.Time) (*Review, error) {
	if err := CheckEligibility(b, studentID); err != nil {
		return nil, err
	}

	rating, err := NewRating(ratingValue)
	if err != nil {
		return nil, err
	}

	comment, err := NewComment(commentText)
	if err != nil {
		return nil, err
	}

	return &Review{
		id:        uuid.New(),
		bookingID: b.ID(),
		studentID: studentID,
		tutorID:   b.TutorID(),
		rating:    rating,
		comment:   comment,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func (r *Review) ID() uuid.UUID        { return r.id }
func (r *Review) BookingID() uuid.UUID { return r.bookingID }
func (r *Review) StudentID() uuid.UUID { return r.studentID }
func (r *Review) TutorID() uuid.UUID   { return r.tutorID }
func (r *Review) Rating() Rating       { return r.rating }
func (r *Review) Comment() Comment     { return r.comment }
func (r *Review) CreatedAt() time.Time { return r.createdAt }
func (r *Review) UpdatedAt() time.Time { return r.updatedAt }
