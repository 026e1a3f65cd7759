//go:build unit || e2e

package builder

import (
	"time"

	domreview "tutorlink/internal/domain/review"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReviewBuilder struct {
	BookingID   uuid.UUID
	StudentID   uuid.UUID
	TutorID     uuid.UUID
	StudentName string
	Rating      int
	Comment     string
	CreatedAt   time.Time
}

func NewReviewBuilder() *ReviewBuilder {
	return &ReviewBuilder{
		BookingID:   uuid.New(),
		StudentID:   uuid.New(),
		TutorID:     uuid.New(),
		StudentName: "Sam Student",
		Rating:      5,
		Comment:     "Clear explanations, very patient",
		CreatedAt:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (r *ReviewBuilder) With(mutate func(*ReviewBuilder)) *ReviewBuilder {
	mutate(r)
	return r
}

// CompletedBooking is the session the review refers to.
func (r *ReviewBuilder) CompletedBooking() *BookingBuilder {
	return NewBookingBuilder().With(func(b *BookingBuilder) {
		b.ID = r.BookingID
		b.TutorID = r.TutorID
		b.Now = r.CreatedAt
	}).WithStudent(r.StudentID).AsCompleted()
}

func (r *ReviewBuilder) BuildDomain() (*domreview.Review, error) {
	b := r.CompletedBooking().BuildDomain()
	return domreview.NewReview(b, r.StudentID, r.Rating, r.Comment, r.CreatedAt)
}

func (r *ReviewBuilder) WithRating(rating int) *ReviewBuilder {
	r.Rating = rating
	return r
}

func (r *ReviewBuilder) WithComment(comment string) *ReviewBuilder {
	r.Comment = comment
	return r
}

func (r *ReviewBuilder) BuildView(id uuid.UUID) *queries.ReviewView {
	return &queries.ReviewView{
		ID:          id,
		BookingID:   r.BookingID,
		StudentID:   r.StudentID,
		StudentName: r.StudentName,
		TutorID:     r.TutorID,
		TutorName:   "Tina Tutor",
		Rating:      int32(r.Rating),
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.CreatedAt,
	}
}

func (r *ReviewBuilder) BuildListItem(id uuid.UUID) *queries.ReviewListItem {
	return &queries.ReviewListItem{
		ID:          id,
		StudentName: r.StudentName,
		Rating:      int32(r.Rating),
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
}
