package repository

import (
	"context"

	"tutorlink/internal/domain/review"
	"tutorlink/internal/infra"
	"tutorlink/internal/infra/db"
)

type ReviewRepository struct {
	db db.DBTX
}

func NewReviewRepository(dbtx db.DBTX) *ReviewRepository {
	return &ReviewRepository{db: dbtx}
}

// Create fails with KindDuplicateKey when the booking already has a review.
func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reviews (id, booking_id, student_id, tutor_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rev.ID(), rev.BookingID(), rev.StudentID(), rev.TutorID(),
		rev.Rating().Value(), rev.Comment().String(), rev.CreatedAt(), rev.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create review", err)
	}
	return nil
}
