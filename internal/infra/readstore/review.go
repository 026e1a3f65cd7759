package readstore

import (
	"context"
	"time"

	"tutorlink/internal/infra"
	"tutorlink/internal/infra/db"
	"tutorlink/internal/pkg/pgconv"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewListSelect = `
SELECT r.id, s.first_name || ' ' || s.last_name, r.rating, r.comment, r.created_at
FROM reviews r
JOIN users s ON s.id = r.student_id`

type ReviewReadStore struct {
	db db.DBTX
}

func NewReviewReadStore(dbtx db.DBTX) *ReviewReadStore {
	return &ReviewReadStore{db: dbtx}
}

func (r *ReviewReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReviewView, error) {
	var v queries.ReviewView
	err := r.db.QueryRow(ctx, `
		SELECT r.id, r.booking_id, r.student_id, s.first_name || ' ' || s.last_name,
		       r.tutor_id, t.first_name || ' ' || t.last_name,
		       r.rating, r.comment, r.created_at, r.updated_at
		FROM reviews r
		JOIN users s ON s.id = r.student_id
		JOIN users t ON t.id = r.tutor_id
		WHERE r.id = $1`, id).
		Scan(&v.ID, &v.BookingID, &v.StudentID, &v.StudentName, &v.TutorID, &v.TutorName,
			&v.Rating, &v.Comment, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("review not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get review view by id", err)
	}
	return &v, nil
}

func (r *ReviewReadStore) FindByTutorFirstPage(ctx context.Context, tutorID uuid.UUID, limit int32) ([]*queries.ReviewListItem, error) {
	rows, err := r.db.Query(ctx, reviewListSelect+`
		WHERE r.tutor_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2`, tutorID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get reviews first page by tutor", err)
	}
	return collectReviewItems(rows)
}

func (r *ReviewReadStore) FindByTutorKeyset(ctx context.Context, tutorID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReviewListItem, error) {
	rows, err := r.db.Query(ctx, reviewListSelect+`
		WHERE r.tutor_id = $1 AND (r.created_at, r.id) < ($2, $3)
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $4`, tutorID, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get reviews keyset by tutor", err)
	}
	return collectReviewItems(rows)
}

func (r *ReviewReadStore) GetTutorRatingStats(ctx context.Context, tutorID uuid.UUID) (*queries.TutorRatingStats, error) {
	stats := &queries.TutorRatingStats{TutorID: tutorID}
	err := r.db.QueryRow(ctx, `
		SELECT count(*)::int4, COALESCE(avg(rating), 0)::float8
		FROM reviews WHERE tutor_id = $1`, tutorID).
		Scan(&stats.TotalReviews, &stats.AverageRating)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get tutor rating stats", err)
	}
	return stats, nil
}

func collectReviewItems(rows pgx.Rows) ([]*queries.ReviewListItem, error) {
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.ReviewListItem, error) {
		var it queries.ReviewListItem
		err := row.Scan(&it.ID, &it.StudentName, &it.Rating, &it.Comment, &it.CreatedAt)
		return &it, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan reviews", err)
	}
	return items, nil
}
