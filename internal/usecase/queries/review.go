package queries

import (
	"context"
	"time"

	"tutorlink/internal/infra"
	"tutorlink/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound = errs.Kinded(errs.ErrNotFound, "review not found")
	ErrInvalidCursor  = errs.Kinded(errs.ErrValidation, "invalid cursor")
)

type ReviewView struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	TutorID     uuid.UUID `json:"tutor_id"`
	TutorName   string    `json:"tutor_name"`
	Rating      int32     `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ReviewListItem struct {
	ID          uuid.UUID `json:"id"`
	StudentName string    `json:"student_name"`
	Rating      int32     `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

type TutorRatingStats struct {
	TutorID       uuid.UUID `json:"tutor_id"`
	TotalReviews  int32     `json:"total_reviews"`
	AverageRating float64   `json:"average_rating"`
}

type ReviewReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReviewView, error)
	FindByTutorFirstPage(ctx context.Context, tutorID uuid.UUID, limit int32) ([]*ReviewListItem, error)
	FindByTutorKeyset(ctx context.Context, tutorID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*ReviewListItem, error)
	GetTutorRatingStats(ctx context.Context, tutorID uuid.UUID) (*TutorRatingStats, error)
}

type ReviewQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ReviewView, error)
	ListByTutor(ctx context.Context, tutorID uuid.UUID, cursor *Cursor, limit int) ([]*ReviewListItem, *Cursor, error)
	GetTutorRatingStats(ctx context.Context, tutorID uuid.UUID) (*TutorRatingStats, error)
}

type reviewQueriesImpl struct {
	repo ReviewReadStore
}

func NewReviewQueries(repo ReviewReadStore) ReviewQueries {
	return &reviewQueriesImpl{repo: repo}
}

func (q *reviewQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReviewView, error) {
	rv, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return rv, nil
}

func (q *reviewQueriesImpl) ListByTutor(ctx context.Context, tutorID uuid.UUID, cursor *Cursor, limit int) ([]*ReviewListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	var rows []*ReviewListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.repo.FindByTutorFirstPage(ctx, tutorID, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.repo.FindByTutorKeyset(ctx, tutorID, lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}
	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (q *reviewQueriesImpl) GetTutorRatingStats(ctx context.Context, tutorID uuid.UUID) (*TutorRatingStats, error) {
	return q.repo.GetTutorRatingStats(ctx, tutorID)
}
