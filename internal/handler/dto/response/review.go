package response

import (
	"time"

	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReviewResponse struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	TutorID     uuid.UUID `json:"tutor_id"`
	TutorName   string    `json:"tutor_name"`
	Rating      int32     `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromReviewView(v *queries.ReviewView) (*ReviewResponse, error) {
	var out ReviewResponse
	if err := copier.Copy(&out, v); err != nil {
		return nil, err
	}
	return &out, nil
}

type ReviewListItemResponse struct {
	ID          uuid.UUID `json:"id"`
	StudentName string    `json:"student_name"`
	Rating      int32     `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

type TutorReviewsResponse struct {
	Items         []*ReviewListItemResponse `json:"items"`
	NextCursor    string                    `json:"next_cursor,omitempty"`
	TotalReviews  int32                     `json:"total_reviews"`
	AverageRating float64                   `json:"average_rating"`
}

func FromTutorReviews(items []*queries.ReviewListItem, next *queries.Cursor, stats *queries.TutorRatingStats) (*TutorReviewsResponse, error) {
	out := &TutorReviewsResponse{Items: make([]*ReviewListItemResponse, 0, len(items))}
	if len(items) > 0 {
		if err := copier.Copy(&out.Items, items); err != nil {
			return nil, err
		}
	}
	if next != nil {
		out.NextCursor = next.After
	}
	if stats != nil {
		out.TotalReviews = stats.TotalReviews
		out.AverageRating = stats.AverageRating
	}
	return out, nil
}
