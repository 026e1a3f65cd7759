package response

import (
	"time"

	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RecurrenceResponse struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	Count     int    `json:"count"`
}

type BookingResponse struct {
	ID                 uuid.UUID           `json:"id"`
	TutorID            uuid.UUID           `json:"tutor_id"`
	TutorName          string              `json:"tutor_name"`
	StudentID          *uuid.UUID          `json:"student_id"`
	StudentName        *string             `json:"student_name"`
	SubjectID          *uuid.UUID          `json:"subject_id"`
	SubjectName        *string             `json:"subject_name"`
	ScheduledStart     time.Time           `json:"start_time"`
	ScheduledEnd       time.Time           `json:"end_time"`
	Status             string              `json:"status"`
	TutorNotes         *string             `json:"tutor_notes"`
	StudentNotes       *string             `json:"student_notes"`
	CancelledBy        *uuid.UUID          `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	RejectionReason    *string             `json:"rejection_reason,omitempty"`
	IsRecurring        bool                `json:"is_recurring"`
	Recurrence         *RecurrenceResponse `json:"recurrence,omitempty"`
	ParentBookingID    *uuid.UUID          `json:"parent_booking_id,omitempty"`
	RemindersSent      map[string]bool     `json:"reminders_sent"`
	ActualStart        *time.Time          `json:"actual_start,omitempty"`
	ActualEnd          *time.Time          `json:"actual_end,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func FromBookingView(v *queries.BookingView) (*BookingResponse, error) {
	var out BookingResponse
	if err := copier.Copy(&out, v); err != nil {
		return nil, err
	}
	return &out, nil
}

func FromBookingViews(vs []*queries.BookingView) ([]*BookingResponse, error) {
	out := make([]*BookingResponse, 0, len(vs))
	for _, v := range vs {
		r, err := FromBookingView(v)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

type CreateAvailabilityResponse struct {
	Booking       *BookingResponse `json:"booking"`
	OccurrenceIDs []uuid.UUID      `json:"occurrence_ids,omitempty"`
}

type ChatTokenResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	APIKey    string    `json:"api_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func FromChatToken(t *commands.ChatToken) *ChatTokenResponse {
	return &ChatTokenResponse{
		UserID:    t.UserID,
		Token:     t.Token,
		APIKey:    t.APIKey,
		ExpiresAt: t.ExpiresAt,
	}
}
