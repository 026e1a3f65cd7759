package request

import (
	"time"

	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
)

type RecurrenceRequest struct {
	Frequency string `json:"frequency" binding:"required,oneof=daily weekly"`
	Interval  int    `json:"interval" binding:"omitempty,min=1"`
	Count     int    `json:"count" binding:"required,min=1"`
}

type CreateAvailabilityRequest struct {
	StartTime  time.Time          `json:"start_time" binding:"required"`
	EndTime    time.Time          `json:"end_time" binding:"required"`
	SubjectID  *uuid.UUID         `json:"subject_id"`
	Notes      string             `json:"notes"`
	Recurrence *RecurrenceRequest `json:"recurrence"`
}

func (r *CreateAvailabilityRequest) ToInput() commands.CreateAvailabilityInput {
	in := commands.CreateAvailabilityInput{
		Start:     r.StartTime,
		End:       r.EndTime,
		SubjectID: r.SubjectID,
		Notes:     r.Notes,
	}
	if r.Recurrence != nil {
		interval := r.Recurrence.Interval
		if interval == 0 {
			interval = 1
		}
		in.Recurrence = &commands.RecurrenceInput{
			Frequency: r.Recurrence.Frequency,
			Interval:  interval,
			Count:     r.Recurrence.Count,
		}
	}
	return in
}

type UpdateAvailabilityRequest struct {
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	SubjectID       *uuid.UUID `json:"subject_id"`
	Notes           *string    `json:"notes"`
	Status          *string    `json:"status" binding:"omitempty,oneof=confirmed open cancelled"`
	RejectionReason *string    `json:"rejection_reason"`
}

func (r *UpdateAvailabilityRequest) ToInput() commands.UpdateAvailabilityInput {
	return commands.UpdateAvailabilityInput{
		Start:           r.StartTime,
		End:             r.EndTime,
		SubjectID:       r.SubjectID,
		Notes:           r.Notes,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
	}
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type ClaimBookingRequest struct {
	Notes string `json:"notes"`
}

type UpdateBookingRequest struct {
	Notes string `json:"notes"`
}

// ListBookingsQuery is bound from the query string.
type ListBookingsQuery struct {
	Status    []string   `form:"status"`
	TutorID   string     `form:"tutor_id" binding:"omitempty,uuid"`
	SubjectID string     `form:"subject_id" binding:"omitempty,uuid"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int        `form:"limit" binding:"omitempty,min=1"`
}

func (q *ListBookingsQuery) ToFilter() queries.BookingFilter {
	return queries.BookingFilter{
		TutorID:   parseOptionalUUID(q.TutorID),
		SubjectID: parseOptionalUUID(q.SubjectID),
		Statuses:  q.Status,
		From:      q.From,
		To:        q.To,
		Limit:     q.Limit,
	}
}

// parseOptionalUUID expects input already checked by the uuid binding rule.
func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
