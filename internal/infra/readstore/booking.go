package readstore

import (
	"context"
	"encoding/json"
	"time"

	"tutorlink/internal/infra"
	"tutorlink/internal/infra/db"
	"tutorlink/internal/pkg/pgconv"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingViewSelect = `
SELECT
	b.id, b.tutor_id, t.first_name || ' ' || t.last_name, t.email,
	b.student_id, s.first_name || ' ' || s.last_name, s.email,
	b.subject_id, sub.name,
	b.scheduled_start, b.scheduled_end, b.status,
	b.tutor_notes, b.student_notes,
	b.cancelled_by, b.cancelled_at, b.cancellation_reason, b.rejection_reason,
	b.is_recurring, b.recurrence_pattern, b.parent_booking_id,
	b.reminders_sent, b.schedule_set_at, b.actual_start, b.actual_end,
	b.created_at, b.updated_at
FROM bookings b
JOIN users t ON t.id = b.tutor_id
LEFT JOIN users s ON s.id = b.student_id
LEFT JOIN subjects sub ON sub.id = b.subject_id`

const findBookingViews = bookingViewSelect + `
WHERE ($1::uuid IS NULL OR b.tutor_id = $1)
  AND ($2::uuid IS NULL OR b.student_id = $2)
  AND ($3::uuid IS NULL OR b.subject_id = $3)
  AND b.status = ANY($4::text[])
  AND ($5::timestamptz IS NULL OR b.scheduled_start >= $5)
  AND ($6::timestamptz IS NULL OR b.scheduled_start < $6)
ORDER BY b.scheduled_start ASC, b.id ASC
LIMIT NULLIF($7::int, 0)`

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	view, err := scanBookingView(r.db.QueryRow(ctx, bookingViewSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get booking view by id", err)
	}
	return view, nil
}

func (r *BookingReadStore) FindAll(ctx context.Context, f queries.BookingFilter) ([]*queries.BookingView, error) {
	rows, err := r.db.Query(ctx, findBookingViews,
		pgconv.UUIDPtrToPgtype(f.TutorID),
		pgconv.UUIDPtrToPgtype(f.StudentID),
		pgconv.UUIDPtrToPgtype(f.SubjectID),
		f.Statuses,
		pgconv.TimePtrToPgtype(f.From),
		pgconv.TimePtrToPgtype(f.To),
		int32(f.Limit),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var out []*queries.BookingView
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}
	return out, nil
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var (
		v                                   queries.BookingView
		studentID, subjectID                pgtype.UUID
		cancelledBy, parentID               pgtype.UUID
		studentName, studentEmail           pgtype.Text
		subjectName                         pgtype.Text
		tutorNotes, studentNotes            pgtype.Text
		cancelReason, rejectReason          pgtype.Text
		cancelledAt, actualStart, actualEnd pgtype.Timestamptz
		pattern                             []byte
		scheduleSetAt                       time.Time
	)
	if err := row.Scan(
		&v.ID, &v.TutorID, &v.TutorName, &v.TutorEmail,
		&studentID, &studentName, &studentEmail,
		&subjectID, &subjectName,
		&v.ScheduledStart, &v.ScheduledEnd, &v.Status,
		&tutorNotes, &studentNotes,
		&cancelledBy, &cancelledAt, &cancelReason, &rejectReason,
		&v.IsRecurring, &pattern, &parentID,
		&v.RemindersSent, &scheduleSetAt, &actualStart, &actualEnd,
		&v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}

	v.StudentID = pgconv.UUIDPtrFromPgtype(studentID)
	v.StudentName = pgconv.StringPtrFromPgtype(studentName)
	v.StudentEmail = pgconv.StringPtrFromPgtype(studentEmail)
	v.SubjectID = pgconv.UUIDPtrFromPgtype(subjectID)
	v.SubjectName = pgconv.StringPtrFromPgtype(subjectName)
	v.TutorNotes = pgconv.StringPtrFromPgtype(tutorNotes)
	v.StudentNotes = pgconv.StringPtrFromPgtype(studentNotes)
	v.CancelledBy = pgconv.UUIDPtrFromPgtype(cancelledBy)
	v.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)
	v.CancellationReason = pgconv.StringPtrFromPgtype(cancelReason)
	v.RejectionReason = pgconv.StringPtrFromPgtype(rejectReason)
	v.ParentBookingID = pgconv.UUIDPtrFromPgtype(parentID)
	v.ScheduleSetAt = scheduleSetAt
	v.ActualStart = pgconv.TimePtrFromPgtype(actualStart)
	v.ActualEnd = pgconv.TimePtrFromPgtype(actualEnd)
	if len(pattern) > 0 {
		var rv queries.RecurrenceView
		if err := json.Unmarshal(pattern, &rv); err == nil {
			v.Recurrence = &rv
		}
	}
	if v.RemindersSent == nil {
		v.RemindersSent = map[string]bool{}
	}
	return &v, nil
}
