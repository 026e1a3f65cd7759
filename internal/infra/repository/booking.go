package repository

import (
	"context"
	"encoding/json"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/infra"
	"tutorlink/internal/infra/db"
	"tutorlink/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingColumns = `
	id, tutor_id, student_id, subject_id, scheduled_start, scheduled_end, status,
	tutor_notes, student_notes, cancelled_by, cancelled_at, cancellation_reason,
	rejection_reason, is_recurring, recurrence_pattern, parent_booking_id,
	reminders_sent, schedule_set_at, actual_start, actual_end, created_at, updated_at`

const insertBooking = `
INSERT INTO bookings (` + bookingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

// An open row never keeps a student; a cancelled row always has a timestamp.
const updateBooking = `
UPDATE bookings SET
	student_id          = CASE WHEN $2::text = 'open' THEN NULL ELSE $3::uuid END,
	status              = $2,
	subject_id          = $4,
	scheduled_start     = $5,
	scheduled_end       = $6,
	tutor_notes         = $7,
	student_notes       = CASE WHEN $2::text = 'open' THEN NULL ELSE $8::text END,
	cancelled_by        = $9,
	cancelled_at        = CASE WHEN $2::text = 'cancelled' THEN COALESCE($10, cancelled_at, now()) ELSE NULL END,
	cancellation_reason = $11,
	rejection_reason    = $12,
	reminders_sent      = $13,
	schedule_set_at     = $14,
	actual_start        = $15,
	actual_end          = $16,
	updated_at          = $17
WHERE id = $1`

const claimOpenBooking = `
UPDATE bookings SET
	student_id       = $2,
	student_notes    = $3,
	status           = $4,
	rejection_reason = NULL,
	updated_at       = $5
WHERE id = $1 AND status = 'open'`

const markReminderSent = `
UPDATE bookings SET
	reminders_sent = jsonb_set(reminders_sent, ARRAY[$2::text], 'true'::jsonb, true)
WHERE id = $1
  AND scheduled_start = $3
  AND COALESCE((reminders_sent ->> $2::text)::boolean, false) = false`

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	args, err := insertArgs(b)
	if err != nil {
		return infra.WrapRepoErr("failed to encode booking", err, infra.KindDBFailure)
	}
	if _, err := r.db.Exec(ctx, insertBooking, args...); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

// CreateMany inserts in order; callers run it inside a transaction.
func (r *BookingRepository) CreateMany(ctx context.Context, bs []*booking.Booking) error {
	for _, b := range bs {
		if err := r.Create(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.find(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// LockByID reads the row with FOR UPDATE so concurrent writers serialise on it.
func (r *BookingRepository) LockByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.find(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *BookingRepository) find(ctx context.Context, query string, id uuid.UUID) (*booking.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	return b, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	var cancelledBy *uuid.UUID
	var cancelledAt *time.Time
	var cancelReason pgtype.Text
	if c := b.Cancellation(); c != nil {
		by, at := c.By, c.At
		cancelledBy, cancelledAt = &by, &at
		cancelReason = pgconv.TextOrNull(c.Reason.String())
	}

	tag, err := r.db.Exec(ctx, updateBooking,
		b.ID(),
		b.Status().String(),
		pgconv.UUIDPtrToPgtype(b.StudentID()),
		pgconv.UUIDPtrToPgtype(b.SubjectID()),
		b.TimeSlot().Start(),
		b.TimeSlot().End(),
		pgconv.TextOrNull(b.TutorNotes().String()),
		pgconv.TextOrNull(b.StudentNotes().String()),
		pgconv.UUIDPtrToPgtype(cancelledBy),
		pgconv.TimePtrToPgtype(cancelledAt),
		cancelReason,
		reasonText(b.RejectionReason()),
		b.Reminders().ToMap(),
		b.ScheduleSetAt(),
		pgconv.TimePtrToPgtype(b.ActualStart()),
		pgconv.TimePtrToPgtype(b.ActualEnd()),
		b.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

// ClaimOpen persists a claim made on b. The write only lands while the row
// is still open; otherwise it fails with KindConflict.
func (r *BookingRepository) ClaimOpen(ctx context.Context, b *booking.Booking) error {
	if b.StudentID() == nil {
		return infra.WrapRepoErr("claim without student", nil, infra.KindDBFailure)
	}
	tag, err := r.db.Exec(ctx, claimOpenBooking,
		b.ID(),
		*b.StudentID(),
		pgconv.TextOrNull(b.StudentNotes().String()),
		b.Status().String(),
		b.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to claim booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking is no longer open", nil, infra.KindConflict)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

// MarkReminderSent flips one reminder flag. It reports false when the flag
// was already set or the booking was moved off expectedStart in the meantime.
func (r *BookingRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, slot booking.ReminderSlot, expectedStart time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, markReminderSent, id, string(slot), expectedStart)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark reminder sent", err)
	}
	return tag.RowsAffected() == 1, nil
}

func insertArgs(b *booking.Booking) ([]any, error) {
	var pattern []byte
	if rec := b.Recurrence(); rec != nil {
		raw, err := json.Marshal(rec.Pattern())
		if err != nil {
			return nil, err
		}
		pattern = raw
	}
	var cancelledBy *uuid.UUID
	var cancelledAt *time.Time
	var cancelReason pgtype.Text
	if c := b.Cancellation(); c != nil {
		by, at := c.By, c.At
		cancelledBy, cancelledAt = &by, &at
		cancelReason = pgconv.TextOrNull(c.Reason.String())
	}
	return []any{
		b.ID(),
		b.TutorID(),
		pgconv.UUIDPtrToPgtype(b.StudentID()),
		pgconv.UUIDPtrToPgtype(b.SubjectID()),
		b.TimeSlot().Start(),
		b.TimeSlot().End(),
		b.Status().String(),
		pgconv.TextOrNull(b.TutorNotes().String()),
		pgconv.TextOrNull(b.StudentNotes().String()),
		pgconv.UUIDPtrToPgtype(cancelledBy),
		pgconv.TimePtrToPgtype(cancelledAt),
		cancelReason,
		reasonText(b.RejectionReason()),
		b.IsRecurring(),
		pattern,
		pgconv.UUIDPtrToPgtype(b.ParentID()),
		b.Reminders().ToMap(),
		b.ScheduleSetAt(),
		pgconv.TimePtrToPgtype(b.ActualStart()),
		pgconv.TimePtrToPgtype(b.ActualEnd()),
		b.CreatedAt(),
		b.UpdatedAt(),
	}, nil
}

func reasonText(r *booking.Reason) pgtype.Text {
	if r == nil {
		return pgtype.Text{}
	}
	return pgconv.TextOrNull(r.String())
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, tutorID                         uuid.UUID
		studentID, subjectID, cancelledBy   pgtype.UUID
		parentID                            pgtype.UUID
		start, end, scheduleSetAt           time.Time
		createdAt, updatedAt                time.Time
		status                              string
		tutorNotes, studentNotes            pgtype.Text
		cancelReason, rejectReason          pgtype.Text
		cancelledAt, actualStart, actualEnd pgtype.Timestamptz
		isRecurring                         bool
		pattern                             []byte
		reminders                           map[string]bool
	)
	if err := row.Scan(
		&id, &tutorID, &studentID, &subjectID, &start, &end, &status,
		&tutorNotes, &studentNotes, &cancelledBy, &cancelledAt, &cancelReason,
		&rejectReason, &isRecurring, &pattern, &parentID,
		&reminders, &scheduleSetAt, &actualStart, &actualEnd, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	slot, err := booking.NewTimeSlot(start, end)
	if err != nil {
		return nil, err
	}
	st, err := booking.NewStatus(status)
	if err != nil {
		return nil, err
	}

	p := booking.ReconstructParams{
		ID:            id,
		TutorID:       tutorID,
		StudentID:     pgconv.UUIDPtrFromPgtype(studentID),
		SubjectID:     pgconv.UUIDPtrFromPgtype(subjectID),
		TimeSlot:      slot,
		Status:        st,
		TutorNotes:    noteFrom(tutorNotes),
		StudentNotes:  noteFrom(studentNotes),
		ParentID:      pgconv.UUIDPtrFromPgtype(parentID),
		Reminders:     booking.ReminderFlagsFromMap(reminders),
		ScheduleSetAt: scheduleSetAt,
		ActualStart:   pgconv.TimePtrFromPgtype(actualStart),
		ActualEnd:     pgconv.TimePtrFromPgtype(actualEnd),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if by := pgconv.UUIDPtrFromPgtype(cancelledBy); by != nil && cancelledAt.Valid {
		reason, _ := booking.NewReason(cancelReason.String)
		p.Cancellation = &booking.Cancellation{By: *by, At: cancelledAt.Time, Reason: reason}
	}
	if rejectReason.Valid {
		reason, _ := booking.NewReason(rejectReason.String)
		p.RejectionReason = &reason
	}
	if isRecurring && len(pattern) > 0 {
		var rp booking.RecurrencePattern
		if err := json.Unmarshal(pattern, &rp); err == nil {
			if rec, err := booking.RecurrenceFromPattern(rp); err == nil {
				p.Recurrence = &rec
			}
		}
	}
	return booking.ReconstructBooking(p), nil
}

func noteFrom(t pgtype.Text) booking.Note {
	n, _ := booking.NewNote(t.String)
	return n
}
