//go:build unit

package booking_test

import (
	"testing"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/pkg/errs"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func mustSlot(t *testing.T, start time.Time, d time.Duration) booking.TimeSlot {
	t.Helper()
	slot, err := booking.NewTimeSlot(start, start.Add(d))
	require.NoError(t, err)
	return slot
}

func newOpen(t *testing.T, startIn time.Duration) *booking.Booking {
	t.Helper()
	b, err := booking.NewAvailability(booking.AvailabilityParams{
		TutorID:  uuid.New(),
		TimeSlot: mustSlot(t, now.Add(startIn), time.Hour),
	}, now)
	require.NoError(t, err)
	return b
}

func claimed(t *testing.T, startIn time.Duration, autoConfirm bool) (*booking.Booking, uuid.UUID) {
	t.Helper()
	b := newOpen(t, startIn)
	student := uuid.New()
	require.NoError(t, b.Claim(student, booking.Note{}, autoConfirm, now))
	return b, student
}

func TestTimeSlot(t *testing.T) {
	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := booking.NewTimeSlot(now, now.Add(-time.Minute))
		require.ErrorIs(t, err, booking.ErrInvalidTimeSlot)
		assert.True(t, errs.Is(err, errs.ErrValidation))
	})

	t.Run("zero length is rejected", func(t *testing.T) {
		_, err := booking.NewTimeSlot(now, now)
		require.ErrorIs(t, err, booking.ErrInvalidTimeSlot)
	})

	t.Run("valid slot", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(now, now.Add(90*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, slot.Duration())
	})
}

func TestNewAvailability(t *testing.T) {
	t.Run("starts open with no student and fresh reminder flags", func(t *testing.T) {
		b := newOpen(t, 48*time.Hour)

		assert.Equal(t, booking.StatusOpen, b.Status())
		assert.Nil(t, b.StudentID())
		assert.Equal(t, now, b.ScheduleSetAt())
		want := map[string]bool{"reminderSlot1": false, "reminderSlot2": false, "reminderSlot3": false}
		if diff := cmp.Diff(want, b.Reminders().ToMap()); diff != "" {
			t.Errorf("reminders mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("start in the past is rejected", func(t *testing.T) {
		_, err := booking.NewAvailability(booking.AvailabilityParams{
			TutorID:  uuid.New(),
			TimeSlot: mustSlot(t, now.Add(-time.Hour), time.Hour),
		}, now)
		require.ErrorIs(t, err, booking.ErrStartInPast)
	})
}

func TestClaim(t *testing.T) {
	t.Run("open slot moves to pending", func(t *testing.T) {
		b, student := claimed(t, 24*time.Hour, false)
		assert.Equal(t, booking.StatusPending, b.Status())
		require.NotNil(t, b.StudentID())
		assert.Equal(t, student, *b.StudentID())
	})

	t.Run("auto confirm moves straight to confirmed", func(t *testing.T) {
		b, _ := claimed(t, 24*time.Hour, true)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("second claim is a conflict", func(t *testing.T) {
		b, _ := claimed(t, 24*time.Hour, false)
		err := b.Claim(uuid.New(), booking.Note{}, false, now)
		require.ErrorIs(t, err, booking.ErrSlotUnavailable)
		assert.True(t, errs.Is(err, errs.ErrConflict))
	})

	t.Run("tutor cannot claim own slot", func(t *testing.T) {
		b := newOpen(t, 24*time.Hour)
		err := b.Claim(b.TutorID(), booking.Note{}, false, now)
		require.ErrorIs(t, err, booking.ErrOwnSlot)
	})

	t.Run("slot that already started cannot be claimed", func(t *testing.T) {
		b := newOpen(t, time.Hour)
		err := b.Claim(uuid.New(), booking.Note{}, false, now.Add(2*time.Hour))
		require.ErrorIs(t, err, booking.ErrStartInPast)
	})
}

func TestConfirmAndReject(t *testing.T) {
	t.Run("confirm pending", func(t *testing.T) {
		b, _ := claimed(t, 24*time.Hour, false)
		require.NoError(t, b.Confirm(now))
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("confirm open is invalid", func(t *testing.T) {
		b := newOpen(t, 24*time.Hour)
		require.ErrorIs(t, b.Confirm(now), booking.ErrInvalidTransition)
	})

	t.Run("reject returns slot to open and clears the student", func(t *testing.T) {
		b, _ := claimed(t, 24*time.Hour, false)
		reason, err := booking.NewReason("schedule clash")
		require.NoError(t, err)

		require.NoError(t, b.Reject(reason, now))

		assert.Equal(t, booking.StatusOpen, b.Status())
		assert.Nil(t, b.StudentID())
		require.NotNil(t, b.RejectionReason())
		assert.Equal(t, "schedule clash", b.RejectionReason().String())
	})

	t.Run("rejected slot can be claimed again", func(t *testing.T) {
		b, _ := claimed(t, 24*time.Hour, false)
		require.NoError(t, b.Reject(booking.Reason{}, now))
		require.NoError(t, b.Claim(uuid.New(), booking.Note{}, false, now))
		assert.Equal(t, booking.StatusPending, b.Status())
	})
}

func TestCancel(t *testing.T) {
	window := 2 * time.Hour

	t.Run("more than two hours before start succeeds", func(t *testing.T) {
		b, student := claimed(t, 3*time.Hour, true)
		reason, _ := booking.NewReason("sick")

		require.NoError(t, b.Cancel(student, reason, window, now))

		assert.Equal(t, booking.StatusCancelled, b.Status())
		require.NotNil(t, b.Cancellation())
		assert.Equal(t, student, b.Cancellation().By)
		assert.Equal(t, now, b.Cancellation().At)
		assert.Equal(t, "sick", b.Cancellation().Reason.String())
	})

	t.Run("ninety minutes before start is forbidden", func(t *testing.T) {
		b, student := claimed(t, 90*time.Minute, true)

		err := b.Cancel(student, booking.Reason{}, window, now)

		require.ErrorIs(t, err, booking.ErrCancellationTooLate)
		assert.True(t, errs.Is(err, errs.ErrForbidden))
		assert.Contains(t, err.Error(), "2 hours")
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("exactly two hours before start is forbidden", func(t *testing.T) {
		b, student := claimed(t, 2*time.Hour, true)
		require.ErrorIs(t, b.Cancel(student, booking.Reason{}, window, now), booking.ErrCancellationTooLate)
	})

	t.Run("open slot can be cancelled", func(t *testing.T) {
		b := newOpen(t, 24*time.Hour)
		require.NoError(t, b.Cancel(b.TutorID(), booking.Reason{}, window, now))
	})

	t.Run("terminal booking cannot be cancelled again", func(t *testing.T) {
		b, student := claimed(t, 24*time.Hour, true)
		require.NoError(t, b.Cancel(student, booking.Reason{}, window, now))
		require.ErrorIs(t, b.Cancel(student, booking.Reason{}, window, now), booking.ErrInvalidTransition)
	})
}

func TestCompleteSession(t *testing.T) {
	t.Run("confirmed session completes with actual times", func(t *testing.T) {
		b, _ := claimed(t, time.Hour, true)
		startedAt := now.Add(time.Hour + 2*time.Minute)
		require.NoError(t, b.StartSession(startedAt))

		endedAt := startedAt.Add(55 * time.Minute)
		require.NoError(t, b.Complete(endedAt))

		assert.Equal(t, booking.StatusCompleted, b.Status())
		assert.Equal(t, startedAt, *b.ActualStart())
		assert.Equal(t, endedAt, *b.ActualEnd())
	})

	t.Run("pending session cannot complete", func(t *testing.T) {
		b, _ := claimed(t, time.Hour, false)
		require.ErrorIs(t, b.Complete(now.Add(2*time.Hour)), booking.ErrInvalidTransition)
	})

	t.Run("completing before the scheduled start without a start event fails", func(t *testing.T) {
		b, _ := claimed(t, time.Hour, true)
		require.ErrorIs(t, b.Complete(now.Add(30*time.Minute)), booking.ErrSessionNotInProgress)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		b, student := claimed(t, time.Hour, true)
		require.NoError(t, b.Complete(now.Add(2*time.Hour)))
		assert.True(t, b.Status().IsTerminal())
		require.ErrorIs(t, b.Cancel(student, booking.Reason{}, 0, now), booking.ErrInvalidTransition)
	})
}

func TestReschedule(t *testing.T) {
	t.Run("moving the start resets reminder flags", func(t *testing.T) {
		b, _ := claimed(t, 48*time.Hour, true)
		b.MarkReminderSent(booking.ReminderSlot1)
		require.True(t, b.Reminders().Sent(booking.ReminderSlot1))

		later := now.Add(time.Hour)
		require.NoError(t, b.Reschedule(mustSlot(t, now.Add(72*time.Hour), time.Hour), later))

		assert.False(t, b.Reminders().Sent(booking.ReminderSlot1))
		assert.Equal(t, later, b.ScheduleSetAt())
	})

	t.Run("changing only the end keeps reminder flags", func(t *testing.T) {
		b, _ := claimed(t, 48*time.Hour, true)
		b.MarkReminderSent(booking.ReminderSlot1)

		require.NoError(t, b.Reschedule(mustSlot(t, b.TimeSlot().Start(), 2*time.Hour), now))

		assert.True(t, b.Reminders().Sent(booking.ReminderSlot1))
		assert.Equal(t, now, b.ScheduleSetAt())
	})

	t.Run("cannot move into the past", func(t *testing.T) {
		b := newOpen(t, 48*time.Hour)
		require.ErrorIs(t, b.Reschedule(mustSlot(t, now.Add(-time.Hour), time.Hour), now), booking.ErrStartInPast)
	})
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to booking.Status
		ok       bool
	}{
		{booking.StatusOpen, booking.StatusPending, true},
		{booking.StatusOpen, booking.StatusCompleted, false},
		{booking.StatusPending, booking.StatusOpen, true},
		{booking.StatusPending, booking.StatusCompleted, false},
		{booking.StatusConfirmed, booking.StatusCompleted, true},
		{booking.StatusConfirmed, booking.StatusOpen, false},
		{booking.StatusCompleted, booking.StatusCancelled, false},
		{booking.StatusCancelled, booking.StatusOpen, false},
	}
	for _, c := range cases {
		t.Run(string(c.from)+"->"+string(c.to), func(t *testing.T) {
			assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to))
		})
	}
}

func TestOccurrences(t *testing.T) {
	rec, err := booking.NewRecurrence("weekly", 1, 4)
	require.NoError(t, err)

	parent, err := booking.NewAvailability(booking.AvailabilityParams{
		TutorID:    uuid.New(),
		TimeSlot:   mustSlot(t, now.Add(24*time.Hour), time.Hour),
		Recurrence: &rec,
	}, now)
	require.NoError(t, err)

	children, err := parent.Occurrences(now)
	require.NoError(t, err)
	require.Len(t, children, 3)

	for i, child := range children {
		assert.Equal(t, parent.ID(), *child.ParentID())
		assert.Equal(t, booking.StatusOpen, child.Status())
		assert.Equal(t, parent.TimeSlot().Start().Add(time.Duration(i+1)*7*24*time.Hour), child.TimeSlot().Start())
	}
}

func TestNewRecurrence(t *testing.T) {
	cases := []struct {
		name      string
		frequency string
		interval  int
		count     int
		ok        bool
	}{
		{"daily", "daily", 1, 5, true},
		{"weekly upper bound", "weekly", 2, booking.MaxOccurrences, true},
		{"unknown frequency", "monthly", 1, 3, false},
		{"zero interval", "daily", 0, 3, false},
		{"too many occurrences", "weekly", 1, booking.MaxOccurrences + 1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := booking.NewRecurrence(c.frequency, c.interval, c.count)
			if c.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, booking.ErrInvalidRecurrence)
			}
		})
	}
}
