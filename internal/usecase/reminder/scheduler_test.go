//go:build unit

package reminder_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/infra"
	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/reminder"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type memoryStore struct {
	mu    sync.Mutex
	views map[uuid.UUID]queries.BookingView
}

func (m *memoryStore) put(v queries.BookingView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[v.ID] = v
}

func (m *memoryStore) get(id uuid.UUID) queries.BookingView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.views[id]
}

func (m *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.views[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	v.RemindersSent = copyFlags(v.RemindersSent)
	return &v, nil
}

func (m *memoryStore) FindAll(_ context.Context, f queries.BookingFilter) ([]*queries.BookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*queries.BookingView
	for _, v := range m.views {
		matched := false
		for _, s := range f.Statuses {
			matched = matched || s == v.Status
		}
		if !matched {
			continue
		}
		if f.From != nil && v.ScheduledStart.Before(*f.From) {
			continue
		}
		if f.To != nil && !v.ScheduledStart.Before(*f.To) {
			continue
		}
		v.RemindersSent = copyFlags(v.RemindersSent)
		out = append(out, &v)
	}
	return out, nil
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type memoryBookings struct {
	shared.BookingRepository
	store *memoryStore
}

func (r *memoryBookings) MarkReminderSent(_ context.Context, id uuid.UUID, slot booking.ReminderSlot, expectedStart time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v, ok := r.store.views[id]
	if !ok || !v.ScheduledStart.Equal(expectedStart) || v.RemindersSent[string(slot)] {
		return false, nil
	}
	v.RemindersSent = copyFlags(v.RemindersSent)
	v.RemindersSent[string(slot)] = true
	r.store.views[id] = v
	return true, nil
}

type memoryTx struct {
	shared.Tx
	bookings *memoryBookings
}

func (t *memoryTx) Bookings() shared.BookingRepository { return t.bookings }

type memoryUoW struct {
	shared.UnitOfWork
	tx *memoryTx
}

func (u *memoryUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

type sentReminder struct {
	bookingID uuid.UUID
	label     string
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentReminder
	fail error
}

func (d *recordingDispatcher) SendReminder(_ context.Context, v *queries.BookingView, label string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.sent = append(d.sent, sentReminder{bookingID: v.ID, label: label})
	return nil
}

func (d *recordingDispatcher) labels() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.sent))
	for _, s := range d.sent {
		out = append(out, s.label)
	}
	return out
}

type recordingEvents struct {
	mu     sync.Mutex
	events []shared.BookingEvent
}

func (e *recordingEvents) Publish(_ context.Context, evt shared.BookingEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
	return nil
}

type SchedulerTestSuite struct {
	suite.Suite
	now        time.Time
	clock      *clock.MockClock
	store      *memoryStore
	dispatcher *recordingDispatcher
	events     *recordingEvents
	scheduler  *reminder.Scheduler
	cfg        config.ReminderConfig
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (s *SchedulerTestSuite) SetupTest() {
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.clock = clock.NewMockClock(s.now)
	s.store = &memoryStore{views: make(map[uuid.UUID]queries.BookingView)}
	s.dispatcher = &recordingDispatcher{}
	s.events = &recordingEvents{}
	s.cfg = config.ReminderConfig{
		Enabled:       true,
		Time1:         24,
		Time2:         1,
		Time3:         0.25,
		SweepInterval: 5 * time.Minute,
		Statuses:      []string{"confirmed"},
	}
	s.scheduler = s.newScheduler(s.cfg)
}

func (s *SchedulerTestSuite) newScheduler(cfg config.ReminderConfig) *reminder.Scheduler {
	uow := &memoryUoW{tx: &memoryTx{bookings: &memoryBookings{store: s.store}}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sch, err := reminder.NewScheduler(cfg, s.store, uow, s.dispatcher, s.events, s.clock, logger)
	s.Require().NoError(err)
	return sch
}

func (s *SchedulerTestSuite) addBooking(startIn time.Duration, status string) queries.BookingView {
	student := uuid.New()
	v := queries.BookingView{
		ID:             uuid.New(),
		TutorID:        uuid.New(),
		StudentID:      &student,
		ScheduledStart: s.now.Add(startIn),
		ScheduledEnd:   s.now.Add(startIn + time.Hour),
		Status:         status,
		RemindersSent:  booking.NewReminderFlags().ToMap(),
		ScheduleSetAt:  s.clock.Now(),
	}
	s.store.put(v)
	return v
}

func (s *SchedulerTestSuite) TestRescheduleRegistersEverySlot() {
	v := s.addBooking(48*time.Hour, "confirmed")

	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	s.Equal(3, s.scheduler.Pending())
	at, ok := s.scheduler.Scheduled(v.ID, booking.ReminderSlot1)
	s.True(ok)
	s.Equal(v.ScheduledStart.Add(-24*time.Hour), at)
	at, ok = s.scheduler.Scheduled(v.ID, booking.ReminderSlot3)
	s.True(ok)
	s.Equal(v.ScheduledStart.Add(-15*time.Minute), at)
}

func (s *SchedulerTestSuite) TestTimerDispatchesAndMarksSlot() {
	v := s.addBooking(48*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	s.clock.Add(24 * time.Hour)

	s.Equal([]string{"in 24 hours"}, s.dispatcher.labels())
	s.True(s.store.get(v.ID).RemindersSent[string(booking.ReminderSlot1)])
	s.Equal(2, s.scheduler.Pending())
	s.Require().Len(s.events.events, 1)
	s.Equal(shared.EventReminderSent, s.events.events[0].Type)

	s.clock.Add(23*time.Hour + 45*time.Minute)
	s.Equal([]string{"in 24 hours", "in 1 hour", "in 15 minutes"}, s.dispatcher.labels())
	s.Equal(0, s.scheduler.Pending())
}

func (s *SchedulerTestSuite) TestSweepSkipsSlotsThatPassedBeforeCreation() {
	s.addBooking(2*time.Hour, "confirmed")

	s.Require().NoError(s.scheduler.Sweep(context.Background()))
	s.clock.Add(0)

	s.Empty(s.dispatcher.labels())
	s.Equal(2, s.scheduler.Pending())
}

func (s *SchedulerTestSuite) TestSweepIgnoresIneligibleStatuses() {
	s.addBooking(2*time.Hour, "pending")
	s.addBooking(2*time.Hour, "cancelled")

	s.Require().NoError(s.scheduler.Sweep(context.Background()))

	s.Equal(0, s.scheduler.Pending())
}

func (s *SchedulerTestSuite) TestFailedDispatchIsRetriedBySweep() {
	v := s.addBooking(2*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Sweep(context.Background()))

	s.dispatcher.fail = errs.Mark(errs.New("smtp down"), errs.ErrDependency)
	s.clock.Add(time.Hour)
	s.False(s.store.get(v.ID).RemindersSent[string(booking.ReminderSlot2)])

	s.dispatcher.fail = nil
	s.clock.Add(5 * time.Minute)
	s.Require().NoError(s.scheduler.Sweep(context.Background()))
	s.clock.Add(0)

	s.Equal([]string{"in 1 hour"}, s.dispatcher.labels())
	s.True(s.store.get(v.ID).RemindersSent[string(booking.ReminderSlot2)])
}

func (s *SchedulerTestSuite) TestSentSlotIsNotRepeatedBySweep() {
	v := s.addBooking(2*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Sweep(context.Background()))
	s.clock.Add(time.Hour)
	s.Require().Len(s.dispatcher.labels(), 1)

	s.Require().NoError(s.scheduler.Sweep(context.Background()))
	s.clock.Add(0)

	s.Len(s.dispatcher.labels(), 1)
	_, ok := s.scheduler.Scheduled(v.ID, booking.ReminderSlot3)
	s.True(ok)
}

func (s *SchedulerTestSuite) TestCancelledBookingDropsTimers() {
	v := s.addBooking(48*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	v.Status = "cancelled"
	s.store.put(v)
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	s.Equal(0, s.scheduler.Pending())
}

func (s *SchedulerTestSuite) TestStatusIsRecheckedAtFireTime() {
	v := s.addBooking(48*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	v.Status = "cancelled"
	s.store.put(v)
	s.clock.Add(24 * time.Hour)

	s.Empty(s.dispatcher.labels())
	s.Equal(0, s.scheduler.Pending())
}

func (s *SchedulerTestSuite) TestRescheduleMovesTimers() {
	v := s.addBooking(48*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	v.ScheduledStart = v.ScheduledStart.Add(24 * time.Hour)
	v.ScheduledEnd = v.ScheduledEnd.Add(24 * time.Hour)
	s.store.put(v)
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	at, ok := s.scheduler.Scheduled(v.ID, booking.ReminderSlot1)
	s.True(ok)
	s.Equal(s.now.Add(48*time.Hour), at)
	s.Equal(3, s.scheduler.Pending())

	s.clock.Add(24 * time.Hour)
	s.Empty(s.dispatcher.labels())
	s.Equal(3, s.scheduler.Pending())

	s.clock.Add(24 * time.Hour)
	s.Equal([]string{"in 24 hours"}, s.dispatcher.labels())
}

func (s *SchedulerTestSuite) TestSlotPassedWhileIneligibleIsNotSentLate() {
	v := s.addBooking(2*time.Hour, "open")
	s.Require().NoError(s.scheduler.Sweep(context.Background()))
	s.Equal(0, s.scheduler.Pending())

	s.clock.Add(100 * time.Minute)
	v.Status = "confirmed"
	s.store.put(v)
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))
	s.Require().NoError(s.scheduler.Sweep(context.Background()))
	s.clock.Add(0)

	s.Empty(s.dispatcher.labels())
	s.Equal(1, s.scheduler.Pending())

	s.clock.Add(5 * time.Minute)
	s.Equal([]string{"in 15 minutes"}, s.dispatcher.labels())
	s.False(s.store.get(v.ID).RemindersSent[string(booking.ReminderSlot2)])
}

func (s *SchedulerTestSuite) TestFailureForOldStartIsNotRetriedAfterReschedule() {
	v := s.addBooking(2*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Sweep(context.Background()))

	s.dispatcher.fail = errs.Mark(errs.New("smtp down"), errs.ErrDependency)
	s.clock.Add(time.Hour)
	s.dispatcher.fail = nil

	v.ScheduledStart = v.ScheduledStart.Add(-10 * time.Minute)
	v.ScheduledEnd = v.ScheduledEnd.Add(-10 * time.Minute)
	s.store.put(v)
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))
	s.clock.Add(0)

	s.Empty(s.dispatcher.labels())
	_, ok := s.scheduler.Scheduled(v.ID, booking.ReminderSlot2)
	s.False(ok)
}

func (s *SchedulerTestSuite) TestDeletedBookingIsForgotten() {
	v := s.addBooking(48*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	s.store.mu.Lock()
	delete(s.store.views, v.ID)
	s.store.mu.Unlock()
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	s.Equal(0, s.scheduler.Pending())
}

func (s *SchedulerTestSuite) TestStopCancelsTimers() {
	v := s.addBooking(48*time.Hour, "confirmed")
	s.Require().NoError(s.scheduler.Reschedule(context.Background(), v.ID))

	s.Require().NoError(s.scheduler.Stop(context.Background()))
	s.Equal(0, s.scheduler.Pending())

	s.clock.Add(48 * time.Hour)
	s.Empty(s.dispatcher.labels())
}

func (s *SchedulerTestSuite) TestDisabledSchedulerDoesNothing() {
	cfg := s.cfg
	cfg.Enabled = false
	sch := s.newScheduler(cfg)
	v := s.addBooking(48*time.Hour, "confirmed")

	s.Require().NoError(sch.Start(context.Background()))
	s.Require().NoError(sch.Reschedule(context.Background(), v.ID))

	s.Equal(0, sch.Pending())
}

func (s *SchedulerTestSuite) TestInvalidOffsetsAreRejected() {
	cfg := s.cfg
	cfg.Time2 = 0
	uow := &memoryUoW{tx: &memoryTx{bookings: &memoryBookings{store: s.store}}}
	_, err := reminder.NewScheduler(cfg, s.store, uow, s.dispatcher, s.events, s.clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().Error(err)
	s.True(errs.Is(err, errs.ErrValidation))
}
