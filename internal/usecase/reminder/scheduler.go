package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/infra"
	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/pkg/config"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Dispatcher delivers one reminder for a booking to its participants.
type Dispatcher interface {
	SendReminder(ctx context.Context, view *queries.BookingView, label string) error
}

type timerKey struct {
	bookingID uuid.UUID
	slot      booking.ReminderSlot
}

type entry struct {
	timer  clock.Timer
	fireAt time.Time
	start  time.Time
}

// Scheduler keeps one in-process timer per unsent reminder slot of every
// eligible booking. A periodic sweep reloads the bookings so that timers
// lost to a restart, or reminders whose dispatch failed, are picked up again.
type Scheduler struct {
	plan       Plan
	statuses   []string
	interval   time.Duration
	enabled    bool
	store      queries.BookingReadStore
	uow        shared.UnitOfWork
	dispatcher Dispatcher
	events     shared.EventPublisher
	clock      clock.Clock
	logger     *slog.Logger

	mu       sync.Mutex
	timers   map[timerKey]*entry
	inflight map[timerKey]struct{}
	// failed holds the start time a dispatch attempt failed for.
	failed  map[timerKey]time.Time
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	cron   *cron.Cron
}

func NewScheduler(
	cfg config.ReminderConfig,
	store queries.BookingReadStore,
	uow shared.UnitOfWork,
	dispatcher Dispatcher,
	events shared.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) (*Scheduler, error) {
	plan, err := NewPlan(cfg.OffsetHours())
	if err != nil {
		return nil, err
	}
	statuses, err := booking.ParseStatuses(cfg.Statuses)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		plan:       plan,
		statuses:   names,
		interval:   cfg.SweepInterval,
		enabled:    cfg.Enabled,
		store:      store,
		uow:        uow,
		dispatcher: dispatcher,
		events:     events,
		clock:      clk,
		logger:     logger.With("component", "reminder_scheduler"),
		timers:     make(map[timerKey]*entry),
		inflight:   make(map[timerKey]struct{}),
		failed:     make(map[timerKey]time.Time),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start loads every eligible booking and begins the periodic sweep.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.enabled {
		s.logger.Info("reminder scheduler disabled")
		return nil
	}
	if err := s.Sweep(ctx); err != nil {
		s.logger.Error("initial reminder sweep failed", "error", err)
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn))
	s.cron = cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if err := s.Sweep(s.ctx); err != nil {
			s.logger.Error("reminder sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("register reminder sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "sweep_interval", s.interval.String())
	return nil
}

// Stop halts the sweep and every pending timer. In-flight dispatches see a
// cancelled context.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron != nil {
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
		}
	}
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for key, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, key)
	}
	return nil
}

// Sweep reconciles the timer registry with the eligible bookings whose start
// lies within reach of the largest offset.
func (s *Scheduler) Sweep(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	now := s.clock.Now()
	to := now.Add(s.horizon())
	views, err := s.store.FindAll(ctx, queries.BookingFilter{
		Statuses: s.statuses,
		From:     &now,
		To:       &to,
	})
	if err != nil {
		return err
	}
	for _, v := range views {
		s.schedule(v)
	}
	s.logger.Debug("reminder sweep finished", "bookings", len(views), "timers", s.Pending())
	return nil
}

// Reschedule recomputes the timers of one booking after it changed.
func (s *Scheduler) Reschedule(ctx context.Context, bookingID uuid.UUID) error {
	if !s.enabled {
		return nil
	}
	view, err := s.store.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			s.Cancel(bookingID)
			return nil
		}
		return err
	}
	s.schedule(view)
	return nil
}

// Cancel drops every pending timer of a booking.
func (s *Scheduler) Cancel(bookingID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.plan.Slots() {
		key := timerKey{bookingID: bookingID, slot: slot.Name}
		s.stopLocked(key)
		delete(s.failed, key)
	}
}

// Pending reports the number of registered timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Scheduled returns the fire time of a registered timer.
func (s *Scheduler) Scheduled(bookingID uuid.UUID, slot booking.ReminderSlot) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timers[timerKey{bookingID: bookingID, slot: slot}]
	if !ok {
		return time.Time{}, false
	}
	return e.fireAt, true
}

func (s *Scheduler) horizon() time.Duration {
	var longest time.Duration
	for _, slot := range s.plan.Slots() {
		longest = max(longest, slot.Offset)
	}
	return longest + 2*s.interval
}

func (s *Scheduler) eligible(v *queries.BookingView, now time.Time) bool {
	return slices.Contains(s.statuses, v.Status) && v.ScheduledStart.After(now)
}

func (s *Scheduler) schedule(v *queries.BookingView) {
	now := s.clock.Now()
	if !s.eligible(v, now) {
		s.Cancel(v.ID)
		return
	}
	sent := booking.ReminderFlagsFromMap(v.RemindersSent)
	due := make(map[booking.ReminderSlot]Slot)
	for _, slot := range s.plan.Upcoming(v.ScheduledStart, sent, now) {
		due[slot.Name] = slot
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	// An overdue slot goes out only when an earlier attempt for the same
	// start time failed. Slots that passed while the booking was not
	// eligible stay skipped.
	if slot, ok := s.plan.Overdue(v.ScheduledStart, sent, v.ScheduleSetAt, now); ok {
		key := timerKey{bookingID: v.ID, slot: slot.Name}
		if start, failed := s.failed[key]; failed && start.Equal(v.ScheduledStart) {
			due[slot.Name] = slot
		}
	}
	for _, slot := range s.plan.Slots() {
		key := timerKey{bookingID: v.ID, slot: slot.Name}
		if _, ok := due[slot.Name]; !ok {
			s.stopLocked(key)
			delete(s.failed, key)
			continue
		}
		fireAt := slot.FireAt(v.ScheduledStart)
		if cur, ok := s.timers[key]; ok && cur.fireAt.Equal(fireAt) && cur.start.Equal(v.ScheduledStart) {
			continue
		}
		s.stopLocked(key)
		e := &entry{fireAt: fireAt, start: v.ScheduledStart}
		e.timer = s.clock.AfterFunc(max(fireAt.Sub(now), 0), func() { s.fire(key, e) })
		s.timers[key] = e
	}
}

func (s *Scheduler) stopLocked(key timerKey) {
	if e, ok := s.timers[key]; ok {
		e.timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Scheduler) fire(key timerKey, e *entry) {
	s.mu.Lock()
	if cur, ok := s.timers[key]; !ok || cur != e {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return
	}
	s.inflight[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	err := s.deliver(s.ctx, key, e.start)

	s.mu.Lock()
	if err != nil {
		s.failed[key] = e.start
	} else {
		delete(s.failed, key)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("reminder not delivered; will retry on next sweep",
			"booking_id", key.bookingID, "slot", key.slot, "error", err)
	}
}

func (s *Scheduler) deliver(ctx context.Context, key timerKey, expectedStart time.Time) error {
	view, err := s.store.FindByID(ctx, key.bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			s.Cancel(key.bookingID)
			return nil
		}
		return err
	}
	now := s.clock.Now()
	if !s.eligible(view, now) {
		s.Cancel(key.bookingID)
		return nil
	}
	if !view.ScheduledStart.Equal(expectedStart) {
		s.schedule(view)
		return nil
	}
	if booking.ReminderFlagsFromMap(view.RemindersSent).Sent(key.slot) {
		return nil
	}
	slot, ok := s.plan.Slot(key.slot)
	if !ok {
		return nil
	}

	if err := s.dispatcher.SendReminder(ctx, view, slot.Label()); err != nil {
		return err
	}

	var marked bool
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		marked, err = tx.Bookings().MarkReminderSent(ctx, key.bookingID, key.slot, expectedStart)
		return err
	})
	if err != nil {
		return err
	}
	if !marked {
		s.logger.Info("reminder flag not updated; booking changed during dispatch",
			"booking_id", key.bookingID, "slot", key.slot)
		return nil
	}
	s.logger.Info("reminder sent", "booking_id", key.bookingID, "slot", key.slot)

	if s.events != nil {
		evt := shared.BookingEvent{
			Type:       shared.EventReminderSent,
			BookingID:  view.ID,
			TutorID:    view.TutorID,
			StudentID:  view.StudentID,
			Status:     view.Status,
			OccurredAt: now,
		}
		if err := s.events.Publish(ctx, evt); err != nil {
			s.logger.Warn("failed to publish reminder event", "booking_id", view.ID, "error", err)
		}
	}
	return nil
}
