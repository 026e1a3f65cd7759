//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"tutorlink/internal/domain/booking"
	"tutorlink/internal/domain/review"
	"tutorlink/internal/domain/user"
	"tutorlink/internal/infra"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

// memoryDB is a single-process stand-in for the Postgres unit of work.
// Bookings are copied on every read and write so that a command only changes
// stored state through the repository.
type memoryDB struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking.Booking
	users    map[uuid.UUID]*user.User
	reviews  map[uuid.UUID]*review.Review
	teaches  map[[2]uuid.UUID]bool
	// onClaim runs before the conditional claim write, outside the lock.
	onClaim func()
	// writeErr is returned by booking updates and deletes when set.
	writeErr error
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		bookings: map[uuid.UUID]*booking.Booking{},
		users:    map[uuid.UUID]*user.User{},
		reviews:  map[uuid.UUID]*review.Review{},
		teaches:  map[[2]uuid.UUID]bool{},
	}
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(booking.ReconstructParams{
		ID:              b.ID(),
		TutorID:         b.TutorID(),
		StudentID:       b.StudentID(),
		SubjectID:       b.SubjectID(),
		TimeSlot:        b.TimeSlot(),
		Status:          b.Status(),
		TutorNotes:      b.TutorNotes(),
		StudentNotes:    b.StudentNotes(),
		Cancellation:    b.Cancellation(),
		RejectionReason: b.RejectionReason(),
		Recurrence:      b.Recurrence(),
		ParentID:        b.ParentID(),
		Reminders:       b.Reminders(),
		ScheduleSetAt:   b.ScheduleSetAt(),
		ActualStart:     b.ActualStart(),
		ActualEnd:       b.ActualEnd(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	})
}

func (m *memoryDB) put(b *booking.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID()] = cloneBooking(b)
}

func (m *memoryDB) booking(id uuid.UUID) *booking.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil
	}
	return cloneBooking(b)
}

func (m *memoryDB) addUser(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID()] = u
}

func (m *memoryDB) teach(tutorID, subjectID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teaches[[2]uuid.UUID{tutorID, subjectID}] = true
}

var errMemoryNotFound = infra.WrapRepoErr("not found", nil, infra.KindNotFound)

type memoryUoW struct {
	db *memoryDB
}

func (u *memoryUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &memoryTx{db: u.db})
}

func (u *memoryUoW) CommandReads() shared.CommandReads { return &memoryReads{db: u.db} }

type memoryTx struct {
	db *memoryDB
}

func (t *memoryTx) Bookings() shared.BookingRepository { return &memoryBookings{db: t.db} }
func (t *memoryTx) Reviews() shared.ReviewRepository   { return &memoryReviews{db: t.db} }
func (t *memoryTx) Users() shared.UserRepository       { return &memoryUsers{db: t.db} }
func (t *memoryTx) Reads() shared.CommandReads         { return &memoryReads{db: t.db} }

type memoryReads struct {
	db *memoryDB
}

func (r *memoryReads) BookingByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	if b := r.db.booking(id); b != nil {
		return b, nil
	}
	return nil, errMemoryNotFound
}

func (r *memoryReads) UserByEmail(_ context.Context, email user.Email) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, errMemoryNotFound
}

func (r *memoryReads) UserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u, ok := r.db.users[id]; ok {
		return u, nil
	}
	return nil, errMemoryNotFound
}

func (r *memoryReads) TutorTeachesSubject(_ context.Context, tutorID, subjectID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.teaches[[2]uuid.UUID{tutorID, subjectID}], nil
}

type memoryBookings struct {
	db *memoryDB
}

func (r *memoryBookings) Create(_ context.Context, b *booking.Booking) error {
	r.db.put(b)
	return nil
}

func (r *memoryBookings) CreateMany(ctx context.Context, bs []*booking.Booking) error {
	for _, b := range bs {
		if err := r.Create(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryBookings) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	if b := r.db.booking(id); b != nil {
		return b, nil
	}
	return nil, errMemoryNotFound
}

func (r *memoryBookings) LockByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryBookings) Update(_ context.Context, b *booking.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.writeErr != nil {
		return r.db.writeErr
	}
	if _, ok := r.db.bookings[b.ID()]; !ok {
		return errMemoryNotFound
	}
	r.db.bookings[b.ID()] = cloneBooking(b)
	return nil
}

// ClaimOpen only writes while the stored row is still open.
func (r *memoryBookings) ClaimOpen(_ context.Context, b *booking.Booking) error {
	if r.db.onClaim != nil {
		r.db.onClaim()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.bookings[b.ID()]
	if !ok || stored.Status() != booking.StatusOpen {
		return infra.WrapRepoErr("booking is no longer open", nil, infra.KindConflict)
	}
	r.db.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *memoryBookings) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.writeErr != nil {
		return r.db.writeErr
	}
	delete(r.db.bookings, id)
	return nil
}

func (r *memoryBookings) MarkReminderSent(_ context.Context, id uuid.UUID, slot booking.ReminderSlot, expectedStart time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[id]
	if !ok || !b.TimeSlot().Start().Equal(expectedStart) || b.Reminders().Sent(slot) {
		return false, nil
	}
	b.MarkReminderSent(slot)
	return true, nil
}

type memoryReviews struct {
	db *memoryDB
}

func (r *memoryReviews) Create(_ context.Context, rev *review.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.reviews {
		if existing.BookingID() == rev.BookingID() {
			return infra.WrapRepoErr("review exists", nil, infra.KindDuplicateKey)
		}
	}
	r.db.reviews[rev.ID()] = rev
	return nil
}

type memoryUsers struct {
	db *memoryDB
}

func (r *memoryUsers) Create(_ context.Context, u *user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email() == u.Email() {
			return infra.WrapRepoErr("email exists", nil, infra.KindDuplicateKey)
		}
	}
	r.db.users[u.ID()] = u
	return nil
}

func (r *memoryUsers) UpdateLastLogin(_ context.Context, userID uuid.UUID, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return errMemoryNotFound
	}
	u.RecordLogin(at)
	return nil
}

// memoryViews renders stored bookings as read models for the post-commit effects.
type memoryViews struct {
	db *memoryDB
}

func (v *memoryViews) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	b := v.db.booking(id)
	if b == nil {
		return nil, errMemoryNotFound
	}
	return &queries.BookingView{
		ID:             b.ID(),
		TutorID:        b.TutorID(),
		StudentID:      b.StudentID(),
		SubjectID:      b.SubjectID(),
		ScheduledStart: b.TimeSlot().Start(),
		ScheduledEnd:   b.TimeSlot().End(),
		Status:         b.Status().String(),
		RemindersSent:  b.Reminders().ToMap(),
	}, nil
}

func (v *memoryViews) FindAll(context.Context, queries.BookingFilter) ([]*queries.BookingView, error) {
	return nil, nil
}

type recordedEffects struct {
	mu          sync.Mutex
	rescheduled []uuid.UUID
	cancelled   []uuid.UUID
	events      []shared.BookingEventType
	claimed     []uuid.UUID
	cancelMails []uuid.UUID
	channels    []uuid.UUID
}

func (r *recordedEffects) Reschedule(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rescheduled = append(r.rescheduled, id)
	return nil
}

func (r *recordedEffects) Cancel(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, id)
}

func (r *recordedEffects) Publish(_ context.Context, evt shared.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt.Type)
	return nil
}

func (r *recordedEffects) BookingClaimed(_ context.Context, v *queries.BookingView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimed = append(r.claimed, v.ID)
	return nil
}

func (r *recordedEffects) BookingCancelled(_ context.Context, v *queries.BookingView, _ uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelMails = append(r.cancelMails, v.ID)
	return nil
}

func (r *recordedEffects) UserToken(userID uuid.UUID) (string, time.Time, error) {
	return "token-" + userID.String(), time.Time{}, nil
}

func (r *recordedEffects) EnsureChannel(_ context.Context, bookingID uuid.UUID, _ []shared.ChatMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append(r.channels, bookingID)
	return nil
}

func (r *recordedEffects) eventTypes() []shared.BookingEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.BookingEventType(nil), r.events...)
}
