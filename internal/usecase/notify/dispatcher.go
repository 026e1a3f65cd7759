package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/pkg/ptr"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	CategoryReminder  = "session-reminder"
	CategoryClaimed   = "booking-claimed"
	CategoryCancelled = "booking-cancelled"

	timeLayout = "Mon, Jan 2 2006 15:04 MST"
)

var ErrReminderDelivery = errs.Kinded(errs.ErrDependency, "reminder could not be delivered")

type recipient struct {
	role  string
	name  string
	email string
}

// Dispatcher composes booking mail and hands it to the configured mailer.
type Dispatcher struct {
	mailer  shared.Mailer
	baseURL string
	loc     *time.Location
	logger  *slog.Logger
}

func NewDispatcher(mailer shared.Mailer, cfg config.AppConfig, logger *slog.Logger) *Dispatcher {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Warn("unknown app timezone, falling back to UTC", "timezone", cfg.TimeZone)
		loc = time.UTC
	}
	return &Dispatcher{
		mailer:  mailer,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		loc:     loc,
		logger:  logger,
	}
}

// CallLink is the per-role deep link into the session.
func (d *Dispatcher) CallLink(role string, bookingID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/call/%s", d.baseURL, role, bookingID)
}

// SendReminder mails the tutor and the student. Every recipient is tried;
// any failure is reported.
func (d *Dispatcher) SendReminder(ctx context.Context, v *queries.BookingView, label string) error {
	tutor, student, ok := participants(v)
	if !ok {
		return errs.Wrapf(ErrReminderDelivery, "booking %s has no student", v.ID)
	}

	var failures []error
	for _, pair := range [][2]recipient{{tutor, student}, {student, tutor}} {
		to, other := pair[0], pair[1]
		msg, err := d.compose(reminderTemplate, to, CategoryReminder,
			fmt.Sprintf("Reminder: your session starts %s", label),
			messageData{
				RecipientName:   to.name,
				CounterpartName: other.name,
				CounterpartRole: other.role,
				Label:           label,
				When:            d.formatTime(v.ScheduledStart),
				Subject:         ptr.Deref(v.SubjectName),
				Notes:           notesFor(to.role, v),
				Link:            d.CallLink(to.role, v.ID),
			})
		if err == nil {
			err = d.mailer.Send(ctx, msg)
		}
		if err != nil {
			failures = append(failures, errs.Wrapf(err, "send reminder to %s", to.role))
		}
	}
	if len(failures) > 0 {
		return errs.Mark(errs.Join(failures...), ErrReminderDelivery)
	}
	return nil
}

// BookingClaimed tells the tutor a student took the slot.
func (d *Dispatcher) BookingClaimed(ctx context.Context, v *queries.BookingView) error {
	tutor, student, ok := participants(v)
	if !ok {
		return nil
	}
	msg, err := d.compose(claimedTemplate, tutor, CategoryClaimed,
		fmt.Sprintf("New booking from %s", student.name),
		messageData{
			RecipientName:   tutor.name,
			CounterpartName: student.name,
			When:            d.formatTime(v.ScheduledStart),
			Notes:           ptr.Deref(v.StudentNotes),
			Link:            d.CallLink(tutor.role, v.ID),
		})
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, msg)
}

// BookingCancelled tells the participant who did not cancel.
func (d *Dispatcher) BookingCancelled(ctx context.Context, v *queries.BookingView, actorID uuid.UUID) error {
	tutor, student, ok := participants(v)
	if !ok {
		return nil
	}
	to, other := student, tutor
	if v.StudentID != nil && *v.StudentID == actorID {
		to, other = tutor, student
	}
	msg, err := d.compose(cancelledTemplate, to, CategoryCancelled, "Session cancelled",
		messageData{
			RecipientName:   to.name,
			CounterpartName: other.name,
			When:            d.formatTime(v.ScheduledStart),
			Reason:          ptr.Deref(v.CancellationReason),
		})
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, msg)
}

func (d *Dispatcher) compose(t mailTemplate, to recipient, category, subject string, data messageData) (shared.Email, error) {
	var html, text bytes.Buffer
	if err := t.html.Execute(&html, data); err != nil {
		return shared.Email{}, errs.Wrap(err, "render html body")
	}
	if err := t.text.Execute(&text, data); err != nil {
		return shared.Email{}, errs.Wrap(err, "render text body")
	}
	return shared.Email{
		To:         to.email,
		ToName:     to.name,
		Subject:    subject,
		HTML:       html.String(),
		Text:       text.String(),
		Categories: []string{category},
	}, nil
}

func (d *Dispatcher) formatTime(t time.Time) string {
	return t.In(d.loc).Format(timeLayout)
}

func participants(v *queries.BookingView) (tutor, student recipient, ok bool) {
	tutor = recipient{role: shared.RoleTutor, name: v.TutorName, email: v.TutorEmail}
	if v.StudentID == nil || v.StudentEmail == nil {
		return tutor, recipient{}, false
	}
	student = recipient{role: shared.RoleStudent, name: ptr.Deref(v.StudentName), email: *v.StudentEmail}
	return tutor, student, true
}

func notesFor(role string, v *queries.BookingView) string {
	if role == shared.RoleTutor {
		return ptr.Deref(v.StudentNotes)
	}
	return ptr.Deref(v.TutorNotes)
}
