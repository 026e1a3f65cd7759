package mail

import (
	"context"
	"log/slog"
	"net/http"

	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/usecase/shared"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendPath = "/v3/mail/send"

var ErrDeliveryFailed = errs.Kinded(errs.ErrDependency, "email delivery failed")

// SendGridMailer delivers through the SendGrid v3 mail API.
type SendGridMailer struct {
	cfg    config.MailConfig
	logger *slog.Logger
}

func NewSendGridMailer(cfg config.MailConfig, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{cfg: cfg, logger: logger}
}

func (m *SendGridMailer) Send(ctx context.Context, msg shared.Email) error {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	from := sgmail.NewEmail(m.cfg.FromName, m.cfg.FromAddress)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if len(msg.Categories) > 0 {
		message.AddCategories(msg.Categories...)
	}

	request := sendgrid.GetRequest(m.cfg.APIKey, sendPath, m.cfg.Host)
	request.Method = http.MethodPost
	request.Body = sgmail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "sendgrid request"), ErrDeliveryFailed)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return errs.Mark(errs.Newf("sendgrid responded %d: %s", resp.StatusCode, resp.Body), ErrDeliveryFailed)
	}

	m.logger.Debug("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// LogMailer stands in when outbound mail is disabled.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg shared.Email) error {
	m.logger.Info("email suppressed (mail disabled)", "to", msg.To, "subject", msg.Subject, "categories", msg.Categories)
	return nil
}

func New(cfg config.MailConfig, logger *slog.Logger) shared.Mailer {
	if !cfg.Enabled {
		return NewLogMailer(logger)
	}
	return NewSendGridMailer(cfg, logger)
}
