package bootstrap

import (
	"context"
	"log/slog"

	"tutorlink/internal/infra/chat"
	"tutorlink/internal/infra/events"
	"tutorlink/internal/infra/mail"
	"tutorlink/internal/pkg/config"
	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/notify"
	"tutorlink/internal/usecase/reminder"
	"tutorlink/internal/usecase/shared"

	"go.uber.org/fx"
)

// IntegrationsModule provides the outbound adapters: mail, chat and events.
var IntegrationsModule = fx.Module("integrations",
	fx.Provide(
		mail.New,
		NewEventPublisher,
		fx.Annotate(
			chat.NewStreamProvisioner,
			fx.As(new(shared.ChatProvisioner)),
		),
		notify.NewDispatcher,
		func(d *notify.Dispatcher) reminder.Dispatcher { return d },
		func(d *notify.Dispatcher) commands.BookingNotifier { return d },
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.KafkaConfig, logger *slog.Logger) shared.EventPublisher {
	pub := events.New(cfg, logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub
}
