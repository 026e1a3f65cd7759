package bootstrap

import (
	"tutorlink/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
	SubConfigs,
)

// SubConfigs splits a provided config.Config into the sections components depend on.
var SubConfigs = fx.Provide(
	func(cfg config.Config) config.AppConfig { return cfg.App },
	func(cfg config.Config) config.BookingConfig { return cfg.Booking },
	func(cfg config.Config) config.ReminderConfig { return cfg.Reminder },
	func(cfg config.Config) config.MailConfig { return cfg.Mail },
	func(cfg config.Config) config.ChatConfig { return cfg.Chat },
	func(cfg config.Config) config.KafkaConfig { return cfg.Kafka },
)
