package bootstrap

import (
	"tutorlink/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	IntegrationsModule,
	components.RepositoryModule,
	SchedulerModule,
	components.UseCaseModule,
	components.HandlerModule,
)
