package components

import (
	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/pkg/config"
	"tutorlink/internal/usecase"
	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewBookingCommands,
		commands.NewReviewCommands,
		func(chat shared.ChatProvisioner, cfg config.ChatConfig) commands.ChatCommands {
			return commands.NewChatCommands(chat, cfg.APIKey)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewBookingQueries,
		queries.NewReviewQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
