package components

import (
	"tutorlink/internal/handler"
	"tutorlink/internal/handler/api"
	"tutorlink/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewBookingHandler,
		api.NewReviewHandler,
		api.NewChatHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
