package components

import (
	"tutorlink/internal/infra/readstore"
	"tutorlink/internal/infra/uow"
	"tutorlink/internal/usecase/queries"

	"go.uber.org/fx"
)

// RepositoryModule provides the write-side unit of work and the read stores.
// Write repositories are bound per transaction inside the unit of work.
var RepositoryModule = fx.Module("repository",
	fx.Provide(
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewReviewReadStore,
			fx.As(new(queries.ReviewReadStore)),
		),
	),
)
