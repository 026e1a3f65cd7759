package bootstrap

import (
	"context"

	"tutorlink/internal/usecase/reminder"
	"tutorlink/internal/usecase/shared"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		reminder.NewScheduler,
		func(s *reminder.Scheduler) shared.ReminderScheduler { return s },
	),
	fx.Invoke(startScheduler),
)

// startScheduler runs after the DB is up; OnStop cancels every timer.
func startScheduler(lc fx.Lifecycle, s *reminder.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}
