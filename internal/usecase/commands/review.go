package commands

import (
	"context"

	domreview "tutorlink/internal/domain/review"
	"tutorlink/internal/infra"
	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReviewInput struct {
	BookingID uuid.UUID
	Rating    int
	Comment   string
}

type ReviewCommands interface {
	CreateReview(ctx context.Context, actor shared.Actor, in CreateReviewInput) (uuid.UUID, error)
}

type reviewCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewReviewCommands(uow shared.UnitOfWork, clk clock.Clock) ReviewCommands {
	return &reviewCommandsImpl{uow: uow, clock: clk}
}

func (uc *reviewCommandsImpl) CreateReview(ctx context.Context, actor shared.Actor, in CreateReviewInput) (uuid.UUID, error) {
	var created uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByID(ctx, in.BookingID)
		if err != nil {
			return err
		}
		rev, err := domreview.NewReview(b, actor.ID, in.Rating, in.Comment, uc.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Reviews().Create(ctx, rev); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return domreview.ErrReviewAlreadyExists
			}
			return err
		}
		created = rev.ID()
		return nil
	})
	if err != nil {
		return uuid.Nil, mapRepoErr(err)
	}
	return created, nil
}
