package readstore

import (
	"context"

	"tutorlink/internal/infra"
	"tutorlink/internal/infra/db"
	"tutorlink/internal/pkg/pgconv"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var v queries.AuthorizedUserView
	err := r.db.QueryRow(ctx, `
		SELECT id, email, role, first_name, last_name, is_active
		FROM users WHERE id = $1`, id).
		Scan(&v.ID, &v.Email, &v.Role, &v.FirstName, &v.LastName, &v.IsActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return &v, nil
}
