package repository

import (
	"context"
	"time"

	"tutorlink/internal/domain/user"
	"tutorlink/internal/infra"
	"tutorlink/internal/infra/db"
	"tutorlink/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, password_hash, role, first_name, last_name, is_active, last_login, created_at, updated_at`

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(dbtx db.DBTX) *UserRepository {
	return &UserRepository{db: dbtx}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID(), u.Email().Value(), u.PasswordHash(), u.Role().String(),
		u.Name().First(), u.Name().Last(), u.IsActive(),
		pgconv.TimePtrToPgtype(u.LastLogin()), u.CreatedAt(), u.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email user.Email) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email.Value()))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return infra.WrapRepoErr("failed to update user last login", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		id                   uuid.UUID
		email, hash, role    string
		first, last          string
		isActive             bool
		lastLogin            pgtype.Timestamptz
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &email, &hash, &role, &first, &last, &isActive, &lastLogin, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	em, err := user.NewEmail(email)
	if err != nil {
		return nil, err
	}
	rl, err := user.NewRole(role)
	if err != nil {
		return nil, err
	}
	name, err := user.NewName(first, last)
	if err != nil {
		return nil, err
	}
	return user.ReconstructUser(user.ReconstructParams{
		ID:           id,
		Email:        em,
		PasswordHash: hash,
		Role:         rl,
		Name:         name,
		LastLogin:    pgconv.TimePtrFromPgtype(lastLogin),
		IsActive:     isActive,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}), nil
}
