//go:build unit || e2e

package builder

import (
	"time"

	"tutorlink/internal/domain/user"
	"tutorlink/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
	IsActive     bool
	Now          time.Time
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Role:         "student",
		FirstName:    "Sam",
		LastName:     "Student",
		IsActive:     true,
		Now:          time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}

	name, err := user.NewName(u.FirstName, u.LastName)
	if err != nil {
		return nil, err
	}

	return user.ReconstructUser(user.ReconstructParams{
		ID:           u.ID,
		Email:        email,
		PasswordHash: u.PasswordHash,
		Role:         role,
		Name:         name,
		IsActive:     u.IsActive,
		CreatedAt:    u.Now,
		UpdatedAt:    u.Now,
	}), nil
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
	}
}

func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) WithName(first, last string) *UserBuilder {
	u.FirstName = first
	u.LastName = last
	return u
}

func (u *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	u.PasswordHash = hash
	return u
}

func (u *UserBuilder) AsTutor() *UserBuilder {
	u.Role = "tutor"
	u.FirstName = "Tina"
	u.LastName = "Tutor"
	u.Email = "tutor@example.com"
	return u
}

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}
