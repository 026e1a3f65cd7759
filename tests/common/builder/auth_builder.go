//go:build unit || e2e

package builder

import (
	reqdto "tutorlink/internal/handler/dto/request"
	"tutorlink/internal/usecase/commands"
)

type AuthBuilder struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

func NewAuthBuilder() *AuthBuilder {
	return &AuthBuilder{
		Email:     "test@example.com",
		Password:  "password123",
		FirstName: "Sam",
		LastName:  "Student",
		Role:      "student",
	}
}

func (a *AuthBuilder) BuildDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{
		Email:    a.Email,
		Password: a.Password,
	}
}

func (a *AuthBuilder) BuildInput() commands.LoginInput {
	return commands.LoginInput{Email: a.Email, Password: a.Password}
}

func (a *AuthBuilder) BuildRegisterDTO() reqdto.RegisterRequest {
	return reqdto.RegisterRequest{
		Email:     a.Email,
		Password:  a.Password,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
	}
}

func (a *AuthBuilder) BuildRegisterInput() commands.RegisterInput {
	return commands.RegisterInput{
		Email:     a.Email,
		Password:  a.Password,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
	}
}
