//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"tutorlink/internal/domain/user"
	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/pkg/jwt"
	"tutorlink/internal/pkg/password"
	"tutorlink/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthCommandsTestSuite struct {
	suite.Suite
	db    *memoryDB
	jwt   *jwt.Service
	clock *clock.MockClock
	uc    commands.AuthCommands
}

func TestAuthCommandsSuite(t *testing.T) {
	suite.Run(t, new(AuthCommandsTestSuite))
}

func (s *AuthCommandsTestSuite) SetupTest() {
	s.db = newMemoryDB()
	s.jwt = jwt.NewService("unit-test-secret", 15*time.Minute, 168*time.Hour)
	s.clock = clock.NewMockClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	s.uc = commands.NewAuthCommands(&memoryUoW{db: s.db}, s.jwt, s.clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *AuthCommandsTestSuite) addUser(email string, role user.Role, active bool) *user.User {
	hash, err := password.Hash("correct-horse")
	s.Require().NoError(err)
	e, err := user.NewEmail(email)
	s.Require().NoError(err)
	name, err := user.NewName("Test", "User")
	s.Require().NoError(err)
	u := user.ReconstructUser(user.ReconstructParams{
		ID:           uuid.New(),
		Email:        e,
		PasswordHash: hash,
		Role:         role,
		Name:         name,
		IsActive:     active,
	})
	s.db.addUser(u)
	return u
}

func (s *AuthCommandsTestSuite) TestRegister() {
	ctx := context.Background()

	s.Run("student account is created and signed in", func() {
		res, err := s.uc.Register(ctx, commands.RegisterInput{
			Email:     "New.Student@Example.com",
			Password:  "long-enough",
			FirstName: "Nia",
			LastName:  "Student",
			Role:      "student",
		})
		s.Require().NoError(err)
		s.Equal(user.RoleStudent, res.Role)
		s.NotEmpty(res.TokenPair.AccessToken)

		stored := s.db.users[res.UserID]
		s.Require().NotNil(stored)
		s.Equal("new.student@example.com", stored.Email().Value())
		s.NoError(password.Verify(stored.PasswordHash(), "long-enough"))
	})

	s.Run("email already registered", func() {
		s.addUser("taken@example.com", user.RoleTutor, true)
		_, err := s.uc.Register(ctx, commands.RegisterInput{
			Email: "taken@example.com", Password: "long-enough", FirstName: "A", LastName: "B", Role: "tutor",
		})
		s.ErrorIs(err, commands.ErrEmailTaken)
	})

	s.Run("admin is not self-assignable", func() {
		_, err := s.uc.Register(ctx, commands.RegisterInput{
			Email: "root@example.com", Password: "long-enough", FirstName: "A", LastName: "B", Role: "admin",
		})
		s.ErrorIs(err, commands.ErrRoleNotAllowed)
	})

	s.Run("short password", func() {
		_, err := s.uc.Register(ctx, commands.RegisterInput{
			Email: "short@example.com", Password: "short", FirstName: "A", LastName: "B", Role: "student",
		})
		s.ErrorIs(err, user.ErrPasswordTooWeak)
	})
}

func (s *AuthCommandsTestSuite) TestLogin() {
	ctx := context.Background()
	active := s.addUser("tutor@example.com", user.RoleTutor, true)
	s.addUser("gone@example.com", user.RoleStudent, false)

	s.Run("valid credentials record the login", func() {
		res, err := s.uc.Login(ctx, commands.LoginInput{Email: "TUTOR@example.com", Password: "correct-horse"})
		s.Require().NoError(err)
		s.Equal(active.ID(), res.UserID)

		claims, err := s.jwt.ValidateToken(res.TokenPair.AccessToken)
		s.Require().NoError(err)
		s.Equal(active.ID(), claims.UserID)
		s.Equal(jwt.TokenTypeAccess, claims.TokenType)

		s.Require().NotNil(active.LastLogin())
		s.True(s.clock.Now().Equal(*active.LastLogin()))
	})

	s.Run("unknown email and wrong password look the same", func() {
		_, err := s.uc.Login(ctx, commands.LoginInput{Email: "nobody@example.com", Password: "correct-horse"})
		s.ErrorIs(err, commands.ErrInvalidCredentials)

		_, err = s.uc.Login(ctx, commands.LoginInput{Email: "tutor@example.com", Password: "wrong-horse"})
		s.ErrorIs(err, commands.ErrInvalidCredentials)
	})

	s.Run("disabled account", func() {
		_, err := s.uc.Login(ctx, commands.LoginInput{Email: "gone@example.com", Password: "correct-horse"})
		s.ErrorIs(err, commands.ErrAccountDisabled)
	})
}

func (s *AuthCommandsTestSuite) TestRefreshToken() {
	ctx := context.Background()
	u := s.addUser("student@example.com", user.RoleStudent, true)

	s.Run("refresh token yields a new pair", func() {
		refresh, err := s.jwt.GenerateRefreshToken(u.ID(), u.Role())
		s.Require().NoError(err)

		pair, err := s.uc.RefreshToken(ctx, refresh)
		s.Require().NoError(err)
		s.NotEmpty(pair.AccessToken)
		s.NotEqual(refresh, pair.RefreshToken)
	})

	s.Run("access token is refused", func() {
		access, err := s.jwt.GenerateAccessToken(u.ID(), u.Role())
		s.Require().NoError(err)

		_, err = s.uc.RefreshToken(ctx, access)
		s.ErrorIs(err, commands.ErrInvalidToken)
	})

	s.Run("deleted user", func() {
		refresh, err := s.jwt.GenerateRefreshToken(uuid.New(), user.RoleStudent)
		s.Require().NoError(err)

		_, err = s.uc.RefreshToken(ctx, refresh)
		s.ErrorIs(err, commands.ErrInvalidToken)
	})

	s.Run("garbage", func() {
		_, err := s.uc.RefreshToken(ctx, "not-a-jwt")
		s.ErrorIs(err, commands.ErrInvalidToken)
	})
}
