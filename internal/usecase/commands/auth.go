package commands

import (
	"context"
	"log/slog"

	"tutorlink/internal/domain/user"
	"tutorlink/internal/infra"
	"tutorlink/internal/pkg/clock"
	"tutorlink/internal/pkg/errs"
	"tutorlink/internal/pkg/jwt"
	"tutorlink/internal/pkg/password"
	"tutorlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errs.Kinded(errs.ErrUnauthenticated, "invalid credentials")
	ErrInvalidToken       = errs.Kinded(errs.ErrUnauthenticated, "invalid or expired token")
	ErrAccountDisabled    = errs.Kinded(errs.ErrForbidden, "account is disabled")
	ErrRoleNotAllowed     = errs.Kinded(errs.ErrForbidden, "role cannot be chosen at registration")
	ErrEmailTaken         = errs.Kinded(errs.ErrConflict, "email is already registered")
)

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	UserID    uuid.UUID
	Role      user.Role
	TokenPair *TokenPair
}

type AuthCommands interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
	clock      clock.Clock
	logger     *slog.Logger
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service, clk clock.Clock, logger *slog.Logger) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		jwtService: jwtService,
		clock:      clk,
		logger:     logger,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email, err := user.NewEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := a.uow.CommandReads().UserByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// same answer as a wrong password so accounts cannot be enumerated
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.Verify(u.PasswordHash(), in.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, ErrAccountDisabled
	}

	pair, err := a.issue(u.ID(), u.Role())
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, u.ID(), now)
	})
	if err != nil {
		// login already succeeded
		a.logger.Warn("failed to update last login", "user_id", u.ID(), "error", err)
	}

	return &LoginResult{UserID: u.ID(), Role: u.Role(), TokenPair: pair}, nil
}

func (a *authCommandsImpl) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	email, err := user.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	pw, err := user.NewPassword(in.Password)
	if err != nil {
		return nil, err
	}
	name, err := user.NewName(in.FirstName, in.LastName)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !role.SelfAssignable() {
		return nil, ErrRoleNotAllowed
	}

	hashed, err := password.Hash(pw.Value())
	if err != nil {
		return nil, errs.Wrap(err, "hash password")
	}
	u := user.NewUser(email, hashed, role, name, a.clock.Now())

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().Create(ctx, u)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	a.logger.Info("user registered", "user_id", u.ID(), "role", role.String())

	pair, err := a.issue(u.ID(), u.Role())
	if err != nil {
		return nil, err
	}
	return &LoginResult{UserID: u.ID(), Role: u.Role(), TokenPair: pair}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidToken)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	// user must still exist and be active
	u, err := a.uow.CommandReads().UserByID(ctx, claims.UserID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, ErrAccountDisabled
	}
	return a.issue(u.ID(), u.Role())
}

func (a *authCommandsImpl) issue(userID uuid.UUID, role user.Role) (*TokenPair, error) {
	access, err := a.jwtService.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, errs.Wrap(err, "generate access token")
	}
	refresh, err := a.jwtService.GenerateRefreshToken(userID, role)
	if err != nil {
		return nil, errs.Wrap(err, "generate refresh token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
