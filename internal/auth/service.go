package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/internal/users"
	pkgauth "github.com/brightpath/academy-backend/pkg/auth"
	"github.com/brightpath/academy-backend/pkg/config"
	"github.com/brightpath/academy-backend/pkg/db"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// Service carries registration and login.
type Service interface {
	// Register creates a fresh account: zero XP, level one, role nope,
	// empty inventory and history.
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the issued session.
type AuthResult struct {
	User  *users.UserDTO `json:"user"`
	Token string         `json:"token"`
}

// ServiceParams configure the auth service.
type ServiceParams struct {
	Logger   *logger.Logger
	UserRepo users.Repository
	Hasher   *Hasher
	JWT      config.JWTConfig
	Now      func() time.Time
}

type service struct {
	logg     *logger.Logger
	userRepo users.Repository
	hasher   *Hasher
	jwt      config.JWTConfig
	now      func() time.Time
}

// NewService wires auth dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "password hasher required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt configuration required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:     params.Logger,
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		jwt:      params.JWT,
		now:      now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email, name, and password required")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         enums.UserRoleNope,
		XP:           0,
		Level:        1,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist user")
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(logCtx, "user registered")
	return &AuthResult{User: users.FromModel(user), Token: token}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if user.IsBanned {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is banned")
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(logCtx, "user logged in")
	return &AuthResult{User: users.FromModel(user), Token: token}, nil
}
