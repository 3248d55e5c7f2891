package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"crmbridge/internal/auth"
	apperrors "crmbridge/internal/errors"
	"crmbridge/internal/model"
	"crmbridge/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries the fields of a new user.
type RegisterInput struct {
	Username string `json:"username" validate:"notblank,max=80"`
	Email    string `json:"email" validate:"notblank,max=120"`
	Password string `json:"password" validate:"required"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, user *model.User, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		now:        time.Now,
	}
}

// Register creates a new user with hashed password. Username is checked
// before email.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := Validate(&in); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		CreatedAt:    stamp(s.now),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration.
			if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
				return nil, err
			}
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *authService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return apperrors.ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// Login verifies credentials and issues a token.
func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, nil, apperrors.ErrInvalidCredentials
		}
		return "", time.Time{}, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", time.Time{}, nil, apperrors.ErrInvalidCredentials
	}

	token, claims, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("issue token: %w", err)
	}

	return token, claims.ExpiresAt.Time, user, nil
}

// Logout revokes the token until it would have expired.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return apperrors.ErrTokenMalformed
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.tokenStore.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
