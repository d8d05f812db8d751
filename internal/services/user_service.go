package services

import (
	"context"
	"errors"
	"strings"

	"github.com/bkaratas/account-service/internal/auth"
	"github.com/bkaratas/account-service/internal/models"
	repo "github.com/bkaratas/account-service/internal/repository"
)

type UserService struct {
	users repo.Users
	tm    *auth.TokenManager
}

func NewUserService(r repo.Users, tm *auth.TokenManager) *UserService {
	return &UserService{users: r, tm: tm}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Authorize registers the email on first sight and logs in afterwards; either
// way a fresh token pair comes back. Created reports which path was taken.
func (s *UserService) Authorize(ctx context.Context, email, password string) (pair TokenPair, created bool, err error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return TokenPair{}, false, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNoRows) {
		u := models.User{Email: email, Role: models.RoleUser}
		if err := u.Validate(); err != nil {
			return TokenPair{}, false, err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return TokenPair{}, false, err
		}
		u, err = s.users.Create(ctx, u.Email, hash, u.Role)
		if err != nil {
			return TokenPair{}, false, err
		}
		pair, err = s.tokens(u)
		return pair, true, err
	}
	if err != nil {
		return TokenPair{}, false, err
	}

	if auth.VerifyPassword(password, existing.PasswordHash) != nil {
		return TokenPair{}, false, ErrInvalidCredentials
	}
	pair, err = s.tokens(existing)
	return pair, false, err
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNoRows) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}
	return s.tokens(u)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) tokens(u models.User) (TokenPair, error) {
	access, refresh, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
