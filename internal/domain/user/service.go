package user

import (
	"context"

	"github.com/velmuzhov/photosite/internal/pkg/jwt"
	"github.com/velmuzhov/photosite/internal/pkg/password"
)

// Service handles authentication
type Service struct {
	repo Repository
	jwt  *jwt.Service
}

// NewService creates new user service
func NewService(repo Repository, jwtService *jwt.Service) *Service {
	return &Service{repo: repo, jwt: jwtService}
}

// Login verifies the credentials and issues a token pair. An unknown
// username and a wrong password answer the same error.
func (s *Service) Login(ctx context.Context, username, pass string) (*TokenResponse, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(pass, u.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(u)
}

// Refresh exchanges a valid refresh token for a new pair. The user row is
// re-read so a deleted account cannot refresh itself back in.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(u)
}

// GetByID resolves the authenticated user for GET /users/me
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) issueTokens(u *User) (*TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
