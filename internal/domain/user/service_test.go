package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/velmuzhov/photosite/internal/pkg/jwt"
	"github.com/velmuzhov/photosite/internal/pkg/password"
)

type memUsers struct {
	byName map[string]*User
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*User, error) {
	return m.byName[username], nil
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range m.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(ctx context.Context, username, hashedPassword string) (*User, error) {
	u := &User{ID: int64(len(m.byName) + 1), Username: username, HashedPassword: hashedPassword}
	m.byName[username] = u
	return u, nil
}

func newTestService(t *testing.T) (*Service, *memUsers) {
	t.Helper()

	hash, err := password.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &memUsers{byName: map[string]*User{
		"admin": {ID: 1, Username: "admin", HashedPassword: hash},
	}}
	jwtService := jwt.NewService("test-secret", 15*time.Minute, time.Hour)
	return NewService(repo, jwtService), repo
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		tokens, err := svc.Login(ctx, "admin", "correct horse")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if tokens.AccessToken == "" || tokens.RefreshToken == "" {
			t.Error("empty token in pair")
		}
		if tokens.TokenType != "bearer" {
			t.Errorf("token type = %q", tokens.TokenType)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(ctx, "admin", "battery staple"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.Login(ctx, "ghost", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestRefresh(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	tokens, err := svc.Login(ctx, "admin", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	t.Run("valid refresh token", func(t *testing.T) {
		fresh, err := svc.Refresh(ctx, tokens.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		if fresh.AccessToken == "" || fresh.RefreshToken == "" {
			t.Error("empty token in refreshed pair")
		}
	})

	t.Run("access token is not accepted", func(t *testing.T) {
		if _, err := svc.Refresh(ctx, tokens.AccessToken); !errors.Is(err, jwt.ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		delete(repo.byName, "admin")
		if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})
}
