package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kbbot/internal/dto"
	"kbbot/internal/models"
	"kbbot/internal/repository"
	"kbbot/pkg/auth"

	"go.uber.org/zap"
)

type fakeUsers struct {
	byID map[int64]*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	u.ID = int64(len(f.byID) + 1)
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func newAuthService() *AuthService {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(&fakeUsers{byID: map[int64]*models.User{}}, jwtManager, zap.NewNop())
}

func TestAuthService_RegisterLoginRefresh(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{Username: "ops", Email: "Ops@Example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.User.ID != 1 || registered.User.Email != "ops@example.com" || registered.TokenType != "Bearer" {
		t.Errorf("unexpected registration %+v", registered)
	}

	if _, err := svc.Register(ctx, &dto.RegisterRequest{Username: "ops", Email: "ops@example.com", Password: "correct horse"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate Register() error = %v, want ErrUserExists", err)
	}

	logged, err := svc.Login(ctx, &dto.LoginRequest{Email: "ops@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "ops@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password error = %v, want ErrInvalidCredentials", err)
	}

	refreshed, err := svc.RefreshToken(ctx, logged.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.User.ID != 1 || refreshed.AccessToken == "" {
		t.Errorf("unexpected refresh %+v", refreshed)
	}

	if _, err := svc.RefreshToken(ctx, logged.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("access token accepted as refresh token: %v", err)
	}
}

func TestAuthService_RegisterValidates(t *testing.T) {
	svc := newAuthService()
	for _, req := range []dto.RegisterRequest{
		{Username: "ops", Email: "ops@example.com", Password: "short"},
		{Username: "", Email: "ops@example.com", Password: strings.Repeat("x", 8)},
		{Username: "ops", Email: " ", Password: strings.Repeat("x", 8)},
	} {
		if _, err := svc.Register(context.Background(), &req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%+v) error = %v, want ErrInvalidInput", req, err)
		}
	}
}
