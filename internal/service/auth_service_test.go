package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/rescue-report-service/internal/auth"
	"github.com/spec-kit/rescue-report-service/internal/config"
	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/repository"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

type mockUserRepo struct {
	createFn     func(ctx context.Context, user *domain.User) error
	updateFn     func(ctx context.Context, user *domain.User) error
	getByIDFn    func(ctx context.Context, id string) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	listFn       func(ctx context.Context, filter repository.UserFilter) ([]domain.User, error)
	countFn      func(ctx context.Context, filter repository.UserFilter) (int, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.updateFn(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return m.listFn(ctx, filter)
}

func (m *mockUserRepo) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	return m.countFn(ctx, filter)
}

func testAuthConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 8,
		BcryptCost:    bcrypt.MinCost,
	}}
}

func TestAuthServiceRegister(t *testing.T) {
	var created *domain.User
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, pgx.ErrNoRows
		},
		createFn: func(_ context.Context, user *domain.User) error {
			user.ID = "user-1"
			created = user
			return nil
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	user, err := svc.Register(context.Background(), "  Ana  ", "ANA@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	require.NotNil(t, created)
	assert.NoError(t, auth.ComparePassword(created.PasswordHash, "hunter22"))
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "hunter22")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestAuthServiceLogin(t *testing.T) {
	hash, err := auth.HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			assert.Equal(t, "ana@example.com", email)
			return &domain.User{ID: "user-1", Email: email, PasswordHash: hash, Role: domain.RoleUser}, nil
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	user, token, exp, err := svc.Login(context.Background(), "Ana@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), exp, time.Minute)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	_, _, _, err = svc.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, pgx.ErrNoRows
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	_, _, _, err := svc.Login(context.Background(), "nadie@example.com", "hunter22")
	require.Error(t, err)
	// Unknown email and wrong password are indistinguishable to the caller.
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestAuthServiceLoginBanned(t *testing.T) {
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, Banned: true}, nil
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	_, _, _, err := svc.Login(context.Background(), "ana@example.com", "hunter22")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAuthServiceProfileBannedMidSession(t *testing.T) {
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Banned: true}, nil
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	_, err := svc.Profile(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAuthServiceProfileNotFound(t *testing.T) {
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, pgx.ErrNoRows
		},
	}
	svc := NewAuthService(testAuthConfig(), repo)

	_, err := svc.Profile(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
