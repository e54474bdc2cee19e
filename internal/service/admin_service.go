package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rescue-report-service/internal/auth"
	"github.com/spec-kit/rescue-report-service/internal/config"
	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/events"
	"github.com/spec-kit/rescue-report-service/internal/repository"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

// AdminService covers staff management and the read-side admin queries.
type AdminService struct {
	users      repository.UserRepository
	reports    repository.ReportRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo   repository.UserRepository
	ReportRepo repository.ReportRepository
	Dispatcher events.Dispatcher
}

// UserListFilters define admin user-listing parameters.
type UserListFilters struct {
	Q      *string
	Role   *domain.Role
	Banned *bool
	Page   int
	Limit  int
}

// DashboardTotals aggregates per-state report counts.
type DashboardTotals struct {
	Total     int `json:"total"`
	Pending   int `json:"pendientes"`
	Resolved  int `json:"resueltos"`
	Cancelled int `json:"cancelados"`
}

// NewAdminService constructs the service.
func NewAdminService(cfg config.Config, deps AdminDependencies) *AdminService {
	return &AdminService{
		users:      deps.UserRepo,
		reports:    deps.ReportRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// ListUsers returns a page of accounts plus the total for the filter.
func (s *AdminService) ListUsers(ctx context.Context, filters UserListFilters) ([]domain.User, int, error) {
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	repoFilter := repository.UserFilter{
		Q:      filters.Q,
		Role:   filters.Role,
		Banned: filters.Banned,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	users, err := s.users.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total, err := s.users.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return users, total, nil
}

// CreateAdmin creates an account with role admin. Only a superadmin may do
// this; an admin caller gets Forbidden.
func (s *AdminService) CreateAdmin(ctx context.Context, actorRole domain.Role, name, email, password string) (*domain.User, error) {
	if !actorRole.AtLeast(domain.RoleSuperAdmin) {
		return nil, apperrors.NewForbidden("superadmin role required")
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	admin := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}

// UpdateRole changes a user's role. Superadmin only; this is also what
// keeps an admin from escalating anyone (including themselves) upward.
func (s *AdminService) UpdateRole(ctx context.Context, actorRole domain.Role, targetID, roleRaw string) (*domain.User, error) {
	if !actorRole.AtLeast(domain.RoleSuperAdmin) {
		return nil, apperrors.NewForbidden("superadmin role required")
	}

	role, ok := domain.ParseRole(roleRaw)
	if !ok {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": roleRaw})
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return nil, apperrors.MapError(err)
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetBanned flips the banned flag. Existing credentials stay valid until
// expiry; the profile endpoint performs the live re-check.
func (s *AdminService) SetBanned(ctx context.Context, actorRole domain.Role, targetID string, banned bool) (*domain.User, error) {
	if !actorRole.AtLeast(domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("admin role required")
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return nil, apperrors.MapError(err)
	}

	user.Banned = banned
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserBanned,
			Timestamp: time.Now(),
			Payload:   events.UserBannedPayload{UserID: user.ID, Banned: banned},
		})
	}
	return user, nil
}

// Dashboard computes report totals by fanning out the three single-state
// counts concurrently instead of one unfiltered scan.
func (s *AdminService) Dashboard(ctx context.Context) (DashboardTotals, error) {
	states := []domain.ReportState{
		domain.ReportStatePending,
		domain.ReportStateResolved,
		domain.ReportStateCancelled,
	}

	counts := make([]int, len(states))
	errs := make([]error, len(states))

	var wg sync.WaitGroup
	for i, state := range states {
		wg.Add(1)
		go func(i int, state domain.ReportState) {
			defer wg.Done()
			counts[i], errs[i] = s.reports.Count(ctx, &state)
		}(i, state)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return DashboardTotals{}, apperrors.MapError(err)
		}
	}

	return DashboardTotals{
		Total:     counts[0] + counts[1] + counts[2],
		Pending:   counts[0],
		Resolved:  counts[1],
		Cancelled: counts[2],
	}, nil
}
