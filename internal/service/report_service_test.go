package service

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rescue-report-service/internal/classifier"
	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/intake"
	"github.com/spec-kit/rescue-report-service/internal/observability"
	"github.com/spec-kit/rescue-report-service/internal/repository"
	"github.com/spec-kit/rescue-report-service/internal/storage"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

type mockReportRepo struct {
	createFn     func(ctx context.Context, report *domain.Report) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Report, error)
	listFn       func(ctx context.Context, filter repository.ReportFilter) ([]domain.Report, error)
	listAllFn    func(ctx context.Context, state *domain.ReportState) ([]domain.Report, error)
	countFn      func(ctx context.Context, state *domain.ReportState) (int, error)
	transitionFn func(ctx context.Context, id string, tr repository.StateTransition) error
}

func (m *mockReportRepo) Create(ctx context.Context, report *domain.Report) error {
	return m.createFn(ctx, report)
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockReportRepo) List(ctx context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
	return m.listFn(ctx, filter)
}

func (m *mockReportRepo) ListAll(ctx context.Context, state *domain.ReportState) ([]domain.Report, error) {
	return m.listAllFn(ctx, state)
}

func (m *mockReportRepo) Count(ctx context.Context, state *domain.ReportState) (int, error) {
	return m.countFn(ctx, state)
}

func (m *mockReportRepo) TransitionState(ctx context.Context, id string, tr repository.StateTransition) error {
	return m.transitionFn(ctx, id, tr)
}

type alwaysDogDetector struct{}

func (alwaysDogDetector) Detect(_ context.Context, _ []byte) ([]classifier.Detection, error) {
	return []classifier.Detection{{Label: "dog", Score: 0.93}}, nil
}

func newTestReportService(t *testing.T, repo *mockReportRepo) *ReportService {
	t.Helper()
	photos, err := storage.NewPhotoStore(t.TempDir(), 15*1024*1024)
	require.NoError(t, err)
	return NewReportService(ReportDependencies{
		ReportRepo: repo,
		Validator:  intake.NewValidator(alwaysDogDetector{}, 0.70, nil),
		PhotoStore: photos,
	})
}

func TestReportServiceCreate(t *testing.T) {
	var stored *domain.Report
	repo := &mockReportRepo{
		createFn: func(_ context.Context, report *domain.Report) error {
			report.State = domain.ReportStatePending
			stored = report
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*domain.Report, error) {
			if stored != nil && stored.ID == id {
				return stored, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	svc := newTestReportService(t, repo)

	creatorID := "user-1"
	report, err := svc.Create(context.Background(), &creatorID, ReportCreateInput{
		SpeciesRaw: "perro",
		Comments:   []string{"perro herido"},
		Location:   &domain.Location{Lat: 8.1, Lng: -80.98},
		Photos:     []intake.Photo{{Name: "foto.jpg", Data: []byte("img")}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, domain.SpeciesDog, report.Species)
	assert.Equal(t, domain.ReportStatePending, report.State)
	require.Len(t, report.Photos, 1)
	assert.Contains(t, report.Photos[0], "foto.jpg")
}

func TestReportServiceCreateRejectsUnknownSpecies(t *testing.T) {
	svc := newTestReportService(t, &mockReportRepo{})

	_, err := svc.Create(context.Background(), nil, ReportCreateInput{
		SpeciesRaw: "loro",
		Comments:   []string{"comentario"},
		Location:   &domain.Location{Lat: 8.1, Lng: -80.98},
		Photos:     []intake.Photo{{Name: "foto.jpg", Data: []byte("img")}},
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestReportServiceTransitionForbiddenBeforeLookup(t *testing.T) {
	repo := &mockReportRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.Report, error) {
			t.Fatal("repository reached despite failed role gate")
			return nil, nil
		},
		transitionFn: func(_ context.Context, _ string, _ repository.StateTransition) error {
			t.Fatal("repository reached despite failed role gate")
			return nil
		},
	}
	svc := newTestReportService(t, repo)

	_, err := svc.Resolve(context.Background(), "user-1", domain.RoleUser, "r1", "listo")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestReportServiceResolveNotFound(t *testing.T) {
	repo := &mockReportRepo{
		transitionFn: func(_ context.Context, _ string, _ repository.StateTransition) error {
			return pgx.ErrNoRows
		},
		getByIDFn: func(_ context.Context, _ string) (*domain.Report, error) {
			return nil, pgx.ErrNoRows
		},
	}
	svc := newTestReportService(t, repo)

	_, err := svc.Resolve(context.Background(), "admin-1", domain.RoleAdmin, "missing", "listo")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestReportServiceSecondResolveConflicts(t *testing.T) {
	report := &domain.Report{ID: "r1", State: domain.ReportStatePending}
	repo := &mockReportRepo{
		transitionFn: func(_ context.Context, _ string, tr repository.StateTransition) error {
			if report.State != domain.ReportStatePending {
				return pgx.ErrNoRows
			}
			actor, comment, at := tr.ActorID, tr.Comment, tr.At
			report.State = tr.To
			report.ResolvedBy = &actor
			report.ResolvedComment = &comment
			report.ResolvedAt = &at
			return nil
		},
		getByIDFn: func(_ context.Context, _ string) (*domain.Report, error) {
			return report, nil
		},
	}
	metrics := observability.NewMetrics()
	photos, err := storage.NewPhotoStore(t.TempDir(), 15*1024*1024)
	require.NoError(t, err)
	svc := NewReportService(ReportDependencies{
		ReportRepo: repo,
		Validator:  intake.NewValidator(alwaysDogDetector{}, 0.70, nil),
		PhotoStore: photos,
		Metrics:    metrics,
	})

	first, err := svc.Resolve(context.Background(), "admin-1", domain.RoleAdmin, "r1", "atendido")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStateResolved, first.State)
	firstAt := *report.ResolvedAt

	_, err = svc.Resolve(context.Background(), "admin-2", domain.RoleAdmin, "r1", "otra vez")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, domain.ReportStateResolved, domainErr.Details["estado"])

	// The losing call leaves the first writer's attribute group untouched.
	assert.Equal(t, "admin-1", *report.ResolvedBy)
	assert.Equal(t, "atendido", *report.ResolvedComment)
	assert.Equal(t, firstAt, *report.ResolvedAt)
	assert.Nil(t, report.CancelledBy)

	assert.Equal(t, int64(1), metrics.Transitions(string(domain.ReportStateResolved)))
}

func TestReportServiceConcurrentTerminalRace(t *testing.T) {
	var mu sync.Mutex
	report := &domain.Report{ID: "r1", State: domain.ReportStatePending}
	repo := &mockReportRepo{
		transitionFn: func(_ context.Context, _ string, tr repository.StateTransition) error {
			mu.Lock()
			defer mu.Unlock()
			if report.State != domain.ReportStatePending {
				return pgx.ErrNoRows
			}
			report.State = tr.To
			return nil
		},
		getByIDFn: func(_ context.Context, _ string) (*domain.Report, error) {
			mu.Lock()
			defer mu.Unlock()
			snapshot := *report
			return &snapshot, nil
		},
	}
	svc := newTestReportService(t, repo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Resolve(context.Background(), "admin-1", domain.RoleAdmin, "r1", "resuelto")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Cancel(context.Background(), "admin-2", domain.RoleAdmin, "r1", "duplicado")
	}()
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	}
	assert.Equal(t, 1, successes)
	assert.True(t, report.State.Terminal())
}

func TestReportServiceListPagination(t *testing.T) {
	var gotFilter repository.ReportFilter
	repo := &mockReportRepo{
		listFn: func(_ context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
			gotFilter = filter
			items := make([]domain.Report, 5)
			return items, nil
		},
		countFn: func(_ context.Context, _ *domain.ReportState) (int, error) {
			return 15, nil
		},
	}
	svc := newTestReportService(t, repo)

	items, pagination, err := svc.List(context.Background(), "", 2, 10)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 10, gotFilter.Offset)
	assert.Equal(t, 10, gotFilter.Limit)
	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 15, Pages: 2}, pagination)
}

func TestReportServiceListDefaultsAndEmpty(t *testing.T) {
	repo := &mockReportRepo{
		listFn: func(_ context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
			assert.Equal(t, 10, filter.Limit)
			assert.Equal(t, 0, filter.Offset)
			return nil, nil
		},
		countFn: func(_ context.Context, _ *domain.ReportState) (int, error) {
			return 0, nil
		},
	}
	svc := newTestReportService(t, repo)

	_, pagination, err := svc.List(context.Background(), "todos", 0, 0)
	require.NoError(t, err)
	// An empty result still reports one page.
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 0, Pages: 1}, pagination)
}

func TestReportServiceListInvalidStateFilter(t *testing.T) {
	svc := newTestReportService(t, &mockReportRepo{})

	_, _, err := svc.List(context.Background(), "archivado", 1, 10)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestReportServiceMapModes(t *testing.T) {
	reports := []domain.Report{
		{ID: "r1", Species: domain.SpeciesDog, Location: &domain.Location{Lat: 8.1, Lng: -80.98}, State: domain.ReportStatePending},
		{ID: "r2", Species: domain.SpeciesCat, State: domain.ReportStatePending},
	}
	repo := &mockReportRepo{
		listAllFn: func(_ context.Context, state *domain.ReportState) ([]domain.Report, error) {
			assert.Nil(t, state)
			return reports, nil
		},
	}
	svc := newTestReportService(t, repo)

	markers, err := svc.MapMarkers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, "r1", markers[0].ID)

	view, err := svc.MapDensity(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, view.Points, 1)
	assert.Equal(t, 1, view.Points[0].Weight)
}
