package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/events"
	"github.com/spec-kit/rescue-report-service/internal/geo"
	"github.com/spec-kit/rescue-report-service/internal/intake"
	"github.com/spec-kit/rescue-report-service/internal/observability"
	"github.com/spec-kit/rescue-report-service/internal/repository"
	"github.com/spec-kit/rescue-report-service/internal/storage"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

// ReportService owns the report lifecycle: gated intake, listing, and the
// pending-to-terminal transitions.
type ReportService struct {
	reports    repository.ReportRepository
	validator  *intake.Validator
	photos     *storage.PhotoStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	Validator  *intake.Validator
	PhotoStore *storage.PhotoStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// ReportCreateInput describes the submission payload after multipart decode.
type ReportCreateInput struct {
	SpeciesRaw string
	Comments   []string
	Location   *domain.Location
	Photos     []intake.Photo
}

// Pagination is the envelope attached to every report collection response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		validator:  deps.Validator,
		photos:     deps.PhotoStore,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// Create admits a report after the intake gate passes. The creator is the
// optional authenticated principal; anonymous submissions carry nil.
func (s *ReportService) Create(ctx context.Context, creatorID *string, input ReportCreateInput) (*domain.Report, error) {
	species, ok := domain.ParseSpecies(input.SpeciesRaw)
	if !ok {
		return nil, apperrors.NewValidationError("especie must be Perro or Gato", map[string]any{"especie": input.SpeciesRaw})
	}

	submission := intake.Submission{
		Species:  species,
		Comments: input.Comments,
		Location: input.Location,
		Photos:   input.Photos,
	}
	if err := s.validator.Validate(ctx, submission); err != nil {
		return nil, err
	}

	filenames := make([]string, 0, len(input.Photos))
	for _, photo := range input.Photos {
		name, err := s.photos.Save(photo.Name, photo.Data)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		filenames = append(filenames, name)
	}

	report := &domain.Report{
		ID:        uuid.NewString(),
		Species:   species,
		Comments:  input.Comments,
		Photos:    filenames,
		Location:  input.Location,
		CreatedBy: creatorID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportCreated,
		ReportID: report.ID,
		ActorID:  creatorID,
		Payload: events.ReportCreatedPayload{
			Species:     report.Species,
			HasLocation: report.HasLocation(),
			PhotoCount:  len(report.Photos),
			Anonymous:   creatorID == nil,
		},
	})

	created, err := s.reports.GetByID(ctx, report.ID)
	if err != nil {
		return report, nil
	}
	return created, nil
}

// Get fetches a report with expanded actor references.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("report", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return report, nil
}

// List returns a page of reports newest-first plus the total for the filter.
func (s *ReportService) List(ctx context.Context, stateRaw string, page, limit int) ([]domain.Report, Pagination, error) {
	state, err := parseStateFilter(stateRaw)
	if err != nil {
		return nil, Pagination{}, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	filter := repository.ReportFilter{
		State:  state,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	items, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, apperrors.MapError(err)
	}
	total, err := s.reports.Count(ctx, state)
	if err != nil {
		return nil, Pagination{}, apperrors.MapError(err)
	}

	pagination := Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pageCount(total, limit),
	}
	return items, pagination, nil
}

// Resolve moves a pending report to resuelto. The role gate runs before any
// lookup, so an unauthorized caller learns nothing about the report.
func (s *ReportService) Resolve(ctx context.Context, actorID string, actorRole domain.Role, reportID, comment string) (*domain.Report, error) {
	return s.transition(ctx, actorID, actorRole, reportID, comment, domain.ReportStateResolved, events.EventReportResolved)
}

// Cancel moves a pending report to cancelado.
func (s *ReportService) Cancel(ctx context.Context, actorID string, actorRole domain.Role, reportID, comment string) (*domain.Report, error) {
	return s.transition(ctx, actorID, actorRole, reportID, comment, domain.ReportStateCancelled, events.EventReportCancelled)
}

func (s *ReportService) transition(ctx context.Context, actorID string, actorRole domain.Role, reportID, comment string, to domain.ReportState, eventType events.EventType) (*domain.Report, error) {
	if !actorRole.AtLeast(domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("admin role required")
	}

	tr := repository.StateTransition{
		To:      to,
		ActorID: actorID,
		Comment: comment,
		At:      time.Now(),
	}
	if err := s.reports.TransitionState(ctx, reportID, tr); err != nil {
		if err == pgx.ErrNoRows {
			return nil, s.transitionFailure(ctx, reportID)
		}
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordTransition(string(to))

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		ReportID: reportID,
		ActorID:  &actorID,
		Payload: events.ReportStateChangedPayload{
			OldState: domain.ReportStatePending,
			NewState: to,
			Comment:  comment,
		},
	})
	return report, nil
}

// transitionFailure disambiguates a zero-row CAS: either the report does not
// exist, or a concurrent call already moved it to a terminal state.
func (s *ReportService) transitionFailure(ctx context.Context, reportID string) error {
	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("report", map[string]any{"id": reportID})
		}
		return apperrors.MapError(err)
	}
	return apperrors.NewConflict("report is not pending", map[string]any{
		"id":     reportID,
		"estado": current.State,
	})
}

// MapMarkers projects the (optionally state-filtered) report set into
// marker mode.
func (s *ReportService) MapMarkers(ctx context.Context, stateRaw string) ([]geo.Marker, error) {
	reports, err := s.mapSet(ctx, stateRaw)
	if err != nil {
		return nil, err
	}
	return geo.BuildMarkers(reports), nil
}

// MapDensity projects the report set into density mode.
func (s *ReportService) MapDensity(ctx context.Context, stateRaw string) (geo.DensityView, error) {
	reports, err := s.mapSet(ctx, stateRaw)
	if err != nil {
		return geo.DensityView{}, err
	}
	return geo.BuildDensity(reports), nil
}

func (s *ReportService) mapSet(ctx context.Context, stateRaw string) ([]domain.Report, error) {
	state, err := parseStateFilter(stateRaw)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.ListAll(ctx, state)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reports, nil
}

func parseStateFilter(raw string) (*domain.ReportState, error) {
	if raw == "" || raw == "all" || raw == "todos" {
		return nil, nil
	}
	state, ok := domain.ParseReportState(raw)
	if !ok {
		return nil, apperrors.NewValidationError("invalid estado filter", map[string]any{"estado": raw})
	}
	return &state, nil
}

func pageCount(total, limit int) int {
	if limit <= 0 {
		return 1
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		return 1
	}
	return pages
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
