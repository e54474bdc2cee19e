package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rescue-report-service/internal/domain"
)

// ReportFilter captures listing parameters. A nil State means all states.
type ReportFilter struct {
	State  *domain.ReportState
	Limit  int
	Offset int
}

// StateTransition describes the terminal write applied by resolve/cancel.
type StateTransition struct {
	To      domain.ReportState
	ActorID string
	Comment string
	At      time.Time
}

// ReportRepository encapsulates report persistence. Reports are never
// deleted; the only mutation after create is the state transition.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
	// ListAll returns the full (optionally state-filtered) report set for
	// whole-set projections such as the map views.
	ListAll(ctx context.Context, state *domain.ReportState) ([]domain.Report, error)
	Count(ctx context.Context, state *domain.ReportState) (int, error)
	// TransitionState atomically moves a pending report to a terminal state.
	// It returns pgx.ErrNoRows when no pending row matched, leaving the
	// caller to distinguish a missing report from a lost race.
	TransitionState(ctx context.Context, id string, tr StateTransition) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates the repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportColumns = `
        r.id, r.especie, r.comentarios, r.fotos, r.lat, r.lng, r.estado,
        r.created_by, r.resolved_by, r.resolved_comment, r.resolved_at,
        r.cancelled_by, r.cancelled_comment, r.cancelled_at,
        r.created_at, r.updated_at,
        cu.id, cu.name, cu.email,
        ru.id, ru.name, ru.email,
        xu.id, xu.name, xu.email`

const reportJoins = `
        LEFT JOIN users cu ON cu.id = r.created_by
        LEFT JOIN users ru ON ru.id = r.resolved_by
        LEFT JOIN users xu ON xu.id = r.cancelled_by`

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (id, especie, comentarios, fotos, lat, lng, estado, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,'pendiente',$7)
        RETURNING estado, created_at, updated_at`

	var lat, lng *float64
	if report.Location.Valid() {
		lat, lng = &report.Location.Lat, &report.Location.Lng
	}

	return r.pool.QueryRow(ctx, query,
		report.ID,
		report.Species,
		report.Comments,
		report.Photos,
		lat,
		lng,
		report.CreatedBy,
	).Scan(&report.State, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports r %s WHERE r.id=$1`, reportColumns, reportJoins)

	row := r.pool.QueryRow(ctx, query, id)
	report, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]domain.Report, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.State != nil {
		args = append(args, *filter.State)
		clauses = append(clauses, fmt.Sprintf("r.estado=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM reports r %s WHERE %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d`,
		reportColumns, reportJoins, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *report)
	}
	return result, rows.Err()
}

func (r *reportRepository) ListAll(ctx context.Context, state *domain.ReportState) ([]domain.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports r %s`, reportColumns, reportJoins)
	args := []any{}
	if state != nil {
		query += ` WHERE r.estado=$1`
		args = append(args, *state)
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *report)
	}
	return result, rows.Err()
}

func (r *reportRepository) Count(ctx context.Context, state *domain.ReportState) (int, error) {
	query := `SELECT COUNT(*) FROM reports`
	args := []any{}
	if state != nil {
		query += ` WHERE estado=$1`
		args = append(args, *state)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *reportRepository) TransitionState(ctx context.Context, id string, tr StateTransition) error {
	var query string
	switch tr.To {
	case domain.ReportStateResolved:
		query = `
        UPDATE reports SET estado=$2, resolved_by=$3, resolved_comment=$4, resolved_at=$5, updated_at=NOW()
        WHERE id=$1 AND estado='pendiente'`
	case domain.ReportStateCancelled:
		query = `
        UPDATE reports SET estado=$2, cancelled_by=$3, cancelled_comment=$4, cancelled_at=$5, updated_at=NOW()
        WHERE id=$1 AND estado='pendiente'`
	default:
		return fmt.Errorf("unsupported transition target %q", tr.To)
	}

	cmd, err := r.pool.Exec(ctx, query, id, tr.To, tr.ActorID, tr.Comment, tr.At)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var (
		report           domain.Report
		lat, lng         *float64
		creatorID        *string
		creatorName      *string
		creatorEmail     *string
		resolverID       *string
		resolverName     *string
		resolverEmail    *string
		cancellerID      *string
		cancellerName    *string
		cancellerEmail   *string
	)

	if err := row.Scan(
		&report.ID,
		&report.Species,
		&report.Comments,
		&report.Photos,
		&lat,
		&lng,
		&report.State,
		&report.CreatedBy,
		&report.ResolvedBy,
		&report.ResolvedComment,
		&report.ResolvedAt,
		&report.CancelledBy,
		&report.CancelledComment,
		&report.CancelledAt,
		&report.CreatedAt,
		&report.UpdatedAt,
		&creatorID, &creatorName, &creatorEmail,
		&resolverID, &resolverName, &resolverEmail,
		&cancellerID, &cancellerName, &cancellerEmail,
	); err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		report.Location = &domain.Location{Lat: *lat, Lng: *lng}
	}
	report.Creator = userRef(creatorID, creatorName, creatorEmail)
	report.Resolver = userRef(resolverID, resolverName, resolverEmail)
	report.Canceller = userRef(cancellerID, cancellerName, cancellerEmail)
	return &report, nil
}

func userRef(id, name, email *string) *domain.UserRef {
	if id == nil {
		return nil
	}
	ref := &domain.UserRef{ID: *id}
	if name != nil {
		ref.Name = *name
	}
	if email != nil {
		ref.Email = *email
	}
	return ref
}
