package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rescue-report-service/internal/api/dto"
	"github.com/spec-kit/rescue-report-service/internal/auth"
	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/intake"
	"github.com/spec-kit/rescue-report-service/internal/service"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

// ReportsHandler manages report intake, listing, lifecycle, and map endpoints.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Create POST /reports. Multipart with especie, comentarios (JSON array),
// ubicacion (JSON {lat,lng}), and one or more fotos. The bearer credential
// is optional; a valid one attaches the creator.
func (h *ReportsHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}

	input := service.ReportCreateInput{
		SpeciesRaw: formValue(form, "especie"),
	}

	if raw := formValue(form, "comentarios"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Comments); err != nil {
			// Plain string fallback for clients that skip the JSON encoding.
			input.Comments = []string{raw}
		}
	}

	if raw := formValue(form, "ubicacion"); raw != "" {
		var loc domain.Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return apperrors.NewValidationError("ubicacion must be JSON {lat,lng}", nil)
		}
		input.Location = &loc
	}

	photos, err := readPhotos(form)
	if err != nil {
		return err
	}
	input.Photos = photos

	var creatorID *string
	if principal, ok := auth.PrincipalFromContext(c); ok {
		creatorID = &principal.UserID
	}

	report, err := h.service.Create(c.Context(), creatorID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewReportResponse(report))
}

// List GET /reports?estado=&page=&limit=.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	reports, pagination, err := h.service.List(c.Context(), c.Query("estado"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewReportListResponse(reports, pagination))
}

// Get GET /reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	report, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewReportResponse(report))
}

// Resolve PATCH /reports/:id/cerrar.
func (h *ReportsHandler) Resolve(c *fiber.Ctx) error {
	return h.transition(c, h.service.Resolve)
}

// Cancel PATCH /reports/:id/cancelar.
func (h *ReportsHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.service.Cancel)
}

func (h *ReportsHandler) transition(c *fiber.Ctx, apply func(ctx context.Context, actorID string, actorRole domain.Role, reportID, comment string) (*domain.Report, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	report, err := apply(c.Context(), principal.UserID, principal.Role, c.Params("id"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewReportResponse(report))
}

// Map GET /reports/map?mode=markers|density&estado=.
func (h *ReportsHandler) Map(c *fiber.Ctx) error {
	mode := c.Query("mode", "markers")
	switch mode {
	case "markers":
		markers, err := h.service.MapMarkers(c.Context(), c.Query("estado"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": markers})
	case "density":
		view, err := h.service.MapDensity(c.Context(), c.Query("estado"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": view})
	default:
		return apperrors.NewValidationError("mode must be markers or density", map[string]any{"mode": mode})
	}
}

func formValue(form *multipart.Form, key string) string {
	vals := form.Value[key]
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func readPhotos(form *multipart.Form) ([]intake.Photo, error) {
	files := form.File["fotos"]
	photos := make([]intake.Photo, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, apperrors.NewValidationError("unreadable photo upload", map[string]any{"foto": header.Filename})
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, apperrors.NewValidationError("unreadable photo upload", map[string]any{"foto": header.Filename})
		}
		photos = append(photos, intake.Photo{Name: header.Filename, Data: data})
	}
	return photos, nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return defaultVal
	}
	return parsed
}
