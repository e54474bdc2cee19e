package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rescue-report-service/internal/api/dto"
	"github.com/spec-kit/rescue-report-service/internal/auth"
	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/service"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

// AdminHandler manages user administration and dashboard endpoints.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{service: adminService}
}

// ListUsers GET /admin/users?q=&role=&banned=&page=&limit=.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filters := service.UserListFilters{
		Page:  parseIntQuery(c, "page", 1),
		Limit: parseIntQuery(c, "limit", 50),
	}
	if q := c.Query("q"); q != "" {
		filters.Q = &q
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role, ok := domain.ParseRole(roleStr)
		if !ok {
			return apperrors.NewValidationError("invalid role filter", map[string]any{"role": roleStr})
		}
		filters.Role = &role
	}
	if bannedStr := c.Query("banned"); bannedStr != "" {
		banned, err := strconv.ParseBool(bannedStr)
		if err != nil {
			return apperrors.NewValidationError("invalid banned filter", map[string]any{"banned": bannedStr})
		}
		filters.Banned = &banned
	}

	users, total, err := h.service.ListUsers(c.Context(), filters)
	if err != nil {
		return err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(dto.UserListResponse{
		Data:  items,
		Total: total,
		Page:  filters.Page,
		Limit: filters.Limit,
	})
}

// CreateAdmin POST /admin/users/admin.
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	admin, err := h.service.CreateAdmin(c.Context(), principal.Role, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "admin creado",
		"user":    dto.NewUserResponse(admin),
	})
}

// UpdateRole PATCH /admin/users/:id/role.
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, err := h.service.UpdateRole(c.Context(), principal.Role, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// SetBan PATCH /admin/users/:id/ban.
func (h *AdminHandler) SetBan(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SetBanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.service.SetBanned(c.Context(), principal.Role, c.Params("id"), req.Banned)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	totals, err := h.service.Dashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": totals})
}
