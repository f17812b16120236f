package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketai/triage-service/internal/api/dto"
	"github.com/ticketai/triage-service/internal/auth"
	"github.com/ticketai/triage-service/internal/domain"
	"github.com/ticketai/triage-service/internal/repository"
	"github.com/ticketai/triage-service/internal/service"
	apperrors "github.com/ticketai/triage-service/pkg/util/errorutil"
)

// UsersHandler manages admin directory endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := repository.UserFilter{
		Limit:  parseInt(c.Query("page_size"), 50),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 50),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.UserRole(roleStr)
		filter.Role = &role
	}
	users, err := h.service.ListUsers(c.Context(), principal.User, filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateUser POST /users/update.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.UpdateUser(c.Context(), principal.User, service.UserUpdateInput{
		Email:  req.Email,
		Role:   req.Role,
		Skills: req.Skills,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}
