package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/service"
	"github.com/spec-kit/user-service/internal/validation"
	"github.com/spec-kit/user-service/pkg/util/errorutil"
)

// UsersHandler exposes the user lifecycle endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}

	user, err := h.users.Create(c.UserContext(), validation.CreateInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Bio:             req.Bio,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)

	users, err := h.users.List(c.UserContext(), skip, limit)
	if err != nil {
		return err
	}
	items := dto.NewUserResponses(users)
	return c.JSON(dto.UserListResponse{
		Items: items,
		Count: len(items),
		Skip:  skip,
		Limit: limit,
	})
}

// Get handles GET /users/:id. The include_deleted query flag is the admin
// path to inspect tombstoned users.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	includeDeleted := c.QueryBool("include_deleted", false)
	user, err := h.users.Get(c.UserContext(), c.Params("id"), includeDeleted)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// GetByUsername handles GET /users/username/:username.
func (h *UsersHandler) GetByUsername(c *fiber.Ctx) error {
	user, err := h.users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// GetByEmail handles GET /users/email/:email.
func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return errorutil.NewValidationError("invalid email parameter", nil)
	}
	user, err := h.users.GetByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}

	user, err := h.users.Update(c.UserContext(), c.Params("id"), validation.UpdateInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Bio:             req.Bio,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	message, err := h.users.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

// ChangeStatus handles PATCH /users/:id/status.
func (h *UsersHandler) ChangeStatus(c *fiber.Ctx) error {
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}

	user, err := h.users.ChangeStatus(c.UserContext(), c.Params("id"), domain.UserStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Stats handles GET /users/stats/summary.
func (h *UsersHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.users.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatsResponse(stats))
}

// Export handles GET /users/export/json.
func (h *UsersHandler) Export(c *fiber.Ctx) error {
	users, err := h.users.Export(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}
