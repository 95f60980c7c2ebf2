package handlers

import (
	"errors"

	"brokersure/internal/core/domain"
	"brokersure/internal/core/services"
	"brokersure/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user profile and admin account endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns the caller's profile
// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved successfully", user.ToResponse())
}

// UpdateProfile updates the caller's profile
// @Summary Update profile
// @Description Update the authenticated user's name or email
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile changes"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Email already in use")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	return response.Success(c, "Profile updated successfully", user.ToResponse())
}

// ChangePassword changes the caller's password
// @Summary Change password
// @Description Change the authenticated user's password and revoke all sessions
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Password change"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/change-password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.OldPassword == "" || input.NewPassword == "" {
		return response.BadRequest(c, "Old and new passwords are required")
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &input); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Old password is incorrect")
		default:
			if ve, ok := domain.IsValidationError(err); ok {
				return response.ValidationFailed(c, ve)
			}
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Success(c, "Password changed successfully, please login again", nil)
}

// List lists users by role (admin)
// @Summary List users
// @Description List users, optionally filtered by role
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter (CUSTOMER/AGENT/ADMIN)"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.ListByRole(c.Context(), c.Query("role"))
	if err != nil {
		return response.FromDomainError(c, err)
	}

	records := make([]interface{}, 0, len(users))
	for _, u := range users {
		records = append(records, u.ToResponse())
	}
	return response.Success(c, "Users retrieved successfully", records)
}

// CreateStaff provisions an agent or admin account (admin)
// @Summary Create staff account
// @Description Provision an AGENT or ADMIN account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateStaffInput true "Staff account"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/staff [post]
func (h *UserHandler) CreateStaff(c *fiber.Ctx) error {
	var input services.CreateStaffInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "Username, email and password are required")
	}

	user, err := h.userService.CreateStaff(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			return response.Conflict(c, "Username or email already exists")
		}
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Staff account created successfully", user.ToResponse())
}

// SetActiveRequest represents the activation toggle body
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetActive enables or disables an account (admin)
// @Summary Enable or disable user
// @Description Enable or disable a user account; disabling revokes all sessions
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetActiveRequest true "Activation state"
// @Success 200 {object} response.Response
// @Router /users/{id}/active [put]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetActive(c.Context(), uint(id), req.IsActive)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", user.ToResponse())
}
