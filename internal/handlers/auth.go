package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/middleware"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/logger"
	"github.com/staffdocs/backend/pkg/utils"
)

type AuthHandler struct {
	Users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Users.Authenticate(req.Email, req.Password)
	if err != nil {
		logger.Warn("login_failed", map[string]interface{}{
			"email": req.Email,
			"ip":    c.IP(),
		})
		return serviceError(c, err)
	}

	// A tenant member logging in on another tenant's subdomain is
	// rejected like a bad password.
	if tenant := middleware.GetCurrentTenant(c); tenant != nil && !user.MemberOf(tenant.ID) {
		return utils.Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		return serviceError(c, err)
	}

	logger.InfoWithUser(user.ID.String(), "login", map[string]interface{}{
		"email": user.Email,
	})
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.Users.ChangePassword(user, req.OldPassword, req.NewPassword); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"changed": true})
}
