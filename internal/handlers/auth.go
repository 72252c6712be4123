package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storeadmin/internal/config"
	"github.com/example/storeadmin/internal/utils"
)

// AuthHandler issues admin tokens. Identity lives in configuration; there is
// no user table behind the back office.
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the configured admin credentials and returns a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.cfg.AdminEmail)) == 1
	passwordOK := checkAdminPassword(h.cfg.AdminPassword, req.Password)
	if !emailOK || !passwordOK {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, req.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"token": token}})
}

// checkAdminPassword accepts either a bcrypt hash or a plain value in
// ADMIN_PASSWORD so local setups don't need to pre-hash.
func checkAdminPassword(configured, provided string) bool {
	if len(configured) >= 4 && configured[0] == '$' {
		return utils.CheckPassword(configured, provided)
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) == 1
}
