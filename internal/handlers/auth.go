package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/stride/internal/config"
	"github.com/example/stride/internal/models"
	"github.com/example/stride/internal/services"
	"github.com/example/stride/internal/utils"
)

// AuthHandler bundles dependencies for signup, login and the
// OTP-gated account flows.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
	otp *services.OTPService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, otp *services.OTPService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otp: otp}
}

type issueEmailOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// IssueEmailOTP sends a verification code to an address that is not
// registered yet.
func (h *AuthHandler) IssueEmailOTP(c *fiber.Ctx) error {
	var req issueEmailOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already registered")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	if _, err := h.otp.IssueEmailVerification(req.Email); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
		"email":   req.Email,
	})
}

type submitOTPRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

// VerifyEmailOTP validates the signup code for the email in the path.
func (h *AuthHandler) VerifyEmailOTP(c *fiber.Ctx) error {
	email := c.Params("email")

	var req submitOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "a 6-digit otp is required")
	}

	if err := h.otp.VerifyEmail(email, req.OTP); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified successfully",
		"email":   email,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates the account once the email has been verified.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	email := c.Params("email")

	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	var existing models.User
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "email already registered")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashSecret(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		IsVerified:   true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckSecret(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// Logout is a client-driven operation with Bearer tokens; the
// endpoint exists so the frontend has a single sign-out call.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out successfully",
	})
}
