package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/stride/internal/models"
	"github.com/example/stride/internal/services"
	"github.com/example/stride/internal/utils"
)

// PasswordResetHandler manages the forgot-password flow: issue a
// reset code, verify it, then set the new password.
type PasswordResetHandler struct {
	db  *gorm.DB
	otp *services.OTPService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, otp *services.OTPService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, otp: otp}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a reset code for a registered email. Prior
// unused codes for the user are invalidated.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "email not found")
		}
		return err
	}

	otpID, err := h.otp.IssuePasswordReset(user.ID, user.Email)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
		"otp_id":  otpID,
	})
}

// VerifyResetOTP checks the submitted code against the record id
// from ForgotPassword and returns the user id for the reset step.
func (h *PasswordResetHandler) VerifyResetOTP(c *fiber.Ctx) error {
	otpID, err := uuid.Parse(c.Params("otpId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid otp id")
	}

	var req submitOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "a 6-digit otp is required")
	}

	userID, err := h.otp.VerifyReset(otpID, req.OTP)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified successfully",
		"user_id": userID,
	})
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ResetPassword sets a new password after a successful code check.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	hash, err := utils.HashSecret(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", hash).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password reset successfully",
	})
}
