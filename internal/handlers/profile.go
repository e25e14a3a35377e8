package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/stride/internal/middleware"
	"github.com/example/stride/internal/models"
)

// ProfileHandler manages the user profile and delivery addresses.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.Name,
			"is_verified": user.IsVerified,
			"created_at":  user.CreatedAt,
		},
	})
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateProfile updates profile fields.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"name": req.Name, "updated_at": time.Now()}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated"})
}

// ListAddresses returns the user's delivery addresses.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var addresses []models.Address
	if err := h.db.Where("user_id = ?", userID).Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type addressRequest struct {
	Name     string `json:"name" validate:"required"`
	HouseNo  string `json:"house_no" validate:"required"`
	Landmark string `json:"landmark"`
	AreaPin  string `json:"area_pin" validate:"required"`
	State    string `json:"state" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

// CreateAddress stores a delivery address for the user.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "name, house_no, area_pin, state and phone are required")
	}

	address := models.Address{
		UserID:   userID,
		Name:     req.Name,
		HouseNo:  req.HouseNo,
		Landmark: req.Landmark,
		AreaPin:  req.AreaPin,
		State:    req.State,
		Phone:    req.Phone,
	}

	if err := h.db.Create(&address).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

type updateAddressRequest struct {
	Name     *string `json:"name"`
	HouseNo  *string `json:"house_no"`
	Landmark *string `json:"landmark"`
	AreaPin  *string `json:"area_pin"`
	State    *string `json:"state"`
	Phone    *string `json:"phone"`
}

// UpdateAddress updates an address owned by the user.
func (h *ProfileHandler) UpdateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.HouseNo != nil {
		updates["house_no"] = *req.HouseNo
	}
	if req.Landmark != nil {
		updates["landmark"] = *req.Landmark
	}
	if req.AreaPin != nil {
		updates["area_pin"] = *req.AreaPin
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	res := h.db.Model(&models.Address{}).
		Where("id = ? AND user_id = ?", addrID, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "address updated"})
}

// DeleteAddress removes an address owned by the user.
func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	res := h.db.Where("id = ? AND user_id = ?", addrID, userID).
		Delete(&models.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "address deleted"})
}
