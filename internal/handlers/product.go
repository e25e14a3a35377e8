package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/stride/internal/models"
	"github.com/example/stride/internal/utils"
)

// ProductHandler manages the shoe catalog.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("category"); v != "" {
		query = query.Where("category = ?", v)
	}

	if v := c.Query("brand"); v != "" {
		query = query.Where("brand = ?", v)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", q, q)
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("selling_price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("selling_price <= ?", val)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct returns one product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name         string                 `json:"name" validate:"required"`
	Brand        string                 `json:"brand" validate:"required"`
	Category     string                 `json:"category" validate:"required"`
	CurrentPrice float64                `json:"current_price" validate:"required,gt=0"`
	SellingPrice float64                `json:"selling_price" validate:"required,gt=0"`
	Details      string                 `json:"details"`
	ImageURLs    []string               `json:"image_urls"`
	Sizes        []string               `json:"sizes"`
	Features     models.ProductFeatures `json:"features"`
}

// UploadProduct creates a catalog entry. Admin only.
func (h *ProductHandler) UploadProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "all required fields must be provided")
	}

	product := models.Product{
		Name:         req.Name,
		Brand:        req.Brand,
		Category:     req.Category,
		CurrentPrice: req.CurrentPrice,
		SellingPrice: req.SellingPrice,
		Details:      req.Details,
		ImageURLs:    req.ImageURLs,
		Sizes:        req.Sizes,
		Features:     req.Features,
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct replaces the editable fields of a product. Orders
// keep their own snapshots, so existing orders are unaffected.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "all required fields must be provided")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	product.Name = req.Name
	product.Brand = req.Brand
	product.Category = req.Category
	product.CurrentPrice = req.CurrentPrice
	product.SellingPrice = req.SellingPrice
	product.Details = req.Details
	product.ImageURLs = req.ImageURLs
	product.Sizes = req.Sizes
	product.Features = req.Features

	if err := h.db.Save(&product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a catalog entry.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Delete(&product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted successfully"})
}
