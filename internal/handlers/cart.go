package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/stride/internal/middleware"
	"github.com/example/stride/internal/models"
)

// CartHandler manages the user's cart. The cart is created lazily on
// the first add and only its items change afterwards.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// GetCart returns the cart with products resolved.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var cart models.Cart
	err := h.db.Preload("Items.Product").First(&cart, "user_id = ?", userID).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": cart})
}

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Size      string `json:"size"`
}

// AddToCart adds a product entry, merging quantity when the same
// product/size pair is already present.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "product_id and a positive quantity are required")
	}

	productID, _ := uuid.Parse(req.ProductID)

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.First(&cart, "user_id = ?", userID).Error
		if err == gorm.ErrRecordNotFound {
			cart = models.Cart{UserID: userID}
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var item models.CartItem
		err = tx.First(&item, "cart_id = ? AND product_id = ? AND size = ?", cart.ID, productID, req.Size).Error
		if err == gorm.ErrRecordNotFound {
			item = models.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  req.Quantity,
				Size:      req.Size,
			}
			return tx.Create(&item).Error
		} else if err != nil {
			return err
		}

		return tx.Model(&item).Update("quantity", item.Quantity+req.Quantity).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "added to cart"})
}

type updateCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=0"`
	Size      string `json:"size"`
}

// UpdateCart sets the quantity of a cart entry; zero removes it.
func (h *CartHandler) UpdateCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "product_id and quantity are required")
	}

	productID, _ := uuid.Parse(req.ProductID)

	var cart models.Cart
	if err := h.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "item not in cart")
		}
		return err
	}

	query := h.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID)
	if req.Size != "" {
		query = query.Where("size = ?", req.Size)
	}

	var item models.CartItem
	if err := query.First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "item not in cart")
		}
		return err
	}

	if req.Quantity == 0 {
		if err := h.db.Delete(&item).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "item removed"})
	}

	if err := h.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart updated"})
}

// RemoveFromCart deletes every entry of a product from the cart.
func (h *CartHandler) RemoveFromCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var cart models.Cart
	if err := h.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "item not in cart")
		}
		return err
	}

	res := h.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "item not in cart")
	}

	return c.JSON(fiber.Map{"success": true, "message": "item removed"})
}
