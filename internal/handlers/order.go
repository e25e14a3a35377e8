package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/stride/internal/middleware"
	"github.com/example/stride/internal/services"
	"github.com/example/stride/internal/utils"
)

// OrderHandler exposes the order lifecycle over HTTP.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type placeOrderRequest struct {
	AddressID string `json:"address_id" validate:"omitempty,uuid"`
}

// PlaceOrder converts the current cart into an order.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req placeOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "address_id must be a uuid")
		}
	}

	var addressID *uuid.UUID
	if req.AddressID != "" {
		id, _ := uuid.Parse(req.AddressID)
		addressID = &id
	}

	order, err := h.orders.PlaceOrder(userID, addressID)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns the authenticated user's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.orders.ListForUser(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// CancelOrder cancels an order that has not shipped yet.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	order, err := h.orders.Cancel(userID, orderID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type returnRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// RequestReturn opens a return for one product line of a delivered
// order.
func (h *OrderHandler) RequestReturn(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req returnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}

	productID, _ := uuid.Parse(req.ProductID)

	order, err := h.orders.RequestReturn(userID, orderID, productID, time.Now())
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListAllOrders returns orders across all users. Admin only.
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	orders, total, err := h.orders.ListAll(pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdvanceOrderStatus moves an order along the fulfillment chain.
// Admin only.
func (h *OrderHandler) AdvanceOrderStatus(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req advanceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}

	if err := h.orders.AdvanceStatus(orderID, req.Status); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "status updated"})
}
