package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/stride/internal/models"
)

// forwardTransitions are the legal fulfillment edges. Customer
// branches (cancel, return request) have dedicated operations.
var forwardTransitions = map[string]string{
	models.OrderStatusShipping:       models.OrderStatusOrdered,
	models.OrderStatusOutForDelivery: models.OrderStatusShipping,
	models.OrderStatusDelivered:      models.OrderStatusOutForDelivery,
	models.OrderStatusReturned:       models.OrderStatusReturnRequested,
}

// OrderService owns the order lifecycle: cart conversion, the status
// state machine and return eligibility.
type OrderService struct {
	db           *gorm.DB
	deliveryDays int
	returnWindow time.Duration
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, deliveryDays, returnWindowDays int) *OrderService {
	return &OrderService{
		db:           db,
		deliveryDays: deliveryDays,
		returnWindow: time.Duration(returnWindowDays) * 24 * time.Hour,
	}
}

// PlaceOrder converts the user's cart into an order. Line items are
// snapshots of the current product data; the cart is emptied in the
// same transaction as the order insert.
func (s *OrderService) PlaceOrder(userID uuid.UUID, addressID *uuid.UUID) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Preload("Items.Product").First(&cart, "user_id = ?", userID).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == gorm.ErrRecordNotFound || len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		var address models.Address
		if addressID != nil {
			err = tx.First(&address, "id = ? AND user_id = ?", *addressID, userID).Error
		} else {
			err = tx.Where("user_id = ?", userID).Order("created_at desc").First(&address).Error
		}
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrAddressNotFound
			}
			return err
		}

		var total float64
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, entry := range cart.Items {
			if entry.Product == nil {
				return ErrProductNotFound
			}
			p := entry.Product
			items = append(items, models.OrderItem{
				ProductID:    p.ID,
				Name:         p.Name,
				Brand:        p.Brand,
				Price:        p.CurrentPrice,
				SellingPrice: p.SellingPrice,
				ImageURLs:    p.ImageURLs,
				Features:     p.Features,
				Size:         entry.Size,
				Details:      p.Details,
				Quantity:     entry.Quantity,
			})
			total += p.SellingPrice * float64(entry.Quantity)
		}

		order = models.Order{
			UserID:       userID,
			Items:        items,
			TotalAmount:  total,
			DeliveryDate: time.Now().AddDate(0, 0, s.deliveryDays),
			Status:       models.OrderStatusOrdered,
			ShippingAddress: models.ShippingAddress{
				Name:     address.Name,
				HouseNo:  address.HouseNo,
				Landmark: address.Landmark,
				AreaPin:  address.AreaPin,
				State:    address.State,
				Phone:    address.Phone,
			},
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Cancel moves an order from Ordered to Cancelled. The status
// precondition sits in the WHERE clause so concurrent transitions
// cannot both succeed.
func (s *OrderService) Cancel(userID, orderID uuid.UUID) (*models.Order, error) {
	now := time.Now()
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND user_id = ? AND status = ?", orderID, userID, models.OrderStatusOrdered).
		Updates(map[string]interface{}{
			"status":            models.OrderStatusCancelled,
			"cancellation_date": &now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var exists int64
		if err := s.db.Model(&models.Order{}).
			Where("id = ? AND user_id = ?", orderID, userID).
			Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, ErrOrderNotFound
		}
		return nil, ErrInvalidTransition
	}

	return s.Get(userID, orderID)
}

// RequestReturn opens a return for one line item of a delivered
// order. The item must carry the seven-day-returns feature, must not
// already be requested, and the request must fall inside the return
// window after the delivery date. The first accepted item moves the
// order to Return Requested.
func (s *OrderService) RequestReturn(userID, orderID, productID uuid.UUID, now time.Time) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Items").First(&order, "id = ? AND user_id = ?", orderID, userID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOrderNotFound
			}
			return err
		}

		if order.Status != models.OrderStatusDelivered && order.Status != models.OrderStatusReturnRequested {
			return ErrInvalidTransition
		}

		var item *models.OrderItem
		for i := range order.Items {
			if order.Items[i].ProductID == productID {
				item = &order.Items[i]
				break
			}
		}
		if item == nil {
			return ErrItemNotFound
		}

		if !item.Features.SevenDayReturns {
			return ErrReturnNotEligible
		}
		if item.ReturnRequested {
			return ErrReturnAlreadyOpen
		}
		if now.After(order.DeliveryDate.Add(s.returnWindow)) {
			return ErrReturnWindowClosed
		}

		if err := tx.Model(&models.OrderItem{}).
			Where("id = ?", item.ID).
			Update("return_requested", true).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"return_request_date": &now}
		if order.Status == models.OrderStatusDelivered {
			updates["status"] = models.OrderStatusReturnRequested
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(userID, orderID)
}

// AdvanceStatus moves an order along a legal fulfillment edge. The
// expected predecessor is part of the WHERE clause.
func (s *OrderService) AdvanceStatus(orderID uuid.UUID, next string) error {
	prev, ok := forwardTransitions[next]
	if !ok {
		return ErrInvalidTransition
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, prev).
		Update("status", next)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var exists int64
		if err := s.db.Model(&models.Order{}).Where("id = ?", orderID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrOrderNotFound
		}
		return ErrInvalidTransition
	}

	return nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// Get returns one order owned by the user.
func (s *OrderService) Get(userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").First(&order, "id = ? AND user_id = ?", orderID, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListAll returns orders across users for the admin view.
func (s *OrderService) ListAll(limit, offset int) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := s.db.Preload("Items").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, total, err
}
