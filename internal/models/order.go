package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Ordered is initial; Cancelled and Returned are
// terminal. Forward progression is driven by fulfillment, the side
// branches by the customer.
const (
	OrderStatusOrdered         = "Ordered"
	OrderStatusShipping        = "Shipping"
	OrderStatusOutForDelivery  = "Out for Delivery"
	OrderStatusDelivered       = "Delivered"
	OrderStatusCancelled       = "Cancelled"
	OrderStatusReturnRequested = "Return Requested"
	OrderStatusReturned        = "Returned"
)

// ShippingAddress is the address snapshot frozen onto an order.
type ShippingAddress struct {
	Name     string `json:"name"`
	HouseNo  string `json:"house_no"`
	Landmark string `json:"landmark"`
	AreaPin  string `json:"area_pin"`
	State    string `json:"state"`
	Phone    string `json:"phone"`
}

// Order is an immutable snapshot of a cart at placement time. Only
// the status fields and per-item return flags change afterwards.
type Order struct {
	BaseModel
	UserID            uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	Items             []OrderItem     `json:"items,omitempty"`
	TotalAmount       float64         `json:"total_amount"`
	DeliveryDate      time.Time       `json:"delivery_date"`
	Status            string          `gorm:"default:Ordered" json:"status"`
	CancellationDate  *time.Time      `json:"cancellation_date"`
	ReturnRequestDate *time.Time      `json:"return_request_date"`
	ShippingAddress   ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
}

// OrderItem copies product data by value at placement; later catalog
// edits never reach it.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Price           float64         `json:"price"`
	SellingPrice    float64         `json:"selling_price"`
	ImageURLs       []string        `gorm:"serializer:json" json:"image_urls"`
	Features        ProductFeatures `gorm:"embedded;embeddedPrefix:feature_" json:"features"`
	Size            string          `json:"size"`
	Details         string          `json:"details"`
	Quantity        int             `json:"quantity"`
	ReturnRequested bool            `json:"return_requested"`
}
