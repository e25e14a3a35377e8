package models

// User represents a customer account.
type User struct {
	BaseModel
	Email        string    `gorm:"uniqueIndex" json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsVerified   bool      `json:"is_verified"`
	IsAdmin      bool      `json:"-"`
	Addresses    []Address `json:"addresses,omitempty"`
	Orders       []Order   `json:"orders,omitempty"`
}
