package models

import "github.com/google/uuid"

// Address is a delivery address owned by a user.
type Address struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name     string    `json:"name"`
	HouseNo  string    `json:"house_no"`
	Landmark string    `json:"landmark"`
	AreaPin  string    `json:"area_pin"`
	State    string    `json:"state"`
	Phone    string    `json:"phone"`
}
