package models

import (
	"time"

	"github.com/google/uuid"
)

// OTP purposes. Email verification is keyed by email; password reset
// by record id with the owning user attached.
const (
	OTPPurposeEmailVerify   = "email_verify"
	OTPPurposePasswordReset = "password_reset"
)

// OTPCode stores a bcrypt hash of an issued one-time code together
// with its attempt counter. Records are deleted on successful
// verification or attempt exhaustion; expired records are swept on
// lookup.
type OTPCode struct {
	BaseModel
	Purpose   string     `gorm:"index:idx_otp_subject" json:"purpose"`
	Email     string     `gorm:"index:idx_otp_subject" json:"email"`
	UserID    *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	CodeHash  string     `json:"-"`
	Attempts  int        `json:"attempts"`
	ExpiresAt time.Time  `json:"expires_at"`
}
