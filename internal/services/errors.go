package services

import (
	"errors"
	"fmt"
)

// Service-level failures, mapped to HTTP statuses at the handler
// boundary.
var (
	ErrOTPNotFound        = errors.New("otp not found or expired")
	ErrAttemptsExhausted  = errors.New("maximum attempts exceeded, request a new code")
	ErrEmailSend          = errors.New("failed to send email")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAddressNotFound    = errors.New("address not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrItemNotFound       = errors.New("order item not found")
	ErrInvalidTransition  = errors.New("order status does not permit this action")
	ErrReturnNotEligible  = errors.New("product is not eligible for returns")
	ErrReturnWindowClosed = errors.New("return window has expired")
	ErrReturnAlreadyOpen  = errors.New("return already requested for this item")
	ErrProductNotFound    = errors.New("product not found")
	ErrCartItemNotFound   = errors.New("item not in cart")
)

// InvalidCodeError reports an OTP mismatch together with the number
// of attempts the caller has left.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid code, %d attempts remaining", e.Remaining)
}
