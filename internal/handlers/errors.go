package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/stride/internal/services"
)

var validate = validator.New()

// serviceError maps service failures to HTTP errors. Anything not in
// the taxonomy bubbles up as a 500 through Fiber's error handler.
func serviceError(err error) error {
	var invalidCode *services.InvalidCodeError
	if errors.As(err, &invalidCode) {
		return fiber.NewError(fiber.StatusBadRequest, invalidCode.Error())
	}

	switch {
	case errors.Is(err, services.ErrOTPNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCartItemNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrAttemptsExhausted),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrReturnNotEligible),
		errors.Is(err, services.ErrReturnWindowClosed),
		errors.Is(err, services.ErrReturnAlreadyOpen):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailSend):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return err
}
