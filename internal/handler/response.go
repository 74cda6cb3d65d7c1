package handler

import (
	"errors"
	"strconv"

	"github.com/ebetcoin/backend/internal/service"
	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Response is the envelope of every API response
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respond(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

var (
	notFoundErrors = []error{
		service.ErrUserNotFound,
		service.ErrWalletNotFound,
		service.ErrDepositNotFound,
		service.ErrWithdrawalNotFound,
		service.ErrPromoCodeNotFound,
	}
	badRequestErrors = []error{
		service.ErrInsufficientBalance,
		service.ErrDepositNotPending,
		service.ErrWithdrawalNotOpen,
		service.ErrPromoCodeInactive,
		service.ErrPromoCodeExhausted,
		service.ErrNotWelcomeCode,
		service.ErrWelcomeCodeUsed,
		service.ErrEmptyCreditBatch,
		service.ErrNotBanned,
	}
)

func statusOf(err error) int {
	if _, ok := service.IsValidation(err); ok {
		return fiber.StatusUnprocessableEntity
	}
	for _, e := range notFoundErrors {
		if errors.Is(err, e) {
			return fiber.StatusNotFound
		}
	}
	for _, e := range badRequestErrors {
		if errors.Is(err, e) {
			return fiber.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, service.ErrPromoCodeExists), errors.Is(err, service.ErrCurrencyMismatch),
		errors.Is(err, service.ErrAlreadyBanned):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrRequestInProgress):
		return fiber.StatusTooManyRequests
	}
	return fiber.StatusInternalServerError
}

// fail writes err as an envelope. Unexpected errors are logged and reported
// with a generic message.
func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)

	if ve, ok := service.IsValidation(err); ok {
		return c.Status(status).JSON(Response{
			Success: false,
			Message: "validation failed",
			Errors:  ve.Fields,
		})
	}
	if status == fiber.StatusInternalServerError {
		logger.Error(c.UserContext()).Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		return failure(c, status, "internal server error")
	}
	return failure(c, status, err.Error())
}

func page(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	return limit, offset
}

func idParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// ErrorHandler renders errors that escape a handler, fiber's own included
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return failure(c, fe.Code, fe.Message)
	}
	return fail(c, err)
}
