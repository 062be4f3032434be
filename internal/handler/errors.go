package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"cinepulse-recommendation-service/internal/validation"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// ErrorHandler renders errors that escape a handler as ErrorResponse JSON.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: msg})
}

// validationFailed responds 400 with per-field messages.
func validationFailed(c fiber.Ctx, err error) error {
	resp := ErrorResponse{Error: err.Error()}
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}
