package handler

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/http/middleware"
	"catalogapi/internal/service"
)

// messageResponse is the standardized envelope for non-validation outcomes.
type messageResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// validationResponse carries the field-keyed error map of a rejected request.
type validationResponse struct {
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(messageResponse{
		Success:   false,
		Message:   message,
		RequestID: requestIDFromCtx(c),
	})
}

// writeValidation writes a 400 response with one message per offending field.
func writeValidation(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(validationResponse{
		Success: false,
		Errors:  fields,
	})
}

// respondServiceError maps service-layer failures onto the HTTP taxonomy:
// validation → 400 field map, not found → 404, everything else → 500 with
// the original error logged only.
func respondServiceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return writeValidation(c, ve.Fields)
	case errors.Is(err, service.ErrProductNotFound):
		return writeError(c, fiber.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrCategoryNotFound):
		return writeError(c, fiber.StatusNotFound, "Category not found")
	default:
		logHandlerError(c, err)
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func logHandlerError(c *fiber.Ctx, err error) {
	entry, _ := json.Marshal(map[string]any{
		"level":      "error",
		"msg":        "request_failed",
		"request_id": requestIDFromCtx(c),
		"method":     c.Method(),
		"path":       c.Path(),
		"error":      err.Error(),
	})
	log.SetFlags(0)
	log.Println(string(entry))
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "method not allowed")
		default:
			return writeError(c, status, "internal server error")
		}
	}
}
