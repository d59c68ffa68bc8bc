// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	businessflow "github.com/vidyaloop/segment-service/business_flow"
	"github.com/vidyaloop/segment-service/repository"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must have at least " + err.Param() + " items"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "uuid4":
		return err.Field() + " must be a valid UUID"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// statusForError maps flow and gateway errors to an HTTP status and a
// stable error code. Unrecognized errors surface as 500 with the
// caller's fallback code.
func statusForError(err error, fallbackCode string) (int, string) {
	if businessflow.IsInvalidSelection(err) {
		return fiber.StatusBadRequest, businessErrorCode(err, "INVALID_SELECTION")
	}
	switch {
	case repository.IsConstraintViolation(err):
		return fiber.StatusConflict, "CONSTRAINT_VIOLATION"
	case repository.IsNotFound(err):
		return fiber.StatusNotFound, "NOT_FOUND"
	case repository.IsBackendUnavailable(err):
		return fiber.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"
	case repository.IsRemoteExecution(err):
		return fiber.StatusInternalServerError, "REMOTE_EXECUTION_ERROR"
	}
	return fiber.StatusInternalServerError, fallbackCode
}

func businessErrorCode(err error, fallback string) string {
	var be *businessflow.BusinessError
	if errors.As(err, &be) && be.Code != "" {
		return be.Code
	}
	return fallback
}
