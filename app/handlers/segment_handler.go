package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/vidyaloop/segment-service/app/dto"
	businessflow "github.com/vidyaloop/segment-service/business_flow"
	"github.com/vidyaloop/segment-service/utils"
)

type SegmentHandlerInterface interface {
	ListSegments(c fiber.Ctx) error
	CreateSegmentFromPhones(c fiber.Ctx) error
	CreateSegmentFromFilter(c fiber.Ctx) error
}

// SegmentHandler serves segment listing and the two creation paths.
type SegmentHandler struct {
	segmentFlow businessflow.SegmentFlow
	validator   *validator.Validate
}

func NewSegmentHandler(segmentFlow businessflow.SegmentFlow) SegmentHandlerInterface {
	return &SegmentHandler{
		segmentFlow: segmentFlow,
		validator:   validator.New(),
	}
}

func (h *SegmentHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *SegmentHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListSegments returns every segment ordered by id.
func (h *SegmentHandler) ListSegments(c fiber.Ctx) error {
	res, err := h.segmentFlow.ListSegments(h.createRequestContext(c, "/api/v1/segments"))
	if err != nil {
		log.Println("List segments failed:", err)
		status, code := statusForError(err, "SEGMENT_LIST_FAILED")
		return h.ErrorResponse(c, status, "List segments failed", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Segments retrieved", res)
}

// CreateSegmentFromPhones creates a segment and maps every mentor whose
// phone number appears in the request.
func (h *SegmentHandler) CreateSegmentFromPhones(c fiber.Ctx) error {
	var req dto.CreateSegmentFromPhonesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.segmentFlow.CreateSegmentFromPhones(h.createRequestContext(c, "/api/v1/segment/phone"), &req)
	if err != nil {
		log.Println("Create segment from phones failed:", err)
		status, code := statusForError(err, "SEGMENT_CREATE_FAILED")
		return h.ErrorResponse(c, status, "Create segment from phones failed", code, nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Segment created successfully", result)
}

// CreateSegmentFromFilter creates a segment from a compound
// actor/district/block/school selection.
func (h *SegmentHandler) CreateSegmentFromFilter(c fiber.Ctx) error {
	var req dto.CreateSegmentFromFilterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.segmentFlow.CreateSegmentFromFilter(h.createRequestContext(c, "/api/v1/segment-filters/create"), &req)
	if err != nil {
		if businessflow.IsActorsRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Actors are compulsory and should not be empty", "ACTORS_REQUIRED", nil)
		}
		log.Println("Create segment from filter failed:", err)
		status, code := statusForError(err, "SEGMENT_CREATE_FAILED")
		return h.ErrorResponse(c, status, "Create segment from filter failed", code, nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Segment created successfully", result)
}

func (h *SegmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *SegmentHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
