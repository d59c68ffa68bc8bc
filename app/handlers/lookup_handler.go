package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/vidyaloop/segment-service/app/dto"
	businessflow "github.com/vidyaloop/segment-service/business_flow"
	"github.com/vidyaloop/segment-service/utils"
)

type LookupHandlerInterface interface {
	GetSegmentFilters(c fiber.Ctx) error
}

// LookupHandler serves the staged filter lookup endpoint.
type LookupHandler struct {
	lookupFlow businessflow.LookupFlow
}

func NewLookupHandler(lookupFlow businessflow.LookupFlow) LookupHandlerInterface {
	return &LookupHandler{lookupFlow: lookupFlow}
}

func (h *LookupHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *LookupHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// GetSegmentFilters returns the staged actor/district/block/school
// lookup options. Each stage unlocks only when the previous one carries
// a real selection.
func (h *LookupHandler) GetSegmentFilters(c fiber.Ctx) error {
	req := dto.GetSegmentFiltersRequest{
		Actors:    c.Query("actors"),
		Districts: c.Query("districts"),
		Blocks:    c.Query("blocks"),
	}

	res, err := h.lookupFlow.GetSegmentFilters(h.createRequestContext(c, "/api/v1/segment-filters"), &req)
	if err != nil {
		if businessflow.IsInvalidSelection(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter selection", businessErrorCode(err, "INVALID_SELECTION"), nil)
		}
		log.Println("Get segment filters failed:", err)
		status, code := statusForError(err, "SEGMENT_FILTERS_FAILED")
		return h.ErrorResponse(c, status, "Get segment filters failed", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Segment filters retrieved", res)
}

func (h *LookupHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LookupHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
