package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/vidyaloop/segment-service/app/dto"
	businessflow "github.com/vidyaloop/segment-service/business_flow"
	"github.com/vidyaloop/segment-service/utils"
)

type MentorHandlerInterface interface {
	GetSegmentMentors(c fiber.Ctx) error
	GetSegmentMentorsCount(c fiber.Ctx) error
	GetSegmentsMentors(c fiber.Ctx) error
	GetSegmentsMentorsCount(c fiber.Ctx) error
}

// MentorHandler serves the notification-payload and count endpoints.
type MentorHandler struct {
	resolver  businessflow.MentorResolverFlow
	validator *validator.Validate
}

func NewMentorHandler(resolver businessflow.MentorResolverFlow) MentorHandlerInterface {
	return &MentorHandler{
		resolver:  resolver,
		validator: validator.New(),
	}
}

func (h *MentorHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *MentorHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// GetSegmentMentors returns the push-notification rows for one segment.
func (h *MentorHandler) GetSegmentMentors(c fiber.Ctx) error {
	segmentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || segmentID <= 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid segment id", "INVALID_SEGMENT_ID", nil)
	}

	req, err := h.mentorsRequest(c, []int64{segmentID})
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY_PARAMS", nil)
	}

	res, err := h.resolver.GetMentorsForSegments(h.createRequestContext(c, "/api/v1/segments/:id/mentors"), req)
	if err != nil {
		log.Println("Get segment mentors failed:", err)
		status, code := statusForError(err, "SEGMENT_MENTORS_FETCH_FAILED")
		return h.ErrorResponse(c, status, "Get segment mentors failed", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Segment mentors retrieved", res)
}

// GetSegmentMentorsCount returns the reachable-mentor count of one segment.
func (h *MentorHandler) GetSegmentMentorsCount(c fiber.Ctx) error {
	segmentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || segmentID <= 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid segment id", "INVALID_SEGMENT_ID", nil)
	}

	res, err := h.resolver.GetCountForSegment(h.createRequestContext(c, "/api/v1/segments/:id/mentors/count"), segmentID)
	if err != nil {
		log.Println("Get segment mentors count failed:", err)
		status, code := statusForError(err, "SEGMENT_COUNT_FAILED")
		return h.ErrorResponse(c, status, "Get segment mentors count failed", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Segment mentors count retrieved", res)
}

// GetSegmentsMentors returns the merged notification rows of a
// comma-separated segment id list.
func (h *MentorHandler) GetSegmentsMentors(c fiber.Ctx) error {
	segmentIDs, err := utils.ParseInt64List(c.Params("ids"))
	if err != nil || len(segmentIDs) == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid segment id list", "INVALID_SEGMENT_ID", nil)
	}

	req, err := h.mentorsRequest(c, segmentIDs)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY_PARAMS", nil)
	}

	res, err := h.resolver.GetMentorsForSegments(h.createRequestContext(c, "/api/v1/v2/segments/:ids/mentors"), req)
	if err != nil {
		log.Println("Get segments mentors failed:", err)
		status, code := statusForError(err, "SEGMENT_MENTORS_FETCH_FAILED")
		return h.ErrorResponse(c, status, "Get segments mentors failed", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Segments mentors retrieved", res)
}

// GetSegmentsMentorsCount returns per-segment counts and their sum for a
// comma-separated segment id list.
func (h *MentorHandler) GetSegmentsMentorsCount(c fiber.Ctx) error {
	segmentIDs, err := utils.ParseInt64List(c.Params("ids"))
	if err != nil || len(segmentIDs) == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid segment id list", "INVALID_SEGMENT_ID", nil)
	}

	res, err := h.resolver.GetCountForSegments(h.createRequestContext(c, "/api/v1/v2/segments/:ids/mentors/count"), segmentIDs)
	if err != nil {
		log.Println("Get segments mentors count failed:", err)
		status, code := statusForError(err, "SEGMENT_COUNT_FAILED")
		return h.ErrorResponse(c, status, "Get segments mentors count failed", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Segments mentors count retrieved", res)
}

func (h *MentorHandler) mentorsRequest(c fiber.Ctx, segmentIDs []int64) (*dto.GetSegmentMentorsRequest, error) {
	req := &dto.GetSegmentMentorsRequest{
		SegmentIDs:  segmentIDs,
		Title:       c.Query("title"),
		Description: c.Query("description"),
		DeepLink:    c.Query("deepLink"),
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, errors.New("limit must be a non-negative integer")
		}
		req.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return nil, errors.New("offset must be a non-negative integer")
		}
		req.Offset = offset
	}
	return req, nil
}

func (h *MentorHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *MentorHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
