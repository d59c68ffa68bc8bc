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

type BotMappingHandlerInterface interface {
	Create(c fiber.Ctx) error
	CreateBatch(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// BotMappingHandler serves the segment-bot mapping endpoints.
type BotMappingHandler struct {
	botMappingFlow businessflow.BotMappingFlow
	validator      *validator.Validate
}

func NewBotMappingHandler(botMappingFlow businessflow.BotMappingFlow) BotMappingHandlerInterface {
	return &BotMappingHandler{
		botMappingFlow: botMappingFlow,
		validator:      validator.New(),
	}
}

func (h *BotMappingHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *BotMappingHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Create maps one bot onto one segment. Resubmitting the same pair is
// not an error.
func (h *BotMappingHandler) Create(c fiber.Ctx) error {
	var req dto.CreateBotMappingRequest
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

	result, err := h.botMappingFlow.Create(h.createRequestContext(c, "/api/v1/segment-bot-mapping"), &req)
	if err != nil {
		log.Println("Create bot mapping failed:", err)
		status, code := statusForError(err, "BOT_MAPPING_CREATE_FAILED")
		return h.ErrorResponse(c, status, "Create bot mapping failed", code, nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Bot mapping created successfully", result)
}

// CreateBatch fans one bot id out across a comma-separated segment id
// list with plain inserts. An existing pair fails the whole batch.
func (h *BotMappingHandler) CreateBatch(c fiber.Ctx) error {
	var req dto.CreateBotMappingBatchRequest
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

	result, err := h.botMappingFlow.CreateBatch(h.createRequestContext(c, "/api/v1/v2/segment-bot-mapping"), &req)
	if err != nil {
		log.Println("Create bot mappings failed:", err)
		status, code := statusForError(err, "BOT_MAPPING_BATCH_FAILED")
		return h.ErrorResponse(c, status, "Create bot mappings failed", code, nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Bot mappings created successfully", result)
}

// Delete removes every mapping of the listed bot ids across all
// segments and reports the affected row count.
func (h *BotMappingHandler) Delete(c fiber.Ctx) error {
	var req dto.DeleteBotMappingsRequest
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

	result, err := h.botMappingFlow.Delete(h.createRequestContext(c, "/api/v1/segment-bot-mapping"), &req)
	if err != nil {
		log.Println("Delete bot mappings failed:", err)
		status, code := statusForError(err, "BOT_MAPPING_DELETE_FAILED")
		return h.ErrorResponse(c, status, "Delete bot mappings failed", code, nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Bot mappings deleted successfully", result)
}

func (h *BotMappingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *BotMappingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
