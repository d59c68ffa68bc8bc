package businessflow

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vidyaloop/segment-service/app/dto"
	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/repository"
)

// BotMappingFlow manages segment-to-bot associations.
type BotMappingFlow interface {
	Create(ctx context.Context, req *dto.CreateBotMappingRequest) (*dto.BotMappingItem, error)
	CreateBatch(ctx context.Context, req *dto.CreateBotMappingBatchRequest) (*dto.CreateBotMappingBatchResponse, error)
	Delete(ctx context.Context, req *dto.DeleteBotMappingsRequest) (*dto.DeleteBotMappingsResponse, error)
}

type BotMappingFlowImpl struct {
	gateway repository.Gateway
}

func NewBotMappingFlow(gateway repository.Gateway) BotMappingFlow {
	return &BotMappingFlowImpl{gateway: gateway}
}

// Create upserts one mapping keyed by (segment_id, bot_id). Re-invoking
// with the same pair is a no-op write returning the stored row.
func (f *BotMappingFlowImpl) Create(ctx context.Context, req *dto.CreateBotMappingRequest) (*dto.BotMappingItem, error) {
	botID, err := uuid.Parse(req.BotID)
	if err != nil {
		return nil, NewBusinessError("BOT_MAPPING_INVALID_BOT_ID", "Bot id must be a UUID", ErrInvalidBotID)
	}

	row, err := f.gateway.UpsertSegmentBot(ctx, req.SegmentID, botID)
	if err != nil {
		log.Printf("Error creating segment bot mapping: %v", err)
		return nil, NewBusinessError("BOT_MAPPING_CREATE_FAILED", "Failed to create segment bot mapping", err)
	}

	item := toBotMappingItem(row)
	return &item, nil
}

// CreateBatch fans one bot id out across a comma-separated segment id
// list as plain inserts. A duplicate (segment, bot) pair anywhere in the
// batch fails the whole call with a constraint violation; this is the
// documented batch-path behavior, intentionally different from the
// idempotent single-mapping path.
func (f *BotMappingFlowImpl) CreateBatch(ctx context.Context, req *dto.CreateBotMappingBatchRequest) (*dto.CreateBotMappingBatchResponse, error) {
	botID, err := uuid.Parse(req.BotID)
	if err != nil {
		return nil, NewBusinessError("BOT_MAPPING_INVALID_BOT_ID", "Bot id must be a UUID", ErrInvalidBotID)
	}

	rows, err := parseSegmentBotRows(req.SegmentIDs, botID)
	if err != nil {
		return nil, NewBusinessError("BOT_MAPPING_INVALID_SEGMENT_ID", "Segment ids must be a comma-separated integer list", err)
	}
	if len(rows) == 0 {
		return nil, NewBusinessError("BOT_MAPPING_INVALID_SEGMENT_ID", "At least one segment id is required", ErrSegmentIDsRequired)
	}

	count, err := f.gateway.InsertSegmentBots(ctx, rows)
	if err != nil {
		log.Printf("Error creating segment bot mapping batch: %v", err)
		return nil, NewBusinessError("BOT_MAPPING_BATCH_FAILED", "Failed to create segment bot mappings", err)
	}

	return &dto.CreateBotMappingBatchResponse{Count: count}, nil
}

// Delete removes every mapping of the listed bot ids across all
// segments. Deleting a non-existent bot id is not an error; it simply
// does not contribute to the affected-row count.
func (f *BotMappingFlowImpl) Delete(ctx context.Context, req *dto.DeleteBotMappingsRequest) (*dto.DeleteBotMappingsResponse, error) {
	if len(req.BotIDs) == 0 {
		return nil, NewBusinessError("BOT_MAPPING_IDS_REQUIRED", "At least one bot id is required", ErrBotIDsRequired)
	}

	botIDs := make([]uuid.UUID, 0, len(req.BotIDs))
	for _, raw := range req.BotIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, NewBusinessError("BOT_MAPPING_INVALID_BOT_ID", "Bot ids must be UUIDs", ErrInvalidBotID)
		}
		botIDs = append(botIDs, id)
	}

	affected, err := f.gateway.DeleteSegmentBots(ctx, botIDs)
	if err != nil {
		log.Printf("Error deleting segment bot mappings: %v", err)
		return nil, NewBusinessError("BOT_MAPPING_DELETE_FAILED", "Failed to delete segment bot mappings", err)
	}

	return &dto.DeleteBotMappingsResponse{AffectedRows: affected}, nil
}

func parseSegmentBotRows(segmentIDs string, botID uuid.UUID) ([]*models.SegmentBot, error) {
	parts := strings.Split(segmentIDs, ",")
	rows := make([]*models.SegmentBot, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, ErrInvalidSegmentID
		}
		rows = append(rows, &models.SegmentBot{SegmentID: id, BotID: botID})
	}
	return rows, nil
}

func toBotMappingItem(row *models.SegmentBot) dto.BotMappingItem {
	return dto.BotMappingItem{
		ID:        row.ID,
		SegmentID: row.SegmentID,
		BotID:     row.BotID.String(),
		CreatedAt: row.CreatedAt,
	}
}
