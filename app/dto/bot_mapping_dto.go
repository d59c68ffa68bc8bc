package dto

import "time"

// CreateBotMappingRequest maps one bot onto one segment. Idempotent:
// resubmitting the same pair updates rather than duplicates.
type CreateBotMappingRequest struct {
	SegmentID int64  `json:"segment_id" validate:"required,gt=0"`
	BotID     string `json:"bot_id" validate:"required,uuid4"`
}

// BotMappingItem is the wire form of a segment-bot mapping row.
type BotMappingItem struct {
	ID        int64     `json:"id"`
	SegmentID int64     `json:"segment_id"`
	BotID     string    `json:"bot_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBotMappingBatchRequest fans one bot id out across a
// comma-separated segment id list. Unlike the single-mapping path these
// are plain inserts: any already-existing pair fails the whole batch
// with a constraint violation.
type CreateBotMappingBatchRequest struct {
	SegmentIDs string `json:"segment_id" validate:"required"`
	BotID      string `json:"bot_id" validate:"required,uuid4"`
}

type CreateBotMappingBatchResponse struct {
	Count int64 `json:"count"`
}

// DeleteBotMappingsRequest removes every mapping of the listed bot ids,
// across all segments. Unknown ids are not an error.
type DeleteBotMappingsRequest struct {
	BotIDs []string `json:"bot_ids" validate:"required,min=1,dive,uuid4"`
}

type DeleteBotMappingsResponse struct {
	AffectedRows int64 `json:"affected_rows"`
}
