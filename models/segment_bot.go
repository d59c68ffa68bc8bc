package models

import (
	"time"

	"github.com/google/uuid"
)

// SegmentBot associates a segment with a notification bot. Bot ids are
// opaque UUIDs owned by the external bot registry.
// Table: segment_bots
// Unique on (segment_id, bot_id); the single-mapping path upserts on this
// key while the batch path plain-inserts and fails on duplicates.
type SegmentBot struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SegmentID int64     `gorm:"not null;uniqueIndex:uk_segment_bots_segment_bot" json:"segment_id"`
	BotID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_segment_bots_segment_bot;index:idx_segment_bots_bot_id" json:"bot_id"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (SegmentBot) TableName() string { return "segment_bots" }
