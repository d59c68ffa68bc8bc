package models

import "time"

// Segment is a named, persisted audience group of mentors used for
// targeted notification campaigns.
// Table: segments
// Rows are created once and never mutated in place.
type Segment struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;index:idx_segments_name" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	CreatedAt   time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_segments_created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Segment) TableName() string { return "segments" }
