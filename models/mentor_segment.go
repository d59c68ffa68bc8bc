package models

import "time"

// MentorSegment maps a mentor into a segment, many-to-many.
// Table: mentor_segments
// Rows are bulk-created when a segment is built and never updated; this
// service defines no delete path for memberships.
type MentorSegment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	MentorID  int64     `gorm:"not null;index:idx_mentor_segments_mentor_id" json:"mentor_id"`
	SegmentID int64     `gorm:"not null;index:idx_mentor_segments_segment_id" json:"segment_id"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (MentorSegment) TableName() string { return "mentor_segments" }
