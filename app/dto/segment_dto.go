package dto

import "time"

// SegmentItem is the wire form of a segment row.
type SegmentItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListSegmentsResponse struct {
	Items []SegmentItem `json:"items"`
}

// CreateSegmentFromPhonesRequest creates a segment and maps every mentor
// whose phone number appears in the list. Numbers with no matching
// mentor are silently dropped.
type CreateSegmentFromPhonesRequest struct {
	SegmentName        string   `json:"segment_name" validate:"required,max=255"`
	SegmentDescription string   `json:"segment_description"`
	PhoneNumbers       []string `json:"phone_numbers" validate:"required,min=1"`
}

// MentorSegmentMapping echoes one created membership. Ids are
// stringified on the wire.
type MentorSegmentMapping struct {
	MentorID  string `json:"mentor_id"`
	SegmentID string `json:"segment_id"`
	PhoneNo   string `json:"phone_no"`
}

type CreateSegmentFromPhonesResponse struct {
	Count                    int64                  `json:"count"`
	Segment                  SegmentItem            `json:"segment"`
	MentorsMappedWithSegment []MentorSegmentMapping `json:"mentorsMappedWithSegment"`
}

// CreateSegmentFromFilterRequest creates a segment from a compound
// actor/district/block/school selection. Actors are required; the other
// dimensions accept the -1 sentinel meaning "no constraint".
type CreateSegmentFromFilterRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Actors      []int32  `json:"actors" validate:"required,min=1"`
	Districts   []int32  `json:"districts"`
	Blocks      []int32  `json:"blocks"`
	Schools     []string `json:"schools"`
}

type CreateSegmentFromFilterResponse struct {
	Segment SegmentItem `json:"segment"`
}
