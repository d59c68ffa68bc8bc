package dto

// GetSegmentMentorsRequest asks for the notification payload rows of one
// or many segments. Title, description and deep link are broadcast onto
// every row; they are campaign constants, not per-mentor data.
type GetSegmentMentorsRequest struct {
	SegmentIDs  []int64 `json:"segment_ids" validate:"required,min=1"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DeepLink    string  `json:"deep_link"`
	Limit       int     `json:"limit" validate:"omitempty,gte=0"`
	Offset      int     `json:"offset" validate:"omitempty,gte=0"`
}

// MentorNotificationItem is one push-notification payload row.
type MentorNotificationItem struct {
	FCMToken          string `json:"fcmToken"`
	PhoneNo           string `json:"phoneNo"`
	Name              string `json:"name"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	FCMClickActionURL string `json:"fcmClickActionUrl"`
}

type GetSegmentMentorsResponse struct {
	Data []MentorNotificationItem `json:"data"`
}

// SegmentCountResponse reports the reachable-mentor count of a single
// segment.
type SegmentCountResponse struct {
	TotalCount int64 `json:"totalCount"`
}

// SegmentsCountResponse reports per-segment counts keyed by the
// stringified segment id plus their exact sum. Mentors in two segments
// are counted twice.
type SegmentsCountResponse struct {
	TotalCount int64            `json:"totalCount"`
	PerSegment map[string]int64 `json:"segment_id"`
}
