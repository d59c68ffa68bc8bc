package models

// Mentor is an end-user eligible to receive notifications. The entity is
// owned by an external system; this service only reads it.
// Table: mentors
type Mentor struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	PhoneNo     string `gorm:"size:20;not null;uniqueIndex:uk_mentors_phone_no" json:"phone_no"`
	OfficerName string `gorm:"size:255;not null" json:"officer_name"`
	ActorID     int32  `gorm:"not null;index:idx_mentors_actor_id" json:"actor_id"`
	DistrictID  int32  `gorm:"not null;index:idx_mentors_district_id" json:"district_id"`
	BlockID     *int32 `gorm:"index:idx_mentors_block_id" json:"block_id,omitempty"`

	Token *MentorToken `gorm:"foreignKey:MentorID" json:"token,omitempty"`
}

func (Mentor) TableName() string { return "mentors" }

// FCMToken returns the mentor's notification token, or "" when the token
// relation is missing. A missing relation and an empty token are
// equivalent: both mean the mentor is unreachable.
func (m *Mentor) FCMToken() string {
	if m.Token == nil {
		return ""
	}
	return m.Token.Token
}

// MentorToken holds the FCM token for a mentor, one-to-one with Mentor.
// A mentor is reachable iff this row exists and the token is non-empty.
// Table: mentor_tokens
type MentorToken struct {
	MentorID int64  `gorm:"primaryKey" json:"mentor_id"`
	Token    string `gorm:"type:text;not null" json:"token"`
}

func (MentorToken) TableName() string { return "mentor_tokens" }
