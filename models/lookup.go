package models

// ActorTeacher is the distinguished actor kind whose audience can be
// narrowed by school membership in addition to district/block.
const ActorTeacher int32 = 3

// Actor is a mentor role kind (teacher, officer, ...).
// Table: actors
type Actor struct {
	ID   int32  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex:uk_actors_name" json:"name"`
}

func (Actor) TableName() string { return "actors" }

// District is an administrative region mentors belong to.
// Table: districts
type District struct {
	ID   int32  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
}

func (District) TableName() string { return "districts" }

// Block is a sub-division of a district.
// Table: blocks
type Block struct {
	ID         int32  `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:255;not null" json:"name"`
	DistrictID int32  `gorm:"not null;index:idx_blocks_district_id" json:"district_id"`
}

func (Block) TableName() string { return "blocks" }

// School is identified by its UDISE code rather than a numeric id.
// Table: school_list
type School struct {
	Udise      string `gorm:"primaryKey;size:32" json:"udise"`
	Name       string `gorm:"size:255;not null" json:"name"`
	DistrictID int32  `gorm:"not null;index:idx_school_list_district_id" json:"district_id"`
	BlockID    *int32 `gorm:"index:idx_school_list_block_id" json:"block_id,omitempty"`
}

func (School) TableName() string { return "school_list" }

// TeacherSchool links a teacher mentor to a school. Teachers are matched
// to schools through this relation, not through mentor columns.
// Table: teacher_schools
type TeacherSchool struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	MentorID    int64  `gorm:"not null;index:idx_teacher_schools_mentor_id" json:"mentor_id"`
	SchoolUdise string `gorm:"size:32;not null;index:idx_teacher_schools_school_udise" json:"school_udise"`
}

func (TeacherSchool) TableName() string { return "teacher_schools" }

// LookupOption is an id/label pair returned by the filter lookup reads.
type LookupOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// SchoolOption is a lookup pair for schools, keyed by UDISE code.
type SchoolOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
