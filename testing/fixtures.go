package testing

import (
	"fmt"

	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/utils"
)

// SeedLookupData inserts a small actor/district/block/school hierarchy
// used by the lookup and filter tests.
func (tdb *TestDB) SeedLookupData() error {
	actors := []*models.Actor{
		{ID: 1, Name: "Officer"},
		{ID: 2, Name: "Coordinator"},
		{ID: models.ActorTeacher, Name: "Teacher"},
	}
	for _, a := range actors {
		if err := tdb.DB.Create(a).Error; err != nil {
			return fmt.Errorf("failed to insert actor %s: %w", a.Name, err)
		}
	}

	districts := []*models.District{
		{ID: 10, Name: "North District"},
		{ID: 20, Name: "South District"},
	}
	for _, d := range districts {
		if err := tdb.DB.Create(d).Error; err != nil {
			return fmt.Errorf("failed to insert district %s: %w", d.Name, err)
		}
	}

	blocks := []*models.Block{
		{ID: 101, Name: "North Block A", DistrictID: 10},
		{ID: 102, Name: "North Block B", DistrictID: 10},
		{ID: 201, Name: "South Block A", DistrictID: 20},
	}
	for _, b := range blocks {
		if err := tdb.DB.Create(b).Error; err != nil {
			return fmt.Errorf("failed to insert block %s: %w", b.Name, err)
		}
	}

	schools := []*models.School{
		{Udise: "UD1001", Name: "North Primary", DistrictID: 10, BlockID: utils.ToPtr(int32(101))},
		{Udise: "UD1002", Name: "North Secondary", DistrictID: 10, BlockID: utils.ToPtr(int32(102))},
		{Udise: "UD2001", Name: "South Primary", DistrictID: 20, BlockID: utils.ToPtr(int32(201))},
	}
	for _, s := range schools {
		if err := tdb.DB.Create(s).Error; err != nil {
			return fmt.Errorf("failed to insert school %s: %w", s.Name, err)
		}
	}

	return nil
}

// CreateTestMentor inserts a mentor, optionally with an FCM token row.
// An empty token leaves the mentor without a token relation.
func (tdb *TestDB) CreateTestMentor(id int64, phone, name string, actorID, districtID int32, token string) (*models.Mentor, error) {
	mentor := &models.Mentor{
		ID:          id,
		PhoneNo:     phone,
		OfficerName: name,
		ActorID:     actorID,
		DistrictID:  districtID,
	}
	if err := tdb.DB.Create(mentor).Error; err != nil {
		return nil, fmt.Errorf("failed to insert mentor %s: %w", phone, err)
	}

	if token != "" {
		tokenRow := &models.MentorToken{MentorID: id, Token: token}
		if err := tdb.DB.Create(tokenRow).Error; err != nil {
			return nil, fmt.Errorf("failed to insert mentor token for %s: %w", phone, err)
		}
		mentor.Token = tokenRow
	}

	return mentor, nil
}

// CreateTestSegment inserts a segment row.
func (tdb *TestDB) CreateTestSegment(name, description string) (*models.Segment, error) {
	segment := &models.Segment{
		Name:        name,
		Description: description,
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}
	if err := tdb.DB.Create(segment).Error; err != nil {
		return nil, fmt.Errorf("failed to insert segment %s: %w", name, err)
	}
	return segment, nil
}

// AddMentorToSegment inserts a membership row.
func (tdb *TestDB) AddMentorToSegment(mentorID, segmentID int64) error {
	membership := &models.MentorSegment{
		MentorID:  mentorID,
		SegmentID: segmentID,
		CreatedAt: utils.UTCNow(),
	}
	if err := tdb.DB.Create(membership).Error; err != nil {
		return fmt.Errorf("failed to insert membership mentor=%d segment=%d: %w", mentorID, segmentID, err)
	}
	return nil
}

// LinkTeacherToSchool inserts a teacher-school relation row.
func (tdb *TestDB) LinkTeacherToSchool(mentorID int64, udise string) error {
	link := &models.TeacherSchool{
		MentorID:    mentorID,
		SchoolUdise: udise,
	}
	if err := tdb.DB.Create(link).Error; err != nil {
		return fmt.Errorf("failed to link mentor %d to school %s: %w", mentorID, udise, err)
	}
	return nil
}
