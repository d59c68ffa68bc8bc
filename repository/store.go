package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreGateway is the direct-store variant of Gateway, issuing structured
// queries straight against the relational store.
type StoreGateway struct {
	db *gorm.DB
	// membershipBatch sizes the membership bulk-insert batches.
	membershipBatch int
}

// NewStoreGateway creates the direct-store gateway variant.
// membershipBatch falls back to 100 when not positive.
func NewStoreGateway(db *gorm.DB, membershipBatch int) Gateway {
	if membershipBatch <= 0 {
		membershipBatch = 100
	}
	return &StoreGateway{db: db, membershipBatch: membershipBatch}
}

// getDB returns the appropriate database connection (with or without transaction)
func (g *StoreGateway) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return g.db.WithContext(ctx)
}

// applyMentorPredicate translates a normalized predicate into query
// clauses. Unconstrained dimensions contribute nothing.
func applyMentorPredicate(query *gorm.DB, pred models.MentorPredicate) *gorm.DB {
	if len(pred.SegmentIDs) > 0 {
		query = query.Where("mentors.id IN (SELECT mentor_id FROM mentor_segments WHERE segment_id IN ?)", pred.SegmentIDs)
	}
	if len(pred.PhoneNumbers) > 0 {
		query = query.Where("mentors.phone_no IN ?", pred.PhoneNumbers)
	}
	if pred.Actors.Constrained() {
		query = query.Where("mentors.actor_id IN ?", pred.Actors.Values())
	}
	if pred.Districts.Constrained() {
		query = query.Where("mentors.district_id IN ?", pred.Districts.Values())
	}
	if pred.Blocks.Constrained() {
		query = query.Where("mentors.block_id IN ?", pred.Blocks.Values())
	}
	if pred.Schools.Constrained() {
		query = query.Where("mentors.id IN (SELECT mentor_id FROM teacher_schools WHERE school_udise IN ?)", pred.Schools.Values())
	}
	if pred.RequireToken {
		query = query.Where("mentors.id IN (SELECT mentor_id FROM mentor_tokens WHERE token <> '')")
	}
	return query
}

// QueryMentors returns mentors matching the predicate, ascending by id.
func (g *StoreGateway) QueryMentors(ctx context.Context, pred models.MentorPredicate, limit, offset int) ([]*models.Mentor, error) {
	db := g.getDB(ctx)
	query := applyMentorPredicate(db.Model(&models.Mentor{}), pred).
		Order("mentors.id ASC").
		Preload("Token")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var mentors []*models.Mentor
	if err := query.Find(&mentors).Error; err != nil {
		return nil, classifyStoreError("query mentors", err)
	}
	return mentors, nil
}

// CountMentors returns the number of mentors matching the predicate.
func (g *StoreGateway) CountMentors(ctx context.Context, pred models.MentorPredicate) (int64, error) {
	db := g.getDB(ctx)
	query := applyMentorPredicate(db.Model(&models.Mentor{}), pred)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, classifyStoreError("count mentors", err)
	}
	return count, nil
}

// CreateSegment inserts a new segment row.
func (g *StoreGateway) CreateSegment(ctx context.Context, name, description string) (*models.Segment, error) {
	db := g.getDB(ctx)

	segment := &models.Segment{
		Name:        name,
		Description: description,
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}
	if err := db.Create(segment).Error; err != nil {
		return nil, classifyStoreError("create segment", err)
	}
	return segment, nil
}

// ListSegments returns all segments, ascending by id.
func (g *StoreGateway) ListSegments(ctx context.Context) ([]*models.Segment, error) {
	db := g.getDB(ctx)

	var segments []*models.Segment
	if err := db.Order("id ASC").Find(&segments).Error; err != nil {
		return nil, classifyStoreError("list segments", err)
	}
	return segments, nil
}

// CreateMemberships bulk-inserts mentor-segment rows.
func (g *StoreGateway) CreateMemberships(ctx context.Context, rows []*models.MentorSegment) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	db := g.getDB(ctx)

	res := db.CreateInBatches(rows, g.membershipBatch)
	if res.Error != nil {
		return 0, classifyStoreError("create memberships", res.Error)
	}
	return res.RowsAffected, nil
}

// UpsertSegmentBot inserts or updates the mapping keyed by
// (segment_id, bot_id) and returns the resulting row.
func (g *StoreGateway) UpsertSegmentBot(ctx context.Context, segmentID int64, botID uuid.UUID) (*models.SegmentBot, error) {
	db := g.getDB(ctx)

	row := &models.SegmentBot{
		SegmentID: segmentID,
		BotID:     botID,
		CreatedAt: utils.UTCNow(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "segment_id"}, {Name: "bot_id"}},
		DoUpdates: clause.Assignments(map[string]any{"bot_id": botID}),
	}).Create(row).Error
	if err != nil {
		return nil, classifyStoreError("upsert segment bot", err)
	}

	// Re-read so the caller observes the stored row id even when the
	// insert hit the conflict path.
	var stored models.SegmentBot
	if err := db.Where("segment_id = ? AND bot_id = ?", segmentID, botID).Take(&stored).Error; err != nil {
		return nil, classifyStoreError("upsert segment bot", err)
	}
	return &stored, nil
}

// InsertSegmentBots plain-inserts mapping rows. A duplicate pair fails
// the whole batch.
func (g *StoreGateway) InsertSegmentBots(ctx context.Context, rows []*models.SegmentBot) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	db := g.getDB(ctx)

	res := db.Create(rows)
	if res.Error != nil {
		return 0, classifyStoreError("insert segment bots", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteSegmentBots removes every mapping whose bot id is in the set.
func (g *StoreGateway) DeleteSegmentBots(ctx context.Context, botIDs []uuid.UUID) (int64, error) {
	if len(botIDs) == 0 {
		return 0, nil
	}
	db := g.getDB(ctx)

	res := db.Where("bot_id IN ?", botIDs).Delete(&models.SegmentBot{})
	if res.Error != nil {
		return 0, classifyStoreError("delete segment bots", res.Error)
	}
	return res.RowsAffected, nil
}

// ListActors returns all actors as lookup options.
func (g *StoreGateway) ListActors(ctx context.Context) ([]models.LookupOption, error) {
	db := g.getDB(ctx)

	var actors []*models.Actor
	if err := db.Order("id ASC").Find(&actors).Error; err != nil {
		return nil, classifyStoreError("list actors", err)
	}

	options := make([]models.LookupOption, 0, len(actors))
	for _, a := range actors {
		options = append(options, models.LookupOption{ID: int64(a.ID), Label: a.Name})
	}
	return options, nil
}

// ListDistrictsByActors returns the distinct districts reachable by
// mentors of the given actor kinds.
func (g *StoreGateway) ListDistrictsByActors(ctx context.Context, actorIDs []int32) ([]models.LookupOption, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}
	db := g.getDB(ctx)

	var rows []models.LookupOption
	err := db.Model(&models.Mentor{}).
		Distinct("districts.id AS id, districts.name AS label").
		Joins("JOIN districts ON districts.id = mentors.district_id").
		Where("mentors.actor_id IN ?", actorIDs).
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, classifyStoreError("list districts by actors", err)
	}
	return rows, nil
}

// ListBlocksByDistricts returns the blocks in the given districts.
func (g *StoreGateway) ListBlocksByDistricts(ctx context.Context, districtIDs []int32) ([]models.LookupOption, error) {
	if len(districtIDs) == 0 {
		return nil, nil
	}
	db := g.getDB(ctx)

	var blocks []*models.Block
	if err := db.Where("district_id IN ?", districtIDs).Order("id ASC").Find(&blocks).Error; err != nil {
		return nil, classifyStoreError("list blocks by districts", err)
	}

	options := make([]models.LookupOption, 0, len(blocks))
	for _, b := range blocks {
		options = append(options, models.LookupOption{ID: int64(b.ID), Label: b.Name})
	}
	return options, nil
}

// ListSchools returns schools constrained by district and block only when
// the respective id list is non-empty.
func (g *StoreGateway) ListSchools(ctx context.Context, districtIDs, blockIDs []int32) ([]models.SchoolOption, error) {
	db := g.getDB(ctx)
	query := db.Model(&models.School{})
	if len(districtIDs) > 0 {
		query = query.Where("district_id IN ?", districtIDs)
	}
	if len(blockIDs) > 0 {
		query = query.Where("block_id IN ?", blockIDs)
	}

	var schools []*models.School
	if err := query.Order("udise ASC").Find(&schools).Error; err != nil {
		return nil, classifyStoreError("list schools", err)
	}

	options := make([]models.SchoolOption, 0, len(schools))
	for _, s := range schools {
		options = append(options, models.SchoolOption{ID: s.Udise, Label: s.Name})
	}
	return options, nil
}
