package businessflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/repository"
	"github.com/vidyaloop/segment-service/utils"
)

// fakeGateway is an in-memory Gateway used by the flow tests. It stores
// rows in slices and evaluates predicates the way the real backends do,
// including ordering and the reachable-mentor token rule.
type fakeGateway struct {
	mu sync.Mutex

	mentors        []*models.Mentor
	segments       []*models.Segment
	memberships    []*models.MentorSegment
	segmentBots    []*models.SegmentBot
	actors         []models.LookupOption
	districts      []models.LookupOption
	blocks         []models.LookupOption
	schools        []models.SchoolOption
	teacherSchools map[int64][]string

	districtsQueriedWith []int32
	blocksQueriedWith    []int32
	schoolsQueriedWith   []int32
	lastQueryLimit       int

	nextSegmentID    int64
	nextMembershipID int64
	nextSegmentBotID int64

	// forced errors per operation
	queryErr  error
	countErr  error
	createErr error
	memberErr error
	botErr    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		teacherSchools:   make(map[int64][]string),
		nextSegmentID:    1,
		nextMembershipID: 1,
		nextSegmentBotID: 1,
	}
}

var _ repository.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) addMentor(m *models.Mentor, segmentIDs ...int64) {
	g.mentors = append(g.mentors, m)
	for _, sid := range segmentIDs {
		g.memberships = append(g.memberships, &models.MentorSegment{
			ID:        g.nextMembershipID,
			MentorID:  m.ID,
			SegmentID: sid,
		})
		g.nextMembershipID++
	}
}

func (g *fakeGateway) matches(m *models.Mentor, pred models.MentorPredicate) bool {
	if len(pred.SegmentIDs) > 0 {
		found := false
		for _, ms := range g.memberships {
			if ms.MentorID != m.ID {
				continue
			}
			for _, sid := range pred.SegmentIDs {
				if ms.SegmentID == sid {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if len(pred.PhoneNumbers) > 0 {
		found := false
		for _, p := range pred.PhoneNumbers {
			if m.PhoneNo == p {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if pred.Actors.Constrained() && !containsInt32(pred.Actors.Values(), m.ActorID) {
		return false
	}
	if pred.Districts.Constrained() && !containsInt32(pred.Districts.Values(), m.DistrictID) {
		return false
	}
	if pred.Blocks.Constrained() {
		if m.BlockID == nil || !containsInt32(pred.Blocks.Values(), *m.BlockID) {
			return false
		}
	}
	if pred.Schools.Constrained() {
		found := false
		for _, udise := range g.teacherSchools[m.ID] {
			for _, want := range pred.Schools.Values() {
				if udise == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if pred.RequireToken && m.FCMToken() == "" {
		return false
	}
	return true
}

func containsInt32(ids []int32, id int32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (g *fakeGateway) QueryMentors(ctx context.Context, pred models.MentorPredicate, limit, offset int) ([]*models.Mentor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastQueryLimit = limit
	if g.queryErr != nil {
		return nil, g.queryErr
	}

	var out []*models.Mentor
	for _, m := range g.mentors {
		if g.matches(m, pred) {
			out = append(out, m)
		}
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *fakeGateway) CountMentors(ctx context.Context, pred models.MentorPredicate) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.countErr != nil {
		return 0, g.countErr
	}

	var count int64
	for _, m := range g.mentors {
		if g.matches(m, pred) {
			count++
		}
	}
	return count, nil
}

func (g *fakeGateway) CreateSegment(ctx context.Context, name, description string) (*models.Segment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}

	segment := &models.Segment{
		ID:          g.nextSegmentID,
		Name:        name,
		Description: description,
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}
	g.nextSegmentID++
	g.segments = append(g.segments, segment)
	return segment, nil
}

func (g *fakeGateway) ListSegments(ctx context.Context) ([]*models.Segment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*models.Segment(nil), g.segments...), nil
}

func (g *fakeGateway) CreateMemberships(ctx context.Context, rows []*models.MentorSegment) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.memberErr != nil {
		return 0, g.memberErr
	}

	for _, row := range rows {
		row.ID = g.nextMembershipID
		g.nextMembershipID++
		g.memberships = append(g.memberships, row)
	}
	return int64(len(rows)), nil
}

func (g *fakeGateway) UpsertSegmentBot(ctx context.Context, segmentID int64, botID uuid.UUID) (*models.SegmentBot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.botErr != nil {
		return nil, g.botErr
	}

	for _, row := range g.segmentBots {
		if row.SegmentID == segmentID && row.BotID == botID {
			return row, nil
		}
	}
	row := &models.SegmentBot{
		ID:        g.nextSegmentBotID,
		SegmentID: segmentID,
		BotID:     botID,
		CreatedAt: utils.UTCNow(),
	}
	g.nextSegmentBotID++
	g.segmentBots = append(g.segmentBots, row)
	return row, nil
}

func (g *fakeGateway) InsertSegmentBots(ctx context.Context, rows []*models.SegmentBot) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.botErr != nil {
		return 0, g.botErr
	}

	// Plain inserts: a duplicate pair fails the whole batch, like the
	// unique index does in the relational store.
	for _, row := range rows {
		for _, existing := range g.segmentBots {
			if existing.SegmentID == row.SegmentID && existing.BotID == row.BotID {
				return 0, repository.ErrConstraintViolation
			}
		}
	}
	for _, row := range rows {
		row.ID = g.nextSegmentBotID
		g.nextSegmentBotID++
		row.CreatedAt = utils.UTCNow()
		g.segmentBots = append(g.segmentBots, row)
	}
	return int64(len(rows)), nil
}

func (g *fakeGateway) DeleteSegmentBots(ctx context.Context, botIDs []uuid.UUID) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.botErr != nil {
		return 0, g.botErr
	}

	var kept []*models.SegmentBot
	var removed int64
	for _, row := range g.segmentBots {
		match := false
		for _, id := range botIDs {
			if row.BotID == id {
				match = true
			}
		}
		if match {
			removed++
		} else {
			kept = append(kept, row)
		}
	}
	g.segmentBots = kept
	return removed, nil
}

func (g *fakeGateway) ListActors(ctx context.Context) ([]models.LookupOption, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.LookupOption(nil), g.actors...), nil
}

func (g *fakeGateway) ListDistrictsByActors(ctx context.Context, actorIDs []int32) ([]models.LookupOption, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.districtsQueriedWith = append([]int32(nil), actorIDs...)
	return append([]models.LookupOption(nil), g.districts...), nil
}

func (g *fakeGateway) ListBlocksByDistricts(ctx context.Context, districtIDs []int32) ([]models.LookupOption, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blocksQueriedWith = append([]int32(nil), districtIDs...)
	return append([]models.LookupOption(nil), g.blocks...), nil
}

func (g *fakeGateway) ListSchools(ctx context.Context, districtIDs, blockIDs []int32) ([]models.SchoolOption, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.schoolsQueriedWith = append(append([]int32(nil), districtIDs...), blockIDs...)
	return append([]models.SchoolOption(nil), g.schools...), nil
}
