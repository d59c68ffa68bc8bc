package businessflow

import (
	"context"
	"log"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vidyaloop/segment-service/app/dto"
	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/repository"
	"github.com/vidyaloop/segment-service/utils"
)

// MentorResolverFlow executes predicates against the backend gateway and
// produces notification payload lists or counts.
type MentorResolverFlow interface {
	GetMentorsForSegments(ctx context.Context, req *dto.GetSegmentMentorsRequest) (*dto.GetSegmentMentorsResponse, error)
	GetCountForSegment(ctx context.Context, segmentID int64) (*dto.SegmentCountResponse, error)
	GetCountForSegments(ctx context.Context, segmentIDs []int64) (*dto.SegmentsCountResponse, error)
	// ResolveMentors runs compiled predicate branches in order and
	// concatenates their results without deduplication.
	ResolveMentors(ctx context.Context, preds []models.MentorPredicate) ([]*models.Mentor, error)
}

type MentorResolverFlowImpl struct {
	gateway repository.Gateway
	// fanout bounds concurrent per-segment sub-queries in the
	// multi-segment count.
	fanout int
	// defaultLimit caps a mentor query when the request carries no limit.
	defaultLimit int
}

func NewMentorResolverFlow(gateway repository.Gateway, fanout, defaultLimit int) MentorResolverFlow {
	if fanout <= 0 {
		fanout = 4
	}
	if defaultLimit <= 0 {
		defaultLimit = utils.DefaultResolveLimit
	}
	return &MentorResolverFlowImpl{gateway: gateway, fanout: fanout, defaultLimit: defaultLimit}
}

// GetMentorsForSegments returns the notification payload rows for every
// reachable mentor in any of the requested segments, ascending by mentor
// id with limit/offset applied.
func (f *MentorResolverFlowImpl) GetMentorsForSegments(ctx context.Context, req *dto.GetSegmentMentorsRequest) (*dto.GetSegmentMentorsResponse, error) {
	if len(req.SegmentIDs) == 0 {
		return nil, NewBusinessError("SEGMENT_MENTORS_INVALID_SELECTION", "No segment ids supplied", ErrSegmentIDsRequired)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = f.defaultLimit
	}

	pred := models.SegmentPredicate(req.SegmentIDs...)
	mentors, err := f.gateway.QueryMentors(ctx, pred, limit, req.Offset)
	if err != nil {
		log.Printf("Error fetching mentors for segments: %v", err)
		return nil, NewBusinessError("SEGMENT_MENTORS_FETCH_FAILED", "Failed to fetch mentors for segments", err)
	}

	items := make([]dto.MentorNotificationItem, 0, len(mentors))
	for _, m := range mentors {
		token := m.FCMToken()
		if token == "" {
			// The gateway already filters unreachable mentors; a missing
			// token relation here still means unreachable, never an error.
			continue
		}
		items = append(items, dto.MentorNotificationItem{
			FCMToken:          token,
			PhoneNo:           m.PhoneNo,
			Name:              m.OfficerName,
			Title:             req.Title,
			Description:       req.Description,
			FCMClickActionURL: req.DeepLink,
		})
	}

	return &dto.GetSegmentMentorsResponse{Data: items}, nil
}

// GetCountForSegment returns the reachable-mentor count of one segment.
func (f *MentorResolverFlowImpl) GetCountForSegment(ctx context.Context, segmentID int64) (*dto.SegmentCountResponse, error) {
	count, err := f.gateway.CountMentors(ctx, models.SegmentPredicate(segmentID))
	if err != nil {
		log.Printf("Error fetching count for segment %d: %v", segmentID, err)
		return nil, NewBusinessError("SEGMENT_COUNT_FAILED", "Failed to fetch count for segment", err)
	}
	return &dto.SegmentCountResponse{TotalCount: count}, nil
}

// GetCountForSegments fans one count out per segment id. Sub-counts are
// independent; the total is their exact sum with no deduplication across
// segments, and the per-id map is keyed by the stringified id.
func (f *MentorResolverFlowImpl) GetCountForSegments(ctx context.Context, segmentIDs []int64) (*dto.SegmentsCountResponse, error) {
	if len(segmentIDs) == 0 {
		return nil, NewBusinessError("SEGMENT_COUNT_INVALID_SELECTION", "No segment ids supplied", ErrSegmentIDsRequired)
	}

	var mu sync.Mutex
	var total int64
	perSegment := make(map[string]int64, len(segmentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.fanout)
	for _, segmentID := range segmentIDs {
		g.Go(func() error {
			count, err := f.gateway.CountMentors(gctx, models.SegmentPredicate(segmentID))
			if err != nil {
				return err
			}
			mu.Lock()
			// The total counts every requested id, so a repeated id
			// contributes each time even though the map collapses it to
			// one key.
			total += count
			perSegment[strconv.FormatInt(segmentID, 10)] = count
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Error fetching counts for segments: %v", err)
		return nil, NewBusinessError("SEGMENT_COUNT_FAILED", "Failed to fetch counts for segments", err)
	}

	return &dto.SegmentsCountResponse{TotalCount: total, PerSegment: perSegment}, nil
}

// ResolveMentors evaluates each predicate branch and concatenates the
// result sets in branch order.
func (f *MentorResolverFlowImpl) ResolveMentors(ctx context.Context, preds []models.MentorPredicate) ([]*models.Mentor, error) {
	var mentors []*models.Mentor
	for _, pred := range preds {
		rows, err := f.gateway.QueryMentors(ctx, pred, 0, 0)
		if err != nil {
			log.Printf("Error resolving mentors: %v", err)
			return nil, NewBusinessError("MENTOR_RESOLVE_FAILED", "Failed to resolve mentors", err)
		}
		mentors = append(mentors, rows...)
	}
	return mentors, nil
}
