package businessflow

import (
	"context"
	"log"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vidyaloop/segment-service/app/dto"
	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/repository"
)

// SegmentFlow orchestrates segment creation and membership establishment.
// The two-step create flows are NOT transactional: a failure after
// segment creation leaves the segment without memberships, and the error
// is surfaced to the caller rather than hidden.
type SegmentFlow interface {
	ListSegments(ctx context.Context) (*dto.ListSegmentsResponse, error)
	CreateSegmentFromPhones(ctx context.Context, req *dto.CreateSegmentFromPhonesRequest) (*dto.CreateSegmentFromPhonesResponse, error)
	CreateSegmentFromFilter(ctx context.Context, req *dto.CreateSegmentFromFilterRequest) (*dto.CreateSegmentFromFilterResponse, error)
}

type SegmentFlowImpl struct {
	gateway  repository.Gateway
	resolver MentorResolverFlow
}

func NewSegmentFlow(gateway repository.Gateway, resolver MentorResolverFlow) SegmentFlow {
	return &SegmentFlowImpl{gateway: gateway, resolver: resolver}
}

// ListSegments returns all segments.
func (f *SegmentFlowImpl) ListSegments(ctx context.Context) (*dto.ListSegmentsResponse, error) {
	segments, err := f.gateway.ListSegments(ctx)
	if err != nil {
		log.Printf("Error fetching all segments: %v", err)
		return nil, NewBusinessError("SEGMENT_LIST_FAILED", "Failed to list segments", err)
	}

	items := make([]dto.SegmentItem, 0, len(segments))
	for _, s := range segments {
		items = append(items, toSegmentItem(s))
	}
	return &dto.ListSegmentsResponse{Items: items}, nil
}

// CreateSegmentFromPhones creates the segment row and resolves mentors
// by phone number concurrently, then maps every resolved mentor into the
// new segment. Phone numbers with no matching mentor are silently
// dropped.
func (f *SegmentFlowImpl) CreateSegmentFromPhones(ctx context.Context, req *dto.CreateSegmentFromPhonesRequest) (*dto.CreateSegmentFromPhonesResponse, error) {
	if strings.TrimSpace(req.SegmentName) == "" {
		return nil, NewBusinessError("SEGMENT_NAME_REQUIRED", "Segment name is required", ErrSegmentNameRequired)
	}

	var (
		segment *models.Segment
		mentors []*models.Mentor
	)

	// Segment creation and mentor resolution have no ordering dependency.
	// If one fails after the other committed there is no rollback; the
	// error propagates and a committed segment stays orphaned.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		created, err := f.gateway.CreateSegment(gctx, req.SegmentName, req.SegmentDescription)
		if err != nil {
			return err
		}
		segment = created
		return nil
	})
	g.Go(func() error {
		rows, err := f.gateway.QueryMentors(gctx, models.PhonePredicate(req.PhoneNumbers), 0, 0)
		if err != nil {
			return err
		}
		mentors = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("Error creating segment and mapping: %v", err)
		return nil, NewBusinessError("SEGMENT_CREATE_FAILED", "Failed to create segment and mapping", err)
	}

	mappings, rows := buildMembershipRows(mentors, segment.ID)

	count, err := f.gateway.CreateMemberships(ctx, rows)
	if err != nil {
		log.Printf("Error creating mentor segment mappings for segment %d: %v", segment.ID, err)
		return nil, NewBusinessError("SEGMENT_MAPPING_FAILED", "Failed to create mentor segment mappings", err)
	}

	return &dto.CreateSegmentFromPhonesResponse{
		Count:                    count,
		Segment:                  toSegmentItem(segment),
		MentorsMappedWithSegment: mappings,
	}, nil
}

// CreateSegmentFromFilter compiles the compound selection, resolves the
// matching mentors branch by branch, then creates the segment and its
// memberships. A selection resolving to zero mentors still creates the
// segment.
func (f *SegmentFlowImpl) CreateSegmentFromFilter(ctx context.Context, req *dto.CreateSegmentFromFilterRequest) (*dto.CreateSegmentFromFilterResponse, error) {
	preds, err := CompileMentorFilter(MentorFilterSelection{
		Actors:    req.Actors,
		Districts: req.Districts,
		Blocks:    req.Blocks,
		Schools:   req.Schools,
	})
	if err != nil {
		return nil, NewBusinessError("SEGMENT_FILTER_ACTORS_REQUIRED", "Actors are compulsory and should not be empty", err)
	}

	mentors, err := f.resolver.ResolveMentors(ctx, preds)
	if err != nil {
		return nil, err
	}

	segment, err := f.gateway.CreateSegment(ctx, req.Name, req.Description)
	if err != nil {
		log.Printf("Error creating segment from filter: %v", err)
		return nil, NewBusinessError("SEGMENT_CREATE_FAILED", "Failed to create segment", err)
	}

	_, rows := buildMembershipRows(mentors, segment.ID)
	if _, err := f.gateway.CreateMemberships(ctx, rows); err != nil {
		log.Printf("Error creating mentor segment mappings for segment %d: %v", segment.ID, err)
		return nil, NewBusinessError("SEGMENT_MAPPING_FAILED", "Failed to create mentor segment mappings", err)
	}

	return &dto.CreateSegmentFromFilterResponse{Segment: toSegmentItem(segment)}, nil
}

// buildMembershipRows produces one membership per resolved mentor, plus
// the stringified echo the phone-create endpoint returns.
func buildMembershipRows(mentors []*models.Mentor, segmentID int64) ([]dto.MentorSegmentMapping, []*models.MentorSegment) {
	mappings := make([]dto.MentorSegmentMapping, 0, len(mentors))
	rows := make([]*models.MentorSegment, 0, len(mentors))
	for _, m := range mentors {
		mappings = append(mappings, dto.MentorSegmentMapping{
			MentorID:  strconv.FormatInt(m.ID, 10),
			SegmentID: strconv.FormatInt(segmentID, 10),
			PhoneNo:   m.PhoneNo,
		})
		rows = append(rows, &models.MentorSegment{MentorID: m.ID, SegmentID: segmentID})
	}
	return mappings, rows
}

func toSegmentItem(s *models.Segment) dto.SegmentItem {
	return dto.SegmentItem{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
