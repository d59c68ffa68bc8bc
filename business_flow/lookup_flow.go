package businessflow

import (
	"context"
	"log"

	"github.com/vidyaloop/segment-service/app/dto"
	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/repository"
	"github.com/vidyaloop/segment-service/utils"
)

// LookupFlow serves the staged filter lookups backing the segment
// builder UI.
type LookupFlow interface {
	GetSegmentFilters(ctx context.Context, req *dto.GetSegmentFiltersRequest) (*dto.SegmentFiltersResponse, error)
}

type LookupFlowImpl struct {
	gateway repository.Gateway
}

func NewLookupFlow(gateway repository.Gateway) LookupFlow {
	return &LookupFlowImpl{gateway: gateway}
}

// GetSegmentFilters returns the actor list plus, stage by stage, the
// districts reachable by the given actors, the blocks in the given
// districts, and the schools matching the district/block constraints.
// Each stage runs only when its input names at least one real id (the
// -1 sentinel means "all" and skips the dependent stage); stages are
// independent reads, not a pipeline.
func (f *LookupFlowImpl) GetSegmentFilters(ctx context.Context, req *dto.GetSegmentFiltersRequest) (*dto.SegmentFiltersResponse, error) {
	actorIDs, err := utils.ParseInt32List(req.Actors)
	if err != nil {
		return nil, NewBusinessError("SEGMENT_FILTERS_INVALID_ACTORS", "Actors must be a comma-separated integer list", err)
	}
	districtIDs, err := utils.ParseInt32List(req.Districts)
	if err != nil {
		return nil, NewBusinessError("SEGMENT_FILTERS_INVALID_DISTRICTS", "Districts must be a comma-separated integer list", err)
	}
	blockIDs, err := utils.ParseInt32List(req.Blocks)
	if err != nil {
		return nil, NewBusinessError("SEGMENT_FILTERS_INVALID_BLOCKS", "Blocks must be a comma-separated integer list", err)
	}

	resp := &dto.SegmentFiltersResponse{
		Actors:    []dto.LookupItem{},
		Districts: []dto.LookupItem{},
		Blocks:    []dto.LookupItem{},
		Schools:   []dto.SchoolLookupItem{},
	}

	actors, err := f.gateway.ListActors(ctx)
	if err != nil {
		log.Printf("Error fetching segment filters: %v", err)
		return nil, NewBusinessError("SEGMENT_FILTERS_FETCH_FAILED", "Failed to fetch segment filters", err)
	}
	resp.Actors = toLookupItems(actors)

	if utils.HasRealIDs(actorIDs) {
		districts, err := f.gateway.ListDistrictsByActors(ctx, realIDs(actorIDs))
		if err != nil {
			log.Printf("Error fetching segment filters: %v", err)
			return nil, NewBusinessError("SEGMENT_FILTERS_FETCH_FAILED", "Failed to fetch segment filters", err)
		}
		resp.Districts = toLookupItems(districts)
	}

	if utils.HasRealIDs(districtIDs) {
		blocks, err := f.gateway.ListBlocksByDistricts(ctx, realIDs(districtIDs))
		if err != nil {
			log.Printf("Error fetching segment filters: %v", err)
			return nil, NewBusinessError("SEGMENT_FILTERS_FETCH_FAILED", "Failed to fetch segment filters", err)
		}
		resp.Blocks = toLookupItems(blocks)
	}

	if utils.HasRealIDs(blockIDs) {
		schools, err := f.gateway.ListSchools(ctx, realIDs(districtIDs), realIDs(blockIDs))
		if err != nil {
			log.Printf("Error fetching segment filters: %v", err)
			return nil, NewBusinessError("SEGMENT_FILTERS_FETCH_FAILED", "Failed to fetch segment filters", err)
		}
		for _, s := range schools {
			resp.Schools = append(resp.Schools, dto.SchoolLookupItem{ID: s.ID, Label: s.Label})
		}
	}

	return resp, nil
}

// realIDs strips the -1 sentinel before the ids reach the gateway.
func realIDs(ids []int32) []int32 {
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		if id != models.SentinelAll {
			out = append(out, id)
		}
	}
	return out
}

func toLookupItems(options []models.LookupOption) []dto.LookupItem {
	items := make([]dto.LookupItem, 0, len(options))
	for _, o := range options {
		items = append(items, dto.LookupItem{ID: o.ID, Label: o.Label})
	}
	return items
}
