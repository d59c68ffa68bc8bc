// Package repository provides the backend gateway abstraction and its two
// data-access variants: the direct relational store and the remote
// GraphQL gateway.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vidyaloop/segment-service/models"
)

// contextKey for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// Gateway is the single capability contract over mentor segmentation
// data. Both variants expose identical observable behavior: reads are
// ordered ascending by id and respect limit/offset, writes are
// synchronous, and every failure is classified into the package's error
// taxonomy before it leaves this layer. Callers never need to know which
// variant executed.
type Gateway interface {
	// QueryMentors returns mentors matching the predicate, ordered
	// ascending by mentor id. limit <= 0 means no limit.
	QueryMentors(ctx context.Context, pred models.MentorPredicate, limit, offset int) ([]*models.Mentor, error)
	// CountMentors returns the number of mentors matching the predicate.
	CountMentors(ctx context.Context, pred models.MentorPredicate) (int64, error)

	CreateSegment(ctx context.Context, name, description string) (*models.Segment, error)
	ListSegments(ctx context.Context) ([]*models.Segment, error)

	// CreateMemberships bulk-inserts mentor-segment rows and returns the
	// affected-row count. An empty batch is a no-op.
	CreateMemberships(ctx context.Context, rows []*models.MentorSegment) (int64, error)

	// UpsertSegmentBot inserts or updates the mapping keyed by
	// (segment_id, bot_id). Idempotent.
	UpsertSegmentBot(ctx context.Context, segmentID int64, botID uuid.UUID) (*models.SegmentBot, error)
	// InsertSegmentBots plain-inserts mapping rows; a duplicate
	// (segment_id, bot_id) pair fails the whole batch with a constraint
	// violation.
	InsertSegmentBots(ctx context.Context, rows []*models.SegmentBot) (int64, error)
	// DeleteSegmentBots removes every mapping whose bot id is in the set,
	// across all segments, and returns the affected-row count.
	DeleteSegmentBots(ctx context.Context, botIDs []uuid.UUID) (int64, error)

	ListActors(ctx context.Context) ([]models.LookupOption, error)
	// ListDistrictsByActors returns the distinct districts reachable by
	// mentors of the given actor kinds, ascending by district id.
	ListDistrictsByActors(ctx context.Context, actorIDs []int32) ([]models.LookupOption, error)
	ListBlocksByDistricts(ctx context.Context, districtIDs []int32) ([]models.LookupOption, error)
	// ListSchools filters by district and block only when the respective
	// id list is non-empty.
	ListSchools(ctx context.Context, districtIDs, blockIDs []int32) ([]models.SchoolOption, error)
}
