package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidyaloop/segment-service/app/dto"
	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/utils"
)

func tokenRow(mentorID int64, token string) *models.MentorToken {
	return &models.MentorToken{MentorID: mentorID, Token: token}
}

func seedSegmentMentors(g *fakeGateway) {
	g.addMentor(&models.Mentor{
		ID: 1, PhoneNo: "9000000001", OfficerName: "Asha", ActorID: 1, DistrictID: 10,
		Token: tokenRow(1, "fcm-token-1"),
	}, 100)
	g.addMentor(&models.Mentor{
		ID: 2, PhoneNo: "9000000002", OfficerName: "Binod", ActorID: 1, DistrictID: 10,
		Token: tokenRow(2, "fcm-token-2"),
	}, 100, 200)
	// Token row exists but is empty: unreachable.
	g.addMentor(&models.Mentor{
		ID: 3, PhoneNo: "9000000003", OfficerName: "Chitra", ActorID: 2, DistrictID: 20,
		Token: tokenRow(3, ""),
	}, 100)
	// No token row at all: unreachable.
	g.addMentor(&models.Mentor{
		ID: 4, PhoneNo: "9000000004", OfficerName: "Deepak", ActorID: 2, DistrictID: 20,
	}, 200)
}

func TestGetMentorsForSegments(t *testing.T) {
	t.Run("PayloadMapping", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		res, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{
			SegmentIDs:  []int64{100},
			Title:       "Exam reminder",
			Description: "Board exams start Monday",
			DeepLink:    "app://exams",
		})
		require.NoError(t, err)
		require.Len(t, res.Data, 2)

		first := res.Data[0]
		assert.Equal(t, "fcm-token-1", first.FCMToken)
		assert.Equal(t, "9000000001", first.PhoneNo)
		assert.Equal(t, "Asha", first.Name)
		assert.Equal(t, "Exam reminder", first.Title)
		assert.Equal(t, "Board exams start Monday", first.Description)
		assert.Equal(t, "app://exams", first.FCMClickActionURL)

		// Broadcast fields repeat on every row.
		assert.Equal(t, "Exam reminder", res.Data[1].Title)
		assert.Equal(t, "app://exams", res.Data[1].FCMClickActionURL)
	})

	t.Run("UnreachableMentorsExcluded", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		res, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{
			SegmentIDs: []int64{200},
		})
		require.NoError(t, err)
		// Mentor 4 has no token row; only mentor 2 is reachable.
		require.Len(t, res.Data, 1)
		assert.Equal(t, "9000000002", res.Data[0].PhoneNo)
	})

	t.Run("MultiSegmentUnion", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		res, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{
			SegmentIDs: []int64{100, 200},
		})
		require.NoError(t, err)
		// Mentor 2 belongs to both segments but appears once.
		require.Len(t, res.Data, 2)
	})

	t.Run("LimitAndOffset", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		res, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{
			SegmentIDs: []int64{100},
			Limit:      1,
			Offset:     1,
		})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.Equal(t, "9000000002", res.Data[0].PhoneNo)
	})

	t.Run("NoSegmentIDs", func(t *testing.T) {
		flow := NewMentorResolverFlow(newFakeGateway(), 2, 0)
		_, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{})
		assert.ErrorIs(t, err, ErrSegmentIDsRequired)
	})

	t.Run("GatewayErrorWrapped", func(t *testing.T) {
		g := newFakeGateway()
		g.queryErr = errors.New("backend down")
		flow := NewMentorResolverFlow(g, 2, 0)

		_, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{
			SegmentIDs: []int64{100},
		})
		require.Error(t, err)
		var be *BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "SEGMENT_MENTORS_FETCH_FAILED", be.Code)
	})
}

func TestGetCountForSegment(t *testing.T) {
	g := newFakeGateway()
	seedSegmentMentors(g)
	flow := NewMentorResolverFlow(g, 2, 0)

	res, err := flow.GetCountForSegment(context.Background(), 100)
	require.NoError(t, err)
	// Counts only reachable mentors, matching the payload row count.
	assert.Equal(t, int64(2), res.TotalCount)

	payload, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{SegmentIDs: []int64{100}})
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload.Data)), res.TotalCount)
}

func TestGetCountForSegments(t *testing.T) {
	t.Run("PerSegmentMapAndSum", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		res, err := flow.GetCountForSegments(context.Background(), []int64{100, 200})
		require.NoError(t, err)

		assert.Equal(t, int64(2), res.PerSegment["100"])
		assert.Equal(t, int64(1), res.PerSegment["200"])
		// Mentor 2 is in both segments and counted twice.
		assert.Equal(t, int64(3), res.TotalCount)
	})

	t.Run("RepeatedSegmentIDCountedEachTime", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		res, err := flow.GetCountForSegments(context.Background(), []int64{100, 100})
		require.NoError(t, err)

		// The map collapses the repeated id to one key, but the total
		// still counts each occurrence.
		assert.Equal(t, int64(2), res.PerSegment["100"])
		assert.Len(t, res.PerSegment, 1)
		assert.Equal(t, int64(4), res.TotalCount)
	})

	t.Run("UnknownSegmentCountsZero", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		res, err := flow.GetCountForSegments(context.Background(), []int64{999})
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.TotalCount)
		assert.Equal(t, int64(0), res.PerSegment["999"])
	})

	t.Run("NoSegmentIDs", func(t *testing.T) {
		flow := NewMentorResolverFlow(newFakeGateway(), 2, 0)
		_, err := flow.GetCountForSegments(context.Background(), nil)
		assert.ErrorIs(t, err, ErrSegmentIDsRequired)
	})

	t.Run("SubQueryFailureFailsWhole", func(t *testing.T) {
		g := newFakeGateway()
		g.countErr = errors.New("backend down")
		flow := NewMentorResolverFlow(g, 2, 0)

		_, err := flow.GetCountForSegments(context.Background(), []int64{100, 200})
		require.Error(t, err)
		var be *BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "SEGMENT_COUNT_FAILED", be.Code)
	})
}

func TestResolveMentors(t *testing.T) {
	g := newFakeGateway()
	block := int32(101)
	g.addMentor(&models.Mentor{ID: 1, PhoneNo: "1", OfficerName: "A", ActorID: models.ActorTeacher, DistrictID: 10, BlockID: &block})
	g.addMentor(&models.Mentor{ID: 2, PhoneNo: "2", OfficerName: "B", ActorID: 1, DistrictID: 10})
	g.addMentor(&models.Mentor{ID: 3, PhoneNo: "3", OfficerName: "C", ActorID: 2, DistrictID: 20})
	flow := NewMentorResolverFlow(g, 2, 0)

	preds, err := CompileMentorFilter(MentorFilterSelection{Actors: []int32{1, 2}, Districts: []int32{10}})
	require.NoError(t, err)

	mentors, err := flow.ResolveMentors(context.Background(), preds)
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	assert.Equal(t, int64(2), mentors[0].ID)
}

func TestDefaultResolveLimit(t *testing.T) {
	// The historical "no limit" sentinel is a very large cap, not zero.
	assert.Equal(t, 100000, utils.DefaultResolveLimit)
}

func TestResolverDefaultLimit(t *testing.T) {
	t.Run("ConfiguredLimitAppliedWhenRequestHasNone", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 25)

		_, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{SegmentIDs: []int64{100}})
		require.NoError(t, err)
		assert.Equal(t, 25, g.lastQueryLimit)
	})

	t.Run("RequestLimitWins", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 25)

		_, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{SegmentIDs: []int64{100}, Limit: 7})
		require.NoError(t, err)
		assert.Equal(t, 7, g.lastQueryLimit)
	})

	t.Run("ZeroFallsBackToHistoricalCap", func(t *testing.T) {
		g := newFakeGateway()
		seedSegmentMentors(g)
		flow := NewMentorResolverFlow(g, 2, 0)

		_, err := flow.GetMentorsForSegments(context.Background(), &dto.GetSegmentMentorsRequest{SegmentIDs: []int64{100}})
		require.NoError(t, err)
		assert.Equal(t, utils.DefaultResolveLimit, g.lastQueryLimit)
	})
}
