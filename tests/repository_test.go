// Package tests contains integration tests for the store gateway to avoid circular imports
package tests

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyaloop/segment-service/models"
	"github.com/vidyaloop/segment-service/repository"
	testingutil "github.com/vidyaloop/segment-service/testing"
)

func TestStoreGatewayMentors(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		require.NoError(t, testDB.SeedLookupData())

		gateway := repository.NewStoreGateway(testDB.DB, 0)
		ctx := testingutil.CreateTestContext()

		// Mentors 1 and 2 carry tokens, 3 has an empty token row, 4 has
		// no token row at all.
		_, err := testDB.CreateTestMentor(1, "9000000001", "Asha", models.ActorTeacher, 10, "tok-1")
		require.NoError(t, err)
		_, err = testDB.CreateTestMentor(2, "9000000002", "Ravi", 1, 10, "tok-2")
		require.NoError(t, err)
		_, err = testDB.CreateTestMentor(3, "9000000003", "Meena", 2, 20, "")
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Create(&models.MentorToken{MentorID: 3, Token: ""}).Error)
		_, err = testDB.CreateTestMentor(4, "9000000004", "Kiran", models.ActorTeacher, 20, "")
		require.NoError(t, err)

		segment, err := testDB.CreateTestSegment("all-mentors", "everyone")
		require.NoError(t, err)
		for _, mentorID := range []int64{1, 2, 3, 4} {
			require.NoError(t, testDB.AddMentorToSegment(mentorID, segment.ID))
		}

		require.NoError(t, testDB.LinkTeacherToSchool(1, "UD1001"))

		t.Run("SegmentPredicateGatesOnToken", func(t *testing.T) {
			mentors, err := gateway.QueryMentors(ctx, models.SegmentPredicate(segment.ID), 0, 0)
			require.NoError(t, err)
			require.Len(t, mentors, 2)
			assert.Equal(t, int64(1), mentors[0].ID)
			assert.Equal(t, int64(2), mentors[1].ID)
			assert.Equal(t, "tok-1", mentors[0].FCMToken())
		})

		t.Run("PhonePredicateIgnoresToken", func(t *testing.T) {
			mentors, err := gateway.QueryMentors(ctx, models.PhonePredicate([]string{"9000000003", "9000000004"}), 0, 0)
			require.NoError(t, err)
			require.Len(t, mentors, 2)
			assert.Equal(t, "", mentors[0].FCMToken())
			assert.Equal(t, "", mentors[1].FCMToken())
		})

		t.Run("LimitAndOffset", func(t *testing.T) {
			mentors, err := gateway.QueryMentors(ctx, models.SegmentPredicate(segment.ID), 1, 1)
			require.NoError(t, err)
			require.Len(t, mentors, 1)
			assert.Equal(t, int64(2), mentors[0].ID)
		})

		t.Run("FilterByActorAndDistrict", func(t *testing.T) {
			pred := models.MentorPredicate{
				Actors:    models.Int32Values([]int32{models.ActorTeacher}),
				Districts: models.Int32Values([]int32{10}),
			}
			mentors, err := gateway.QueryMentors(ctx, pred, 0, 0)
			require.NoError(t, err)
			require.Len(t, mentors, 1)
			assert.Equal(t, int64(1), mentors[0].ID)
		})

		t.Run("FilterBySchool", func(t *testing.T) {
			pred := models.MentorPredicate{
				Actors:  models.Int32Values([]int32{models.ActorTeacher}),
				Schools: models.StringValues([]string{"UD1001"}),
			}
			mentors, err := gateway.QueryMentors(ctx, pred, 0, 0)
			require.NoError(t, err)
			require.Len(t, mentors, 1)
			assert.Equal(t, int64(1), mentors[0].ID)
		})

		t.Run("CountMatchesQuery", func(t *testing.T) {
			count, err := gateway.CountMentors(ctx, models.SegmentPredicate(segment.ID))
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("UnknownSegmentIsEmpty", func(t *testing.T) {
			mentors, err := gateway.QueryMentors(ctx, models.SegmentPredicate(999999), 0, 0)
			require.NoError(t, err)
			assert.Empty(t, mentors)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestStoreGatewaySegments(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		gateway := repository.NewStoreGateway(testDB.DB, 0)
		ctx := testingutil.CreateTestContext()

		t.Run("CreateAndList", func(t *testing.T) {
			first, err := gateway.CreateSegment(ctx, "pilot-batch", "pilot mentors")
			require.NoError(t, err)
			require.NotNil(t, first)
			assert.NotZero(t, first.ID)
			assert.Equal(t, "pilot-batch", first.Name)

			second, err := gateway.CreateSegment(ctx, "second-batch", "")
			require.NoError(t, err)
			assert.Greater(t, second.ID, first.ID)

			segments, err := gateway.ListSegments(ctx)
			require.NoError(t, err)
			require.Len(t, segments, 2)
			assert.Equal(t, first.ID, segments[0].ID)
			assert.Equal(t, second.ID, segments[1].ID)
		})

		t.Run("CreateMemberships", func(t *testing.T) {
			require.NoError(t, testDB.SeedLookupData())
			_, err := testDB.CreateTestMentor(11, "9000000011", "Lata", 1, 10, "tok-11")
			require.NoError(t, err)
			_, err = testDB.CreateTestMentor(12, "9000000012", "Guna", 1, 10, "tok-12")
			require.NoError(t, err)

			segment, err := gateway.CreateSegment(ctx, "member-batch", "")
			require.NoError(t, err)

			affected, err := gateway.CreateMemberships(ctx, []*models.MentorSegment{
				{MentorID: 11, SegmentID: segment.ID},
				{MentorID: 12, SegmentID: segment.ID},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), affected)

			mentors, err := gateway.QueryMentors(ctx, models.SegmentPredicate(segment.ID), 0, 0)
			require.NoError(t, err)
			assert.Len(t, mentors, 2)
		})

		t.Run("SmallMembershipBatchesInsertEverything", func(t *testing.T) {
			smallBatch := repository.NewStoreGateway(testDB.DB, 2)
			for i := int64(13); i <= 17; i++ {
				_, err := testDB.CreateTestMentor(i, fmt.Sprintf("90000001%d", i), "Batch", 1, 10, "")
				require.NoError(t, err)
			}

			segment, err := smallBatch.CreateSegment(ctx, "small-batch", "")
			require.NoError(t, err)

			rows := make([]*models.MentorSegment, 0, 5)
			for i := int64(13); i <= 17; i++ {
				rows = append(rows, &models.MentorSegment{MentorID: i, SegmentID: segment.ID})
			}
			affected, err := smallBatch.CreateMemberships(ctx, rows)
			require.NoError(t, err)
			assert.Equal(t, int64(5), affected)
		})

		t.Run("EmptyMembershipBatchIsNoop", func(t *testing.T) {
			affected, err := gateway.CreateMemberships(ctx, nil)
			require.NoError(t, err)
			assert.Zero(t, affected)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestStoreGatewaySegmentBots(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		gateway := repository.NewStoreGateway(testDB.DB, 0)
		ctx := testingutil.CreateTestContext()

		first, err := testDB.CreateTestSegment("bot-target-1", "")
		require.NoError(t, err)
		second, err := testDB.CreateTestSegment("bot-target-2", "")
		require.NoError(t, err)

		t.Run("UpsertIsIdempotent", func(t *testing.T) {
			botID := uuid.New()

			row, err := gateway.UpsertSegmentBot(ctx, first.ID, botID)
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Equal(t, first.ID, row.SegmentID)
			assert.Equal(t, botID, row.BotID)

			again, err := gateway.UpsertSegmentBot(ctx, first.ID, botID)
			require.NoError(t, err)
			assert.Equal(t, row.ID, again.ID)

			var count int64
			require.NoError(t, testDB.DB.Model(&models.SegmentBot{}).
				Where("segment_id = ? AND bot_id = ?", first.ID, botID).
				Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("BatchInsertFailsOnDuplicatePair", func(t *testing.T) {
			botID := uuid.New()

			affected, err := gateway.InsertSegmentBots(ctx, []*models.SegmentBot{
				{SegmentID: first.ID, BotID: botID},
				{SegmentID: second.ID, BotID: botID},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), affected)

			_, err = gateway.InsertSegmentBots(ctx, []*models.SegmentBot{
				{SegmentID: second.ID, BotID: botID},
			})
			require.Error(t, err)
			assert.True(t, repository.IsConstraintViolation(err))
		})

		t.Run("DeleteByBotIDs", func(t *testing.T) {
			botID := uuid.New()
			_, err := gateway.InsertSegmentBots(ctx, []*models.SegmentBot{
				{SegmentID: first.ID, BotID: botID},
				{SegmentID: second.ID, BotID: botID},
			})
			require.NoError(t, err)

			affected, err := gateway.DeleteSegmentBots(ctx, []uuid.UUID{botID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), affected)

			affected, err = gateway.DeleteSegmentBots(ctx, []uuid.UUID{botID})
			require.NoError(t, err)
			assert.Zero(t, affected)
		})

		t.Run("EmptyBatchesAreNoops", func(t *testing.T) {
			affected, err := gateway.InsertSegmentBots(ctx, nil)
			require.NoError(t, err)
			assert.Zero(t, affected)

			affected, err = gateway.DeleteSegmentBots(ctx, nil)
			require.NoError(t, err)
			assert.Zero(t, affected)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestStoreGatewayLookups(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		require.NoError(t, testDB.SeedLookupData())

		gateway := repository.NewStoreGateway(testDB.DB, 0)
		ctx := testingutil.CreateTestContext()

		_, err := testDB.CreateTestMentor(21, "9000000021", "Asha", models.ActorTeacher, 10, "tok-21")
		require.NoError(t, err)
		_, err = testDB.CreateTestMentor(22, "9000000022", "Ravi", 1, 20, "tok-22")
		require.NoError(t, err)

		t.Run("ListActors", func(t *testing.T) {
			actors, err := gateway.ListActors(ctx)
			require.NoError(t, err)
			require.Len(t, actors, 3)
			assert.Equal(t, models.LookupOption{ID: 1, Label: "Officer"}, actors[0])
			assert.Equal(t, models.LookupOption{ID: 3, Label: "Teacher"}, actors[2])
		})

		t.Run("DistrictsFollowMentorPresence", func(t *testing.T) {
			districts, err := gateway.ListDistrictsByActors(ctx, []int32{models.ActorTeacher})
			require.NoError(t, err)
			require.Len(t, districts, 1)
			assert.Equal(t, models.LookupOption{ID: 10, Label: "North District"}, districts[0])

			districts, err = gateway.ListDistrictsByActors(ctx, []int32{1, models.ActorTeacher})
			require.NoError(t, err)
			assert.Len(t, districts, 2)
		})

		t.Run("EmptyActorListIsNil", func(t *testing.T) {
			districts, err := gateway.ListDistrictsByActors(ctx, nil)
			require.NoError(t, err)
			assert.Nil(t, districts)
		})

		t.Run("BlocksByDistricts", func(t *testing.T) {
			blocks, err := gateway.ListBlocksByDistricts(ctx, []int32{10})
			require.NoError(t, err)
			require.Len(t, blocks, 2)
			assert.Equal(t, int64(101), blocks[0].ID)
			assert.Equal(t, int64(102), blocks[1].ID)
		})

		t.Run("SchoolsConstrainedByDistrictAndBlock", func(t *testing.T) {
			schools, err := gateway.ListSchools(ctx, []int32{10}, []int32{101})
			require.NoError(t, err)
			require.Len(t, schools, 1)
			assert.Equal(t, models.SchoolOption{ID: "UD1001", Label: "North Primary"}, schools[0])
		})

		t.Run("SchoolsUnconstrainedReturnsAll", func(t *testing.T) {
			schools, err := gateway.ListSchools(ctx, nil, nil)
			require.NoError(t, err)
			assert.Len(t, schools, 3)
		})

		return nil
	})
	require.NoError(t, err)
}
