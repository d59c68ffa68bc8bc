package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidyaloop/segment-service/models"
)

func TestCompileMentorFilter(t *testing.T) {
	t.Run("EmptyActorsRejected", func(t *testing.T) {
		_, err := CompileMentorFilter(MentorFilterSelection{})
		assert.ErrorIs(t, err, ErrActorsRequired)
	})

	t.Run("OnlySentinelActorsRejected", func(t *testing.T) {
		_, err := CompileMentorFilter(MentorFilterSelection{Actors: []int32{-1, -1}})
		assert.ErrorIs(t, err, ErrActorsRequired)
	})

	t.Run("GeneralBranchOnly", func(t *testing.T) {
		preds, err := CompileMentorFilter(MentorFilterSelection{
			Actors:    []int32{1, 2},
			Districts: []int32{10},
		})
		require.NoError(t, err)
		require.Len(t, preds, 1)

		assert.Equal(t, []int32{1, 2}, preds[0].Actors.Values())
		assert.Equal(t, []int32{10}, preds[0].Districts.Values())
		assert.False(t, preds[0].Blocks.Constrained())
		assert.False(t, preds[0].Schools.Constrained())
	})

	t.Run("SchoolsWithoutTeacherStayGeneral", func(t *testing.T) {
		preds, err := CompileMentorFilter(MentorFilterSelection{
			Actors:  []int32{1},
			Schools: []string{"UD1001"},
		})
		require.NoError(t, err)
		require.Len(t, preds, 1)

		// The school constraint only applies through the teacher branch.
		assert.Equal(t, []int32{1}, preds[0].Actors.Values())
		assert.False(t, preds[0].Schools.Constrained())
	})

	t.Run("TeacherBranchSplit", func(t *testing.T) {
		preds, err := CompileMentorFilter(MentorFilterSelection{
			Actors:    []int32{1, models.ActorTeacher},
			Districts: []int32{10, 20},
			Schools:   []string{"UD1001", "UD1002"},
		})
		require.NoError(t, err)
		require.Len(t, preds, 2)

		teacher := preds[0]
		assert.Equal(t, []int32{models.ActorTeacher}, teacher.Actors.Values())
		assert.Equal(t, []string{"UD1001", "UD1002"}, teacher.Schools.Values())
		assert.Equal(t, []int32{10, 20}, teacher.Districts.Values())

		general := preds[1]
		assert.Equal(t, []int32{1}, general.Actors.Values())
		assert.False(t, general.Schools.Constrained())
		assert.Equal(t, []int32{10, 20}, general.Districts.Values())
	})

	t.Run("TeacherOnlyWithSchools", func(t *testing.T) {
		preds, err := CompileMentorFilter(MentorFilterSelection{
			Actors:  []int32{models.ActorTeacher},
			Schools: []string{"UD1001"},
		})
		require.NoError(t, err)
		require.Len(t, preds, 1)
		assert.Equal(t, []int32{models.ActorTeacher}, preds[0].Actors.Values())
		assert.True(t, preds[0].Schools.Constrained())
	})

	t.Run("SentinelDimensionsUnconstrained", func(t *testing.T) {
		preds, err := CompileMentorFilter(MentorFilterSelection{
			Actors:    []int32{1, -1},
			Districts: []int32{-1},
			Blocks:    []int32{-1},
			Schools:   []string{"-1"},
		})
		require.NoError(t, err)
		require.Len(t, preds, 1)

		assert.Equal(t, []int32{1}, preds[0].Actors.Values())
		assert.False(t, preds[0].Districts.Constrained())
		assert.False(t, preds[0].Blocks.Constrained())
		assert.False(t, preds[0].Schools.Constrained())
	})

	t.Run("SentinelInsideDistrictListDisablesDimension", func(t *testing.T) {
		preds, err := CompileMentorFilter(MentorFilterSelection{
			Actors:    []int32{2},
			Districts: []int32{10, -1, 20},
		})
		require.NoError(t, err)
		require.Len(t, preds, 1)
		assert.False(t, preds[0].Districts.Constrained())
	})
}
