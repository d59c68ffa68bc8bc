package businessflow

import (
	"github.com/vidyaloop/segment-service/models"
)

// MentorFilterSelection carries the raw audience filter inputs as parsed
// by the HTTP layer. The -1 sentinel on any dimension means "no
// constraint"; it is normalized away during compilation.
type MentorFilterSelection struct {
	Actors    []int32
	Districts []int32
	Blocks    []int32
	Schools   []string
}

// CompileMentorFilter turns a raw filter selection into an ordered union
// of at most two independently executable predicates. Pure
// transformation: nothing is executed here.
//
// Teachers with a school constraint form their own branch: the school
// match goes through the teacher-school relation and applies only to the
// teacher actor kind. All remaining actors share a second branch that
// applies district/block constraints but never the school one. Actor
// sets of the two branches are disjoint, so concatenating their results
// never duplicates a mentor.
func CompileMentorFilter(sel MentorFilterSelection) ([]models.MentorPredicate, error) {
	actors := realActorIDs(sel.Actors)
	if len(actors) == 0 {
		return nil, ErrActorsRequired
	}

	districts := models.Int32Values(sel.Districts)
	blocks := models.Int32Values(sel.Blocks)
	schools := models.StringValues(sel.Schools)

	var preds []models.MentorPredicate

	if schools.Constrained() && containsActor(actors, models.ActorTeacher) {
		preds = append(preds, models.MentorPredicate{
			Actors:    models.Int32Values([]int32{models.ActorTeacher}),
			Districts: districts,
			Blocks:    blocks,
			Schools:   schools,
		})
		actors = removeActor(actors, models.ActorTeacher)
	}

	if len(actors) > 0 {
		preds = append(preds, models.MentorPredicate{
			Actors:    models.Int32Values(actors),
			Districts: districts,
			Blocks:    blocks,
		})
	}

	return preds, nil
}

// realActorIDs drops the -1 sentinel; actors, unlike the other
// dimensions, must name at least one real id.
func realActorIDs(ids []int32) []int32 {
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		if id != models.SentinelAll {
			out = append(out, id)
		}
	}
	return out
}

func containsActor(ids []int32, actor int32) bool {
	for _, id := range ids {
		if id == actor {
			return true
		}
	}
	return false
}

func removeActor(ids []int32, actor int32) []int32 {
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		if id != actor {
			out = append(out, id)
		}
	}
	return out
}
