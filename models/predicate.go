package models

// SentinelAll is the reserved id meaning "apply no constraint on this
// dimension". Callers historically send it as -1 in comma lists; it is
// normalized away at predicate construction time.
const SentinelAll int32 = -1

// Int32Dimension is one axis of a mentor predicate: either unconstrained
// or restricted to an explicit id set. An empty input set, or any
// occurrence of the -1 sentinel, yields the unconstrained state.
type Int32Dimension struct {
	constrained bool
	values      []int32
}

// Int32Values builds a dimension from raw ids, applying the sentinel
// convention.
func Int32Values(ids []int32) Int32Dimension {
	if len(ids) == 0 {
		return Int32Dimension{}
	}
	vals := make([]int32, 0, len(ids))
	for _, id := range ids {
		if id == SentinelAll {
			return Int32Dimension{}
		}
		vals = append(vals, id)
	}
	return Int32Dimension{constrained: true, values: vals}
}

func (d Int32Dimension) Constrained() bool { return d.constrained }
func (d Int32Dimension) Values() []int32   { return d.values }

// StringDimension is the string-keyed counterpart of Int32Dimension,
// used for school UDISE codes.
type StringDimension struct {
	constrained bool
	values      []string
}

// StringValues builds a dimension from raw keys. Empty input and the
// "-1" sentinel both mean unconstrained.
func StringValues(keys []string) StringDimension {
	if len(keys) == 0 {
		return StringDimension{}
	}
	vals := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || k == "-1" {
			return StringDimension{}
		}
		vals = append(vals, k)
	}
	return StringDimension{constrained: true, values: vals}
}

func (d StringDimension) Constrained() bool { return d.constrained }
func (d StringDimension) Values() []string  { return d.values }

// MentorPredicate is the normalized, executable "which mentors match"
// condition the backend gateway evaluates. Selector groups compose with
// AND; an unconstrained dimension contributes nothing.
type MentorPredicate struct {
	// SegmentIDs restricts to mentors belonging to any of these segments.
	SegmentIDs []int64
	// PhoneNumbers restricts to mentors with one of these phone numbers.
	PhoneNumbers []string

	Actors    Int32Dimension
	Districts Int32Dimension
	Blocks    Int32Dimension
	// Schools matches through the teacher-school membership relation.
	Schools StringDimension

	// RequireToken limits results to mentors with a non-empty FCM token.
	RequireToken bool
}

// SegmentPredicate matches reachable mentors belonging to any of the
// given segments.
func SegmentPredicate(segmentIDs ...int64) MentorPredicate {
	return MentorPredicate{SegmentIDs: segmentIDs, RequireToken: true}
}

// PhonePredicate matches mentors by explicit phone numbers, reachable or
// not.
func PhonePredicate(phoneNumbers []string) MentorPredicate {
	return MentorPredicate{PhoneNumbers: phoneNumbers}
}
