package dto

// GetSegmentFiltersRequest carries the staged lookup inputs as raw comma
// lists. "-1" on a stage means "all" and skips the dependent stage.
type GetSegmentFiltersRequest struct {
	Actors    string `query:"actors"`
	Districts string `query:"districts"`
	Blocks    string `query:"blocks"`
}

// LookupItem is an id/label option for the filter UI.
type LookupItem struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// SchoolLookupItem is a school option keyed by UDISE code.
type SchoolLookupItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SegmentFiltersResponse returns the four lookup stages. A stage whose
// guard did not fire comes back as an empty list.
type SegmentFiltersResponse struct {
	Actors    []LookupItem       `json:"actors"`
	Districts []LookupItem       `json:"districts"`
	Blocks    []LookupItem       `json:"blocks"`
	Schools   []SchoolLookupItem `json:"schools"`
}
