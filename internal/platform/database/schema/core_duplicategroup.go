package schema

// DuplicateGroupTable represents the 'core.duplicategroup' table
type DuplicateGroupTable struct {
	Table             string
	ID                string
	Type              string
	SimilarityPercent string
	IsResolved        string
	DetectedDate      string
}

// DuplicateGroup is the schema definition for core.duplicategroup
var DuplicateGroup = DuplicateGroupTable{
	Table:             "core.duplicategroup",
	ID:                "id",
	Type:              "type",
	SimilarityPercent: "similaritypercent",
	IsResolved:        "isresolved",
	DetectedDate:      "detecteddate",
}

func (t DuplicateGroupTable) Columns() []string {
	return []string{t.ID, t.Type, t.SimilarityPercent, t.IsResolved, t.DetectedDate}
}

// DuplicateGroupEntryTable represents the 'core.duplicategroupentry' table
type DuplicateGroupEntryTable struct {
	Table           string
	DuplicateGroupID string
	PostID          string
}

// DuplicateGroupEntry is the schema definition for core.duplicategroupentry
var DuplicateGroupEntry = DuplicateGroupEntryTable{
	Table:            "core.duplicategroupentry",
	DuplicateGroupID: "duplicategroupid",
	PostID:           "postid",
}

func (t DuplicateGroupEntryTable) Columns() []string {
	return []string{t.DuplicateGroupID, t.PostID}
}
