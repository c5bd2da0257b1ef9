package schema

// ExcludedFileTable represents the 'core.excludedfile' table
type ExcludedFileTable struct {
	Table        string
	ID           string
	LibraryID    string
	RelativePath string
	ContentHash  string
	ExcludedDate string
	Reason       string
}

// ExcludedFile is the schema definition for core.excludedfile
var ExcludedFile = ExcludedFileTable{
	Table:        "core.excludedfile",
	ID:           "id",
	LibraryID:    "libraryid",
	RelativePath: "relativepath",
	ContentHash:  "contenthash",
	ExcludedDate: "excludeddate",
	Reason:       "reason",
}

func (t ExcludedFileTable) Columns() []string {
	return []string{t.ID, t.LibraryID, t.RelativePath, t.ContentHash, t.ExcludedDate, t.Reason}
}
