package schema

// LibraryTable represents the 'core.library' table
type LibraryTable struct {
	Table             string
	ID                string
	Name              string
	Path              string
	ScanIntervalHours string
	CreatedAt         string
}

// Library is the schema definition for core.library
var Library = LibraryTable{
	Table:             "core.library",
	ID:                "id",
	Name:              "name",
	Path:              "path",
	ScanIntervalHours: "scanintervalhours",
	CreatedAt:         "createdat",
}

func (t LibraryTable) Columns() []string {
	return []string{t.ID, t.Name, t.Path, t.ScanIntervalHours, t.CreatedAt}
}

// LibraryIgnoredPrefixTable represents the 'core.libraryignoredprefix' table
type LibraryIgnoredPrefixTable struct {
	Table        string
	LibraryID    string
	RelativePath string
}

// LibraryIgnoredPrefix is the schema definition for core.libraryignoredprefix
var LibraryIgnoredPrefix = LibraryIgnoredPrefixTable{
	Table:        "core.libraryignoredprefix",
	LibraryID:    "libraryid",
	RelativePath: "relativepath",
}
