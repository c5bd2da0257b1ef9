package schema

// PostTable represents the 'core.post' table
type PostTable struct {
	Table               string
	ID                  string
	LibraryID           string
	RelativePath        string
	ContentHash         string
	SizeBytes           string
	Width               string
	Height              string
	ContentType         string
	ImportDate          string
	FileModifiedDate    string
	FileIdentityDevice  string
	FileIdentityValue   string
	PdqHash256          string
	IsFavorite          string
}

// Post is the schema definition for core.post
var Post = PostTable{
	Table:              "core.post",
	ID:                 "id",
	LibraryID:          "libraryid",
	RelativePath:       "relativepath",
	ContentHash:        "contenthash",
	SizeBytes:          "sizebytes",
	Width:              "width",
	Height:             "height",
	ContentType:        "contenttype",
	ImportDate:         "importdate",
	FileModifiedDate:   "filemodifieddate",
	FileIdentityDevice: "fileidentitydevice",
	FileIdentityValue:  "fileidentityvalue",
	PdqHash256:         "pdqhash256",
	IsFavorite:         "isfavorite",
}

func (t PostTable) Columns() []string {
	return []string{
		t.ID, t.LibraryID, t.RelativePath, t.ContentHash, t.SizeBytes,
		t.Width, t.Height, t.ContentType, t.ImportDate, t.FileModifiedDate,
		t.FileIdentityDevice, t.FileIdentityValue, t.PdqHash256, t.IsFavorite,
	}
}

// PostSourceTable represents the 'core.postsource' table
type PostSourceTable struct {
	Table      string
	PostID     string
	URL        string
	SortOrder  string
}

// PostSource is the schema definition for core.postsource
var PostSource = PostSourceTable{
	Table:     "core.postsource",
	PostID:    "postid",
	URL:       "url",
	SortOrder: "sortorder",
}

func (t PostSourceTable) Columns() []string {
	return []string{t.PostID, t.URL, t.SortOrder}
}
