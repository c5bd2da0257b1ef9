package schema

// TagTable represents the 'core.tag' table
type TagTable struct {
	Table         string
	ID            string
	Name          string
	TagCategoryID string
	PostCount     string
	CreatedAt     string
}

// Tag is the schema definition for core.tag
var Tag = TagTable{
	Table:         "core.tag",
	ID:            "id",
	Name:          "name",
	TagCategoryID: "tagcategoryid",
	PostCount:     "postcount",
	CreatedAt:     "createdat",
}

func (t TagTable) Columns() []string {
	return []string{t.ID, t.Name, t.TagCategoryID, t.PostCount, t.CreatedAt}
}

// TagCategoryTable represents the 'core.tagcategory' table
type TagCategoryTable struct {
	Table     string
	ID        string
	Name      string
	Color     string
	SortOrder string
}

// TagCategory is the schema definition for core.tagcategory
var TagCategory = TagCategoryTable{
	Table:     "core.tagcategory",
	ID:        "id",
	Name:      "name",
	Color:     "color",
	SortOrder: "sortorder",
}

func (t TagCategoryTable) Columns() []string {
	return []string{t.ID, t.Name, t.Color, t.SortOrder}
}

// PostTagTable represents the 'core.posttag' table
type PostTagTable struct {
	Table  string
	PostID string
	TagID  string
	Source string
}

// PostTag is the schema definition for core.posttag
var PostTag = PostTagTable{
	Table:  "core.posttag",
	PostID: "postid",
	TagID:  "tagid",
	Source: "source",
}

func (t PostTagTable) Columns() []string {
	return []string{t.PostID, t.TagID, t.Source}
}
