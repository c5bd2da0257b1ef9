// Package post models one catalog entry per media file: its identity,
// derived metadata, tag assignments, and external-URL sources.
package post

import "time"

// TagSource identifies how a PostTag assignment was made.
type TagSource string

const (
	SourceManual TagSource = "manual"
	SourceFolder TagSource = "folder"
	SourceAI     TagSource = "ai"
)

// TagAssignment is one row of the PostTag association: a tag attached to a
// post via a particular source. The same tag may be attached via more than
// one source simultaneously.
type TagAssignment struct {
	TagID  int       `json:"tag_id"`
	Source TagSource `json:"source"`
}

// Source is one external URL recorded against a post, in display order.
type Source struct {
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// Post is one catalog entry for one media file.
type Post struct {
	ID                 int       `json:"id"`
	LibraryID          int       `json:"library_id"`
	RelativePath       string    `json:"relative_path"`
	ContentHash        string    `json:"content_hash"`
	SizeBytes          int64     `json:"size_bytes"`
	Width              int       `json:"width"`
	Height             int       `json:"height"`
	ContentType        string    `json:"content_type"`
	ImportDate         time.Time `json:"import_date"`
	FileModifiedDate   time.Time `json:"file_modified_date"`
	FileIdentityDevice *string   `json:"file_identity_device,omitempty"`
	FileIdentityValue  *string   `json:"file_identity_value,omitempty"`
	PdqHash256         *string   `json:"pdq_hash_256,omitempty"`
	IsFavorite         bool      `json:"is_favorite"`

	Sources []Source        `json:"sources,omitempty"`
	Tags    []TagAssignment `json:"tags,omitempty"`
}

// NeedsMetadata reports whether dimensions/content-type still need extraction.
func (p *Post) NeedsMetadata() bool {
	return p.Width == 0 || p.ContentType == ""
}

// NeedsSimilarity reports whether the perceptual hash still needs computing.
// Only applicable to image posts; callers must also check ContentType.
func (p *Post) NeedsSimilarity() bool {
	return p.PdqHash256 == nil || *p.PdqHash256 == ""
}

// IsImage reports whether the post's MIME type is an image/* type.
func (p *Post) IsImage() bool {
	return len(p.ContentType) >= 6 && p.ContentType[:6] == "image/"
}

// HasTag reports whether the post already carries tagID via any source.
func (p *Post) HasTag(tagID int) bool {
	for _, t := range p.Tags {
		if t.TagID == tagID {
			return true
		}
	}
	return false
}

// HasTagFromSource reports whether the post carries tagID specifically via source.
func (p *Post) HasTagFromSource(tagID int, source TagSource) bool {
	for _, t := range p.Tags {
		if t.TagID == tagID && t.Source == source {
			return true
		}
	}
	return false
}
