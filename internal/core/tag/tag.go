// Package tag models tag categories and the tags posts are annotated with.
package tag

import (
	"strings"
	"time"
)

// TagCategory groups tags for display and color-coding (e.g. "character",
// "artist"). Assignment is optional — a tag may have no category.
type TagCategory struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

// Tag is a single label posts can be annotated with. Name is unique,
// lowercased, and sanitized per Sanitize.
type Tag struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	TagCategoryID *int      `json:"tag_category_id,omitempty"`
	PostCount     int       `json:"post_count"`
	CreatedAt     time.Time `json:"-"`
}

// Sanitize applies the tag-name normalization rule (spec §6): trim,
// collapse runs of whitespace to a single underscore, replace ':' with
// '_', lowercase, and cap at 100 runes. The result may be empty, which
// callers must reject.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ":", "_")

	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !prevSpace {
				b.WriteByte('_')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}

	out := strings.ToLower(b.String())
	runes := []rune(out)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes)
}
