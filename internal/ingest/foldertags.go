package ingest

import (
	"strings"

	"github.com/booruoss/booru/internal/core/tag"
)

// DeriveFolderTagNames splits relativePath on '/', drops the filename
// segment, and normalizes each remaining folder segment into a candidate
// tag name using the same sanitization rule as manual tags, dropping empty
// segments. Order is preserved and duplicates (case-insensitive, since
// Sanitize already lowercases) are removed, keeping the first occurrence
// (spec §6).
func DeriveFolderTagNames(relativePath string) []string {
	segments := strings.Split(relativePath, "/")
	if len(segments) > 0 {
		segments = segments[:len(segments)-1]
	}

	seen := make(map[string]bool, len(segments))
	names := make([]string, 0, len(segments))

	for _, seg := range segments {
		normalized := tag.Sanitize(seg)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		names = append(names, normalized)
	}
	return names
}
