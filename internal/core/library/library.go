// Package library models a configured root directory whose contents map
// 1-to-1 to posts, and the ignored-path rules applied during sync.
package library

import (
	"strings"
	"time"
)

// Library is a configured root directory scanned for media.
type Library struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Path              string    `json:"path"`
	ScanIntervalHours int       `json:"scan_interval_hours"`
	CreatedAt         time.Time `json:"-"`

	// IgnoredPrefixes holds relative-path prefixes under Path that sync
	// skips entirely. Populated by hydrating queries; empty otherwise.
	IgnoredPrefixes []string `json:"ignored_prefixes,omitempty"`
}

// IsIgnored reports whether relPath equals or descends from any configured
// ignored prefix. Comparison is segment-aligned: "foo/bar" is ignored by
// prefix "foo", but "foobar" is not.
func (l *Library) IsIgnored(relPath string) bool {
	normalized := normalizePath(relPath)
	for _, prefix := range l.IgnoredPrefixes {
		p := normalizePath(prefix)
		if p == "" {
			continue
		}
		if normalized == p || strings.HasPrefix(normalized, p+"/") {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(p, "/")
	return p
}
