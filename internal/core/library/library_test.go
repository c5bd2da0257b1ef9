package library

import "testing"

func TestLibrary_IsIgnored_SegmentAligned(t *testing.T) {
	lib := &Library{IgnoredPrefixes: []string{"thumbs", "raw/scratch"}}

	cases := []struct {
		path string
		want bool
	}{
		{"thumbs/a.jpg", true},
		{"thumbs", true},
		{"thumbsup.jpg", false}, // shares the prefix string but not a path segment
		{"raw/scratch/a.jpg", true},
		{"raw/scratch2/a.jpg", false},
		{"other/a.jpg", false},
	}

	for _, c := range cases {
		if got := lib.IsIgnored(c.path); got != c.want {
			t.Errorf("IsIgnored(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestLibrary_IsIgnored_NormalizesSeparatorsAndSlashes(t *testing.T) {
	lib := &Library{IgnoredPrefixes: []string{"/thumbs/"}}

	if !lib.IsIgnored(`thumbs\a.jpg`) {
		t.Fatal("expected a backslash-separated path to normalize and match")
	}
}

func TestLibrary_IsIgnored_NoPrefixesNeverIgnores(t *testing.T) {
	lib := &Library{}
	if lib.IsIgnored("anything/at/all.jpg") {
		t.Fatal("a library with no ignored prefixes should never ignore a path")
	}
}
