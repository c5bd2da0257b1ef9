package safepath

import (
	"path/filepath"
	"testing"
)

func TestResolve_Allows(t *testing.T) {
	root := filepath.Join("var", "lib", "booru", "library1")

	cases := []struct {
		rel  string
		want string
	}{
		{"photo.jpg", filepath.Join(root, "photo.jpg")},
		{"sub/photo.jpg", filepath.Join(root, "sub", "photo.jpg")},
		{".", root},
		{"", root},
	}

	for _, c := range cases {
		got, err := Resolve(root, c.rel)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", c.rel, err)
		}
		if got != c.want {
			t.Fatalf("Resolve(%q) = %q, want %q", c.rel, got, c.want)
		}
	}
}

func TestResolve_RejectsEscapes(t *testing.T) {
	root := filepath.Join("var", "lib", "booru", "library1")

	cases := []string{
		"../library2/photo.jpg",
		"../../etc/passwd",
		"sub/../../escape.jpg",
	}

	for _, rel := range cases {
		if _, err := Resolve(root, rel); err == nil {
			t.Fatalf("Resolve(%q) expected an error, got none", rel)
		}
	}
}

func TestResolve_RejectsSiblingWithSamePrefix(t *testing.T) {
	root := filepath.Join("var", "lib", "booru", "library1")
	// "library10" shares the "library1" prefix but is not under root;
	// the separator-aware check must not treat it as contained.
	sibling := filepath.Join("var", "lib", "booru", "library10", "photo.jpg")
	rel, err := filepath.Rel(root, sibling)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(root, rel); err == nil {
		t.Fatalf("Resolve(%q) expected an error for a sibling-prefix escape, got none", rel)
	}
}
