package tag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  Blue Eyes  ", "blue_eyes"},
		{"collapses internal whitespace", "blue   eyes", "blue_eyes"},
		{"replaces colon", "character:naruto", "character_naruto"},
		{"lowercases", "BLUE_EYES", "blue_eyes"},
		{"tabs and newlines collapse", "blue\teyes\n", "blue_eyes"},
		{"already sanitized is idempotent", "blue_eyes", "blue_eyes"},
		{"all whitespace sanitizes to empty", "   ", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Sanitize(c.in))
		})
	}
}

func TestSanitize_CapsAt100Runes(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := Sanitize(long)
	assert.Len(t, got, 100)
}

func TestSanitize_RepeatIsNoOp(t *testing.T) {
	in := "Some Weird:Tag  Name"
	once := Sanitize(in)
	twice := Sanitize(once)
	assert.Equal(t, once, twice)
}
