package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*-[0-9a-f]{8}$`)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
	}{
		{"Jane Roe", "jane-roe-"},
		{"  Spaced   Out  ", "spaced-out-"},
		{"UPPER case", "upper-case-"},
		{"dr. alan o'brien", "dr-alan-o-brien-"},
		{"", "user-"},
		{"!!!", "user-"},
	}
	for _, tc := range cases {
		got := GenerateSlug(tc.name)
		require.Regexp(t, slugPattern, got, "input %q", tc.name)
		require.Contains(t, got, tc.prefix, "input %q", tc.name)
	}
}

func TestGenerateSlugUnique(t *testing.T) {
	a := GenerateSlug("Jane Roe")
	b := GenerateSlug("Jane Roe")
	require.NotEqual(t, a, b)
}
