package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"plain":          "plain",
		`a/b\c:d`:        "a_b_c_d",
		`x*y?z"<>|`:      "x_y_z____",
		"  spaced  ":     "spaced",
		"..dots..":       "dots",
		" . ":            "",
		"https://x.test": "https___x.test",
	}
	for in, want := range tests {
		require.Equal(t, want, SanitizeFileName(in), "input %q", in)
	}
}

func TestFileNamer(t *testing.T) {
	n := NewFileNamer()
	require.Equal(t, "A", n.Next("A", 1))
	require.Equal(t, "A_2", n.Next("A", 2))
	require.Equal(t, "A_3", n.Next("A", 3))
	require.Equal(t, "code_4", n.Next("...", 4))
	require.Equal(t, "a_b", n.Next("a/b", 5))
	require.Equal(t, "a_b_2", n.Next("a:b", 6))
}

func TestFileNamer_LiteralSuffixCollision(t *testing.T) {
	n := NewFileNamer()
	require.Equal(t, "A_2", n.Next("A_2", 1))
	require.Equal(t, "A", n.Next("A", 2))
	require.Equal(t, "A_3", n.Next("A", 3))
}
