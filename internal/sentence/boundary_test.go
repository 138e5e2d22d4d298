package sentence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func periodAt(t *testing.T, text, marker string) ([]rune, int) {
	t.Helper()
	byteIdx := strings.Index(text, marker)
	require.GreaterOrEqual(t, byteIdx, 0, "marker %q not in %q", marker, text)
	prefix := []rune(text[:byteIdx+len(marker)-1])
	return []rune(text), len(prefix)
}

func TestIsBoundaryPeriod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		marker string
		want   bool
	}{
		{name: "plain sentence", text: "I led the team. Then we shipped.", marker: "team.", want: true},
		{name: "honorific", text: "I reported to Dr. Smith directly.", marker: "Dr.", want: false},
		{name: "decimal", text: "Latency fell by 2.5 seconds.", marker: "2.", want: false},
		{name: "embedded token", text: "See example.com for details.", marker: "example.", want: false},
		{name: "ambiguous abbreviation before capital", text: "We used Go, Rust, etc. Then it grew.", marker: "etc.", want: true},
		{name: "ambiguous abbreviation before lowercase", text: "We used Go, Rust, etc. and more.", marker: "etc.", want: false},
		{name: "initialism before promoter", text: "We moved to the u.s. however the team stayed.", marker: "u.s.", want: true},
		{name: "locative initialism before pronoun", text: "In the U.S. we hired fast.", marker: "U.S.", want: false},
		{name: "end of text", text: "Done.", marker: "Done.", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runes, idx := periodAt(t, tc.text, tc.marker)
			require.Equal(t, tc.want, IsBoundaryPeriod(runes, idx))
		})
	}
}

func TestEndsHandlesQuestionAndExclamation(t *testing.T) {
	t.Parallel()

	runes := []rune("Really? Yes! ok")
	require.True(t, Ends(runes, 6))
	require.True(t, Ends(runes, 11))
	require.False(t, Ends(runes, 0))
	require.False(t, Ends(runes, -1))
	require.False(t, Ends(runes, 99))
}

func TestKeepsLowercase(t *testing.T) {
	t.Parallel()

	require.True(t, KeepsLowercase("e.g."))
	require.True(t, KeepsLowercase("VS"))
	require.False(t, KeepsLowercase("dr"))
}

func TestIsPrefixRune(t *testing.T) {
	t.Parallel()

	require.True(t, IsPrefixRune('"'))
	require.True(t, IsPrefixRune(')'))
	require.False(t, IsPrefixRune('a'))
}
