package phrase

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// words builds a phrase of n distinct words: "w1 w2 ... wn".
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i+1)
	}
	return strings.Join(parts, " ")
}

// TestFormatLongPhrase_ShortStaysOnOneLine covers every length up to the
// wrap threshold: no line break may appear.
func TestFormatLongPhrase_ShortStaysOnOneLine(t *testing.T) {
	for n := 0; n <= WrapThreshold; n++ {
		t.Run(fmt.Sprintf("%d words", n), func(t *testing.T) {
			got := FormatLongPhrase(words(n))
			assert.NotContains(t, got, LineBreak)
			assert.NotContains(t, got, `\\`)
			if n > 0 {
				assert.Equal(t, n-1, strings.Count(got, Spacer))
			}
		})
	}
}

// TestFormatLongPhrase_LongWrapsAtMidpoint checks the split for lengths
// above the threshold: both halves non-empty, every word kept in order,
// sizes differing only by the parity of n.
func TestFormatLongPhrase_LongWrapsAtMidpoint(t *testing.T) {
	for _, n := range []int{7, 8, 12, 13, 24, 25} {
		t.Run(fmt.Sprintf("%d words", n), func(t *testing.T) {
			got := FormatLongPhrase(words(n))
			require.Equal(t, 1, strings.Count(got, LineBreak))

			lines := SplitLines(got)
			require.Len(t, lines, 2)
			assert.NotEmpty(t, lines[0])
			assert.NotEmpty(t, lines[1])
			assert.Len(t, lines[0], n/2)
			assert.Equal(t, n%2, len(lines[1])-len(lines[0]))

			joined := append(append([]string{}, lines[0]...), lines[1]...)
			assert.Equal(t, strings.Fields(words(n)), joined)
		})
	}
}

// TestFormatLongPhrase_SevenWords is the documented scenario: seven words
// wrap into lines of three and four.
func TestFormatLongPhrase_SevenWords(t *testing.T) {
	got := FormatLongPhrase("alpha beta gamma delta epsilon zeta eta")

	want := `alpha\hspace{0.5em}beta\hspace{0.5em}gamma` + LineBreak +
		`delta\hspace{0.5em}epsilon\hspace{0.5em}zeta\hspace{0.5em}eta`
	assert.Equal(t, want, got)
	assert.Equal(t, [][]string{
		{"alpha", "beta", "gamma"},
		{"delta", "epsilon", "zeta", "eta"},
	}, SplitLines(got))
}

// TestFormatLongPhrase_CollapsesWhitespace verifies that irregular spacing
// and surrounding newlines do not produce empty words.
func TestFormatLongPhrase_CollapsesWhitespace(t *testing.T) {
	got := FormatLongPhrase("  one\ttwo \n three  ")
	assert.Equal(t, `one\hspace{0.5em}two\hspace{0.5em}three`, got)
}

// TestFormatShortPhrase trims only the outer whitespace.
func TestFormatShortPhrase(t *testing.T) {
	assert.Equal(t, "ABCD-EFGH  IJKL", FormatShortPhrase("  ABCD-EFGH  IJKL \n"))
	assert.Equal(t, "", FormatShortPhrase("   "))
}

// TestFormatSeedWords_ThreeWords is the documented padding scenario.
func TestFormatSeedWords_ThreeWords(t *testing.T) {
	got, warning := FormatSeedWords("one two three")

	assert.Equal(t, []string{
		"one", "two", "three",
		"???", "???", "???", "???", "???", "???", "???", "???", "???",
	}, got)
	require.NotNil(t, warning)
	assert.Equal(t, 3, warning.Found)
	assert.Equal(t, 12, warning.Expected)
	assert.Equal(t, "MetaMask phrase has 3 words (expected 12)", warning.Error())
}

// TestFormatSeedWords_Lengths checks the length and content guarantees for
// short, exact, and long phrases.
func TestFormatSeedWords_Lengths(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		wantWarning bool
	}{
		{"empty", 0, true},
		{"one word", 1, true},
		{"eleven words", 11, true},
		{"exactly twelve", 12, false},
		{"thirteen words", 13, true},
		{"twenty-four words", 24, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Fields(words(tt.n))
			got, warning := FormatSeedWords(words(tt.n))

			require.GreaterOrEqual(t, len(got), SeedWordCount)
			if tt.n < SeedWordCount {
				assert.Len(t, got, SeedWordCount)
				assert.Equal(t, input, got[:tt.n])
				for _, w := range got[tt.n:] {
					assert.Equal(t, Placeholder, w)
				}
			} else {
				assert.Equal(t, input[:SeedWordCount], got[:SeedWordCount])
			}

			if tt.wantWarning {
				require.NotNil(t, warning)
				assert.Equal(t, tt.n, warning.Found)
			} else {
				assert.Nil(t, warning)
			}
		})
	}
}
