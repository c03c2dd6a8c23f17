// Package phrase turns raw recovery phrases into the text fragments that
// are substituted into the card template.
//
// All functions are pure: they only split, pad and join strings. Anything
// LaTeX-specific that they emit (the inter-word spacer and the line break)
// is exported so callers and tests can recognise it.
package phrase

import (
	"fmt"
	"strings"
)

const (
	// Spacer separates words inside one line of a wrapped phrase.
	Spacer = `\hspace{0.5em}`

	// LineBreak joins the two lines of a wrapped phrase. The trailing
	// indentation keeps the generated source aligned with the template.
	LineBreak = "\\\\[4pt]\n        "

	// Placeholder fills seed-word slots the user did not supply.
	Placeholder = "???"

	// WrapThreshold is the largest word count that stays on one line.
	WrapThreshold = 6

	// SeedWordCount is the number of words in a MetaMask recovery phrase.
	SeedWordCount = 12
)

// FormatLongPhrase lays out a phrase for the narrow Proton region.
// Up to WrapThreshold words stay on one line; longer phrases are split
// at the word midpoint (lower half first) into two lines.
func FormatLongPhrase(text string) string {
	words := strings.Fields(text)
	if len(words) <= WrapThreshold {
		return strings.Join(words, Spacer)
	}

	mid := len(words) / 2
	first := strings.Join(words[:mid], Spacer)
	second := strings.Join(words[mid:], Spacer)
	return first + LineBreak + second
}

// FormatShortPhrase trims surrounding whitespace only.
func FormatShortPhrase(text string) string {
	return strings.TrimSpace(text)
}

// WordCountWarning reports a seed phrase whose length is not SeedWordCount.
// It is a warning: rendering continues with padded or excess words.
type WordCountWarning struct {
	Found    int
	Expected int
}

// Error satisfies the error interface so the warning can be logged
// like any other diagnostic.
func (w *WordCountWarning) Error() string {
	return fmt.Sprintf("MetaMask phrase has %d words (expected %d)", w.Found, w.Expected)
}

// FormatSeedWords splits a seed phrase into words and pads it with
// Placeholder up to SeedWordCount entries. Extra words are kept; the
// renderer only uses the first SeedWordCount of them.
//
// A non-nil warning is returned whenever the phrase does not contain
// exactly SeedWordCount words.
func FormatSeedWords(text string) ([]string, *WordCountWarning) {
	words := strings.Fields(text)

	var warning *WordCountWarning
	if len(words) != SeedWordCount {
		warning = &WordCountWarning{Found: len(words), Expected: SeedWordCount}
	}

	for len(words) < SeedWordCount {
		words = append(words, Placeholder)
	}
	return words, warning
}

// SplitLines returns the lines of a phrase produced by FormatLongPhrase,
// with the spacer removed, as word slices. It is the inverse used when
// reporting how a phrase was wrapped.
func SplitLines(formatted string) [][]string {
	var lines [][]string
	for _, line := range strings.Split(formatted, LineBreak) {
		line = strings.ReplaceAll(line, Spacer, " ")
		lines = append(lines, strings.Fields(line))
	}
	return lines
}
