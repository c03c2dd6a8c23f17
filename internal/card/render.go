// Package card renders the recovery card LaTeX document.
//
// The document layout lives in card.tex, embedded verbatim into the binary.
// Rendering replaces a fixed set of placeholder tokens with formatted,
// LaTeX-escaped user input and produces the complete document source.
package card

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/shinji-kodama/recovery-card/internal/model"
	"github.com/shinji-kodama/recovery-card/internal/phrase"
)

// templateText is the LaTeX card layout with placeholder tokens.
//
//go:embed card.tex
var templateText string

// Placeholder tokens embedded in card.tex. No token is a substring of
// another, so the replacement order does not matter.
const (
	TokenProtonPhrase    = "<<PROTON_PHRASE>>"
	TokenBitwardenPhrase = "<<BITWARDEN_PHRASE>>"
	TokenMetaMaskAccount = "<<METAMASK_ACCOUNT>>"
)

// Assets are the image files card.tex includes by relative path. They
// must be present in the compiler's working directory.
var Assets = []string{
	"proton-logo.png",
	"bitwarden-logo.png",
	"metamask-logo.png",
}

// Document is the rendered LaTeX source.
type Document string

// Formatted holds every value that is substituted into the template.
type Formatted struct {
	Proton    string
	Bitwarden string
	Account   string
	SeedWords []string
}

// SeedWordToken returns the placeholder for the 1-based seed word position.
func SeedWordToken(position int) string {
	return fmt.Sprintf("<<WORD%d>>", position)
}

// Placeholders returns every placeholder token in the template.
func Placeholders() []string {
	tokens := []string{TokenProtonPhrase, TokenBitwardenPhrase, TokenMetaMaskAccount}
	for i := 1; i <= phrase.SeedWordCount; i++ {
		tokens = append(tokens, SeedWordToken(i))
	}
	return tokens
}

// Template returns the raw template text.
func Template() string {
	return templateText
}

// Format escapes the user's inputs and applies the phrase layout rules.
// A non-nil warning is returned when the seed phrase length is not 12.
func Format(in *model.RecoveryInputs) (*Formatted, *phrase.WordCountWarning) {
	seed, warning := phrase.FormatSeedWords(EscapeLaTeX(in.MetaMaskPhrase))
	return &Formatted{
		Proton:    phrase.FormatLongPhrase(EscapeLaTeX(in.ProtonPhrase)),
		Bitwarden: phrase.FormatShortPhrase(EscapeLaTeX(in.BitwardenCode)),
		Account:   strings.TrimSpace(EscapeLaTeX(in.MetaMaskAccount)),
		SeedWords: seed,
	}, warning
}

// Render substitutes the formatted inputs into the template.
//
// All tokens are replaced in a single pass, so text that was inserted is
// never scanned again: a phrase that happens to contain a token-shaped
// string is printed literally instead of being expanded.
func Render(in *model.RecoveryInputs) (Document, *phrase.WordCountWarning) {
	f, warning := Format(in)
	return f.Render(), warning
}

// Render substitutes f into the template. Only the first 12 seed words
// are used.
func (f *Formatted) Render() Document {
	pairs := []string{
		TokenProtonPhrase, f.Proton,
		TokenBitwardenPhrase, f.Bitwarden,
		TokenMetaMaskAccount, f.Account,
	}
	for i := 0; i < phrase.SeedWordCount; i++ {
		word := phrase.Placeholder
		if i < len(f.SeedWords) {
			word = f.SeedWords[i]
		}
		pairs = append(pairs, SeedWordToken(i+1), word)
	}
	return Document(strings.NewReplacer(pairs...).Replace(Template()))
}

// Leftover returns the placeholder tokens still present in doc.
// A rendered document built from ordinary input has none.
func Leftover(doc Document) []string {
	var left []string
	for _, token := range Placeholders() {
		if strings.Contains(string(doc), token) {
			left = append(left, token)
		}
	}
	return left
}
