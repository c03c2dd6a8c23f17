package card

import "strings"

// latexEscaper maps LaTeX special characters to their literal forms.
// strings.Replacer works in one pass, so the braces introduced for
// backslash, tilde and caret are not escaped a second time.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`%`, `\%`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeLaTeX makes user text safe to place inside a LaTeX node.
// Whitespace is left alone, so word boundaries are unchanged.
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}
