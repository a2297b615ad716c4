package processor

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	controlChars   = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes raw extracted text: whitespace runs become single
// spaces, control characters are stripped, line endings become LF, and runs
// of three or more newlines collapse to two.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = controlChars.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

const truncateSuffix = "..."

// Truncate shortens text to at most maxLen runes, appending an ellipsis when
// anything was cut.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	cut := maxLen - len(truncateSuffix)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + truncateSuffix
}
