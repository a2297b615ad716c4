package connector

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptBlocks = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleBlocks  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	lineBreaks   = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockTags    = regexp.MustCompile(`(?i)</?(?:p|div|h[1-6]|li|ul|ol|table|thead|tbody|tr|td|th|blockquote|pre|section|article|header|footer)\b[^>]*>`)
	anyTag       = regexp.MustCompile(`<[^>]*>`)
)

// htmlToText flattens Confluence storage-format HTML into plain text. Block
// boundaries become newlines and entities are decoded; blank lines are
// dropped.
func htmlToText(content string) string {
	if content == "" {
		return ""
	}
	text := htmlComments.ReplaceAllString(content, "")
	text = scriptBlocks.ReplaceAllString(text, "")
	text = styleBlocks.ReplaceAllString(text, "")
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = blockTags.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
