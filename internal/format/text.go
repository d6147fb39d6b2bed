package format

import (
	"html"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultTruncateLength is the snippet length used by list rows.
const DefaultTruncateLength = 150

var (
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	breakRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockRe      = regexp.MustCompile(`(?i)</?(div|p|h[1-6]|li|td|th)(\s[^>]*)?>`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n`)
	spacesRe     = regexp.MustCompile(`[ \t]+`)

	strict = bluemonday.StrictPolicy()
)

// TextFromHTML reduces an email body to plain text. Block elements and
// <br> become line breaks, every other tag is dropped, entities are decoded.
func TextFromHTML(body string) string {
	if body == "" {
		return ""
	}

	text := scriptRe.ReplaceAllString(body, "")
	text = styleRe.ReplaceAllString(text, "")
	text = breakRe.ReplaceAllString(text, "\n")
	text = blockRe.ReplaceAllString(text, "\n")

	// The strict policy drops all markup and leaves escaped text behind.
	text = html.UnescapeString(strict.Sanitize(text))
	text = strings.ReplaceAll(text, "\u00a0", " ")

	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// MarkdownFromHTML converts an email body for the glamour reader. Plain text
// bodies pass through. On conversion failure it falls back to TextFromHTML.
func MarkdownFromHTML(body string) string {
	if !strings.Contains(body, "<") {
		return strings.TrimSpace(body)
	}
	body = scriptRe.ReplaceAllString(body, "")
	body = styleRe.ReplaceAllString(body, "")

	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return TextFromHTML(body)
	}
	return strings.TrimSpace(md)
}

// Truncate shortens s to n runes and appends "...". n <= 0 uses
// DefaultTruncateLength.
func Truncate(s string, n int) string {
	if n <= 0 {
		n = DefaultTruncateLength
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
