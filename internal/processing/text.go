package processing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespace = regexp.MustCompile(`\s+`)

// excerptRunes caps excerpts taken from upstream description fields.
const excerptRunes = 300

// Excerpt reduces an HTML fragment to a short plain-text snippet: tags
// stripped, whitespace squeezed, truncated on a rune boundary. Input that
// is not parseable HTML comes back squeezed but otherwise untouched.
func Excerpt(fragment string) string {
	if fragment == "" {
		return ""
	}

	text := fragment
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
		text = doc.Text()
	}

	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) > excerptRunes {
		text = strings.TrimSpace(string(runes[:excerptRunes])) + "..."
	}
	return text
}

// ClassificationText builds the blob handed to the AI classifier. Absent
// fields contribute an empty string, the separator always stays.
func ClassificationText(title, content string) string {
	return title + " " + content
}
