package normalize

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSummaryLength is the rune limit applied before the ellipsis.
const DefaultSummaryLength = 300

// PlainText strips markup, joining text nodes with single spaces and
// collapsing whitespace. Script and style bodies are dropped.
func PlainText(htmlContent string) string {
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	var parts []string
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.StartTagToken:
			if a := tokenAtom(z); a == atom.Script || a == atom.Style {
				skip++
			}
		case html.EndTagToken:
			if a := tokenAtom(z); (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, string(z.Text()))
			}
		}
	}
}

func tokenAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}

// Truncate cuts s to at most max runes, backing off to the last complete
// word and appending "...". Strings within the limit are returned unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	cut := string([]rune(s)[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ") + "..."
}

// Summarize converts an HTML blob into a plain-text summary of at most max
// runes plus the ellipsis.
func Summarize(htmlContent string, max int) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}
	return Truncate(PlainText(htmlContent), max)
}
