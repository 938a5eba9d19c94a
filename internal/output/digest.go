package output

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/feedshelf/internal/article"
	"github.com/TobiSchelling/feedshelf/internal/normalize"
)

// Markdown renders articles as a Markdown digest, one section per article.
func Markdown(heading string, articles []article.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(heading))
	if len(articles) == 0 {
		b.WriteString("_No articles._\n")
		return b.String()
	}

	for _, a := range articles {
		fmt.Fprintf(&b, "## [%s](%s)\n\n", escapeMarkdown(singleLine(a.Title)), destination(a.Link))

		meta := []string{escapeMarkdown(a.Source)}
		if date := displayDate(a.PublishedParsed); date != "" {
			meta = append(meta, date)
		}
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " · "))

		if a.Image != nil {
			fmt.Fprintf(&b, "![](%s)\n\n", destination(*a.Image))
		}
		if a.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(a.Summary))
		}
		if len(a.Tags) > 0 {
			tags := make([]string, len(a.Tags))
			for i, t := range a.Tags {
				tags[i] = "`" + strings.ReplaceAll(t, "`", "") + "`"
			}
			fmt.Fprintf(&b, "%s\n\n", strings.Join(tags, " "))
		}
	}
	return b.String()
}

func displayDate(publishedParsed string) string {
	if t, ok := normalize.ParseStored(publishedParsed); ok {
		return t.Format("Jan 02, 2006")
	}
	return publishedParsed
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// destination wraps a URL as a pointy-bracket link destination, which may
// contain spaces but not line breaks or unescaped angle brackets.
func destination(u string) string {
	return "<" + destinationEscaper.Replace(strings.TrimSpace(u)) + ">"
}

var destinationEscaper = strings.NewReplacer(
	"\r", "", "\n", "", "<", "%3C", ">", "%3E",
)

// singleLine collapses line breaks so a title stays inside its heading.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
