package normalize

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstImage returns the src of the first <img> carrying one, resolved
// against baseURL. Returns nil if there is no content or no image.
func FirstImage(htmlContent, baseURL string) *string {
	if strings.TrimSpace(htmlContent) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	src, ok := doc.Find("img[src]").First().Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return nil
	}

	resolved := ResolveURL(baseURL, src)
	return &resolved
}

// ResolveURL resolves ref against base, returning ref unchanged if either
// does not parse.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
