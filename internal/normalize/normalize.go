package normalize

import (
	"errors"
	"strings"

	"github.com/TobiSchelling/feedshelf/internal/article"
	"github.com/TobiSchelling/feedshelf/internal/feed"
)

// ErrMissingField is returned for entries without a title or link.
var ErrMissingField = errors.New("entry is missing title or link")

// Normalizer turns raw feed entries into articles.
type Normalizer struct {
	summaryLength int
}

// New creates a Normalizer. A non-positive summaryLength selects the default.
func New(summaryLength int) *Normalizer {
	if summaryLength <= 0 {
		summaryLength = DefaultSummaryLength
	}
	return &Normalizer{summaryLength: summaryLength}
}

// Normalize builds the article for entry e published by src.
func (n *Normalizer) Normalize(e feed.Entry, src feed.Source) (article.Article, error) {
	link := strings.TrimSpace(e.Link)
	title := strings.TrimSpace(e.Title)
	if link == "" || title == "" {
		return article.Article{}, ErrMissingField
	}

	date := ParseDate(e.Published)

	imageHTML := e.Description
	if e.Content != "" {
		imageHTML = e.Content
	}

	summaryHTML := e.Description
	if strings.TrimSpace(summaryHTML) == "" {
		summaryHTML = e.Content
	}

	return article.Article{
		Title:           title,
		Link:            link,
		Published:       e.Published,
		PublishedParsed: date.String(),
		Source:          src.Title,
		Image:           FirstImage(imageHTML, link),
		Summary:         Summarize(summaryHTML, n.summaryLength),
		Tags:            NormalizeTags(e.Categories, src.ManualTags),
	}, nil
}
