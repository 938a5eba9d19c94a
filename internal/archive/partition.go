package archive

import (
	"time"

	"github.com/TobiSchelling/feedshelf/internal/article"
	"github.com/TobiSchelling/feedshelf/internal/normalize"
)

// Partition returns the articles published at or after now-window and
// inserts every article into arc if its link is not archived yet.
//
// Articles whose date cannot be parsed count as current.
func Partition(articles []article.Article, arc *Archive, now time.Time, window time.Duration) []article.Article {
	cutoff := now.UTC().Add(-window)
	current := make([]article.Article, 0, len(articles))

	for _, a := range articles {
		if IsCurrent(a, cutoff) {
			current = append(current, a)
		}
		arc.Insert(a)
	}
	return current
}

// IsCurrent reports whether a was published at or after cutoff.
func IsCurrent(a article.Article, cutoff time.Time) bool {
	published, ok := normalize.ParseStored(a.PublishedParsed)
	if !ok {
		return true
	}
	return !published.Before(cutoff)
}
