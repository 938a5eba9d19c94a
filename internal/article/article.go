package article

import (
	"sort"
)

// Article is the normalized, persisted representation of a feed entry.
type Article struct {
	Title           string   `json:"title"`
	Link            string   `json:"link"`
	Published       string   `json:"published"`
	PublishedParsed string   `json:"published_parsed"`
	Source          string   `json:"source"`
	Image           *string  `json:"image"`
	Summary         string   `json:"summary"`
	Tags            []string `json:"tags"`
}

// SortNewestFirst orders articles by PublishedParsed descending.
// Parsed dates are UTC RFC 3339, so string order is chronological order.
func SortNewestFirst(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedParsed > articles[j].PublishedParsed
	})
}

// Deduplicator drops articles whose link was already seen during this run.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Admit reports whether link is new, recording it as seen.
func (d *Deduplicator) Admit(link string) bool {
	if _, ok := d.seen[link]; ok {
		return false
	}
	d.seen[link] = struct{}{}
	return true
}

// Seen returns the number of distinct links admitted.
func (d *Deduplicator) Seen() int {
	return len(d.seen)
}
