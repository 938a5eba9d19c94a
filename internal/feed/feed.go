package feed

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is a raw feed item, before normalization.
type Entry struct {
	Title       string
	Link        string
	Published   string
	Description string
	Content     string
	Categories  []string
}

// Fetcher retrieves the raw entries of a single feed.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]Entry, error)
}

// Batch holds the entries fetched for one source.
type Batch struct {
	Source  Source
	Entries []Entry
	Err     error
}

// GofeedFetcher fetches and parses RSS/Atom feeds with gofeed.
type GofeedFetcher struct {
	parser *gofeed.Parser
}

// NewGofeedFetcher creates a fetcher with the given per-request timeout.
func NewGofeedFetcher(timeout time.Duration, userAgent string) *GofeedFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &GofeedFetcher{parser: parser}
}

// Fetch parses the feed at src.URL.
func (f *GofeedFetcher) Fetch(ctx context.Context, src Source) ([]Entry, error) {
	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, fromItem(item))
	}
	return entries, nil
}

// fromItem maps a parsed item to an Entry. For Atom, gofeed reports
// <updated> as Published when <published> is absent.
func fromItem(item *gofeed.Item) Entry {
	link := item.Link
	if link == "" && len(item.Links) > 0 {
		link = item.Links[0]
	}
	return Entry{
		Title:       item.Title,
		Link:        link,
		Published:   item.Published,
		Description: item.Description,
		Content:     item.Content,
		Categories:  append([]string(nil), item.Categories...),
	}
}

// FetchAll fetches every source in registry order, one at a time.
// A failing feed is logged and yields an empty batch.
func FetchAll(ctx context.Context, f Fetcher, registry *Registry) []Batch {
	sources := registry.Sources()
	batches := make([]Batch, 0, len(sources))

	for _, src := range sources {
		entries, err := f.Fetch(ctx, src)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", src.URL, err)
			batches = append(batches, Batch{Source: src, Err: err})
			continue
		}
		log.Printf("Parsed %d entries from %s", len(entries), src.Title)
		batches = append(batches, Batch{Source: src, Entries: entries})
	}

	return batches
}
