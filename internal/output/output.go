package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/TobiSchelling/feedshelf/internal/article"
)

// CurrentDocument is the JSON document holding the current window.
type CurrentDocument struct {
	LastUpdated  string            `json:"last_updated"`
	ArticleCount int               `json:"article_count"`
	Sources      []string          `json:"sources"`
	Tags         []string          `json:"tags"`
	Articles     []article.Article `json:"articles"`
}

// ArchiveDocument is the JSON document holding every archived article.
type ArchiveDocument struct {
	LastUpdated  string            `json:"last_updated"`
	ArticleCount int               `json:"article_count"`
	Articles     []article.Article `json:"articles"`
}

// Timestamp formats now as an ISO-8601 UTC timestamp.
func Timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

// NewCurrentDocument builds the current document. sources lists every
// configured source title, including those that returned nothing.
func NewCurrentDocument(articles []article.Article, sources []string, now time.Time) CurrentDocument {
	sorted := append([]article.Article{}, articles...)
	article.SortNewestFirst(sorted)

	return CurrentDocument{
		LastUpdated:  Timestamp(now),
		ArticleCount: len(sorted),
		Sources:      sortedUnique(sources),
		Tags:         CollectTags(sorted),
		Articles:     sorted,
	}
}

// NewArchiveDocument builds the archive document.
func NewArchiveDocument(articles []article.Article, now time.Time) ArchiveDocument {
	sorted := append([]article.Article{}, articles...)
	article.SortNewestFirst(sorted)

	return ArchiveDocument{
		LastUpdated:  Timestamp(now),
		ArticleCount: len(sorted),
		Articles:     sorted,
	}
}

// CollectTags returns the sorted union of all article tags.
func CollectTags(articles []article.Article) []string {
	return sortedUnique(lo.FlatMap(articles, func(a article.Article, _ int) []string {
		return a.Tags
	}))
}

func sortedUnique(values []string) []string {
	out := lo.Uniq(values)
	sort.Strings(out)
	return out
}

// WriteJSON overwrites path with doc as indented JSON, creating parent
// directories as needed. HTML characters are written unescaped.
func WriteJSON(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadArchiveDocument decodes the archive document at path.
func ReadArchiveDocument(path string) (*ArchiveDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc ArchiveDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}

// ReadCurrentDocument decodes the current document at path.
func ReadCurrentDocument(path string) (*CurrentDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc CurrentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}
