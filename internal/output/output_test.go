package output

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/feedshelf/internal/article"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

func sample() []article.Article {
	return []article.Article{
		{Title: "Old", Link: "https://a.com/old", PublishedParsed: "2026-09-01T00:00:00Z", Source: "A", Tags: []string{"go"}},
		{Title: "New <b>", Link: "https://b.com/new", PublishedParsed: "2026-10-18T00:00:00Z", Source: "B", Tags: []string{"ai", "go"}, Image: ptr("https://b.com/x.png")},
	}
}

func TestNewCurrentDocument(t *testing.T) {
	doc := NewCurrentDocument(sample(), []string{"B", "A", "C", "A"}, now)

	if doc.LastUpdated != "2026-10-19T12:00:00Z" {
		t.Errorf("unexpected last_updated %q", doc.LastUpdated)
	}
	if doc.ArticleCount != 2 {
		t.Errorf("expected 2 articles, got %d", doc.ArticleCount)
	}
	if !reflect.DeepEqual(doc.Sources, []string{"A", "B", "C"}) {
		t.Errorf("unexpected sources %v", doc.Sources)
	}
	if !reflect.DeepEqual(doc.Tags, []string{"ai", "go"}) {
		t.Errorf("unexpected tags %v", doc.Tags)
	}
	if doc.Articles[0].Title != "New <b>" {
		t.Errorf("expected newest first, got %q", doc.Articles[0].Title)
	}
}

func TestNewDocumentsEmpty(t *testing.T) {
	doc := NewCurrentDocument(nil, nil, now)
	if doc.Articles == nil || doc.Tags == nil || doc.Sources == nil {
		t.Errorf("expected empty slices, got %+v", doc)
	}
	arc := NewArchiveDocument(nil, now)
	if arc.Articles == nil || arc.ArticleCount != 0 {
		t.Errorf("unexpected archive document %+v", arc)
	}
}

func TestWriteAndReadDocuments(t *testing.T) {
	dir := t.TempDir()
	currentPath := filepath.Join(dir, "nested", "feeds.json")
	archivePath := filepath.Join(dir, "archive.json")

	if err := WriteJSON(currentPath, NewCurrentDocument(sample(), []string{"A", "B"}, now)); err != nil {
		t.Fatalf("write current: %v", err)
	}
	if err := WriteJSON(archivePath, NewArchiveDocument(sample(), now)); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	raw, _ := os.ReadFile(currentPath)
	if !strings.Contains(string(raw), "\n  \"last_updated\"") {
		t.Error("expected two-space indentation")
	}
	if !strings.Contains(string(raw), "New <b>") {
		t.Error("expected HTML characters to be written unescaped")
	}

	current, err := ReadCurrentDocument(currentPath)
	if err != nil {
		t.Fatalf("read current: %v", err)
	}
	if current.ArticleCount != 2 || len(current.Articles) != 2 {
		t.Errorf("unexpected current document %+v", current)
	}

	arc, err := ReadArchiveDocument(archivePath)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if arc.Articles[1].Link != "https://a.com/old" {
		t.Errorf("unexpected archive order: %+v", arc.Articles)
	}
}

func TestReadArchiveDocumentMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	if _, err := ReadArchiveDocument(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown("Latest", sample())

	if !strings.HasPrefix(md, "# Latest\n") {
		t.Errorf("missing heading: %q", md[:20])
	}
	if !strings.Contains(md, "## [New &lt;b&gt;](<https://b.com/new>)") {
		t.Error("expected escaped linked title")
	}
	if !strings.Contains(md, "*B · Oct 18, 2026*") {
		t.Error("expected source and date line")
	}
	if !strings.Contains(md, "![](<https://b.com/x.png>)") {
		t.Error("expected image")
	}
	if !strings.Contains(md, "`ai` `go`") {
		t.Error("expected tag list")
	}

	awkward := []article.Article{{
		Title:  "Line one\nline two",
		Link:   "https://c.com/a page",
		Image:  &[]string{"https://c.com/a b.png"}[0],
		Source: "C",
		Tags:   []string{},
	}}
	md = Markdown("Awkward", awkward)
	if !strings.Contains(md, "## [Line one line two](<https://c.com/a page>)\n") {
		t.Errorf("expected single-line title with bracketed link, got %q", md)
	}
	if !strings.Contains(md, "![](<https://c.com/a b.png>)") {
		t.Errorf("expected bracketed image destination, got %q", md)
	}

	if !strings.Contains(Markdown("Empty", nil), "_No articles._") {
		t.Error("expected empty marker")
	}
}
