package database

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/TobiSchelling/feedshelf/internal/article"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func testArticle(link, published string) article.Article {
	return article.Article{
		Title:           "Title " + link,
		Link:            link,
		Published:       published,
		PublishedParsed: published,
		Source:          "Example",
		Tags:            []string{"go", "networking"},
	}
}

func TestOpenCreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "feedshelf.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db in missing directory: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.conn.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}
	var timeout int
	if err := db.conn.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("reading busy timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy timeout 5000, got %d", timeout)
	}
}

func TestInsertArchivedArticle(t *testing.T) {
	db := openTestDB(t)
	a := testArticle("https://example.com/a", "2026-10-01T00:00:00Z")
	a.Image = ptr("https://example.com/a.png")
	a.Summary = "Summary"

	inserted, err := db.InsertArchivedArticle(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Error("expected first insert to succeed")
	}

	got, err := db.GetArchivedArticle(a.Link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected archived article")
	}
	if !reflect.DeepEqual(*got, a) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *got, a)
	}
}

func TestInsertArchivedArticleKeepsFirst(t *testing.T) {
	db := openTestDB(t)
	first := testArticle("https://example.com/dup", "2026-10-01T00:00:00Z")
	second := first
	second.Title = "Changed"

	db.InsertArchivedArticle(first)
	inserted, err := db.InsertArchivedArticle(second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Error("expected duplicate link to be ignored")
	}

	got, _ := db.GetArchivedArticle(first.Link)
	if got.Title != first.Title {
		t.Errorf("expected original title to survive, got %q", got.Title)
	}
	if n, _ := db.CountArchivedArticles(); n != 1 {
		t.Errorf("expected 1 archived article, got %d", n)
	}
}

func TestGetArchivedArticlesNewestFirst(t *testing.T) {
	db := openTestDB(t)
	db.InsertArchivedArticle(testArticle("https://a.com", "2026-01-01T00:00:00Z"))
	db.InsertArchivedArticle(testArticle("https://b.com", "2026-03-01T00:00:00Z"))
	db.InsertArchivedArticle(testArticle("https://c.com", "2026-02-01T00:00:00Z"))

	articles, err := db.GetArchivedArticles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"https://b.com", "https://c.com", "https://a.com"}
	for i, a := range articles {
		if a.Link != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], a.Link)
		}
		if a.Image != nil {
			t.Errorf("expected nil image for %s", a.Link)
		}
	}
}

func TestGetArchivedArticleMissing(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetArchivedArticle("https://nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRunReports(t *testing.T) {
	db := openTestDB(t)

	last, err := db.GetLastRunReport()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != nil {
		t.Error("expected no run report on empty db")
	}

	id, err := db.InsertRunReport(RunReport{StartedAt: "2026-10-01T00:00:00Z", FinishedAt: "2026-10-01T00:01:00Z", CurrentCount: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Error("expected generated run id")
	}
	db.InsertRunReport(RunReport{ID: "second", StartedAt: "2026-10-02T00:00:00Z", FinishedAt: "2026-10-02T00:01:00Z", ArchiveCount: 7})

	last, _ = db.GetLastRunReport()
	if last == nil || last.ID != "second" || last.ArchiveCount != 7 {
		t.Errorf("unexpected last report: %+v", last)
	}

	reports, _ := db.GetRecentRunReports(10)
	if len(reports) != 2 {
		t.Errorf("expected 2 reports, got %d", len(reports))
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertArchivedArticle(testArticle("https://a.com", "2026-01-01T00:00:00Z"))
	b := testArticle("https://b.com", "2026-03-01T00:00:00Z")
	b.Source = "Other"
	db.InsertArchivedArticle(b)
	db.InsertArchivedArticle(testArticle("https://c.com", ""))
	db.InsertRunReport(RunReport{StartedAt: "2026-10-01T00:00:00Z", FinishedAt: "2026-10-01T00:01:00Z"})

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ArchivedArticles != 3 {
		t.Errorf("expected 3 archived, got %d", stats.ArchivedArticles)
	}
	if stats.ArchivedSources != 2 {
		t.Errorf("expected 2 sources, got %d", stats.ArchivedSources)
	}
	if stats.Runs != 1 {
		t.Errorf("expected 1 run, got %d", stats.Runs)
	}
	if stats.OldestPublished != "2026-01-01T00:00:00Z" || stats.NewestPublished != "2026-03-01T00:00:00Z" {
		t.Errorf("unexpected date range: %s .. %s", stats.OldestPublished, stats.NewestPublished)
	}
}
