package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/TobiSchelling/feedshelf/internal/article"
)

// InsertArchivedArticle stores a under its link. Returns false if the link
// was already archived; existing rows are never modified.
func (db *DB) InsertArchivedArticle(a article.Article) (bool, error) {
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return false, fmt.Errorf("encoding tags: %w", err)
	}

	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO archived_articles
		(link, title, published, published_parsed, source, image, summary, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Link, a.Title, a.Published, a.PublishedParsed, a.Source, a.Image, a.Summary, string(tags),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetArchivedArticles returns every archived article, newest first.
func (db *DB) GetArchivedArticles() ([]article.Article, error) {
	rows, err := db.conn.Query(
		`SELECT link, title, published, published_parsed, source, image, summary, tags
		FROM archived_articles ORDER BY published_parsed DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArchivedArticle returns the archived article for link, or nil.
func (db *DB) GetArchivedArticle(link string) (*article.Article, error) {
	rows, err := db.conn.Query(
		`SELECT link, title, published, published_parsed, source, image, summary, tags
		FROM archived_articles WHERE link = ?`, link,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil || len(articles) == 0 {
		return nil, err
	}
	return &articles[0], nil
}

// CountArchivedArticles returns the number of archived links.
func (db *DB) CountArchivedArticles() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM archived_articles").Scan(&n)
	return n, err
}

func scanArticles(rows *sql.Rows) ([]article.Article, error) {
	var articles []article.Article
	for rows.Next() {
		var a article.Article
		var image sql.NullString
		var tags string
		if err := rows.Scan(&a.Link, &a.Title, &a.Published, &a.PublishedParsed,
			&a.Source, &image, &a.Summary, &tags); err != nil {
			return nil, err
		}
		if image.Valid {
			img := image.String
			a.Image = &img
		}
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", a.Link, err)
		}
		if a.Tags == nil {
			a.Tags = []string{}
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
