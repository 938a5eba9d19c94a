package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/TobiSchelling/feedshelf/internal/database"
	"github.com/TobiSchelling/feedshelf/internal/output"
)

// Store loads the archive at the start of a run and persists it at the end.
type Store interface {
	Load() (*Archive, error)
	Save(arc *Archive, now time.Time) error
}

// JSONStore keeps the archive in the archive document itself.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store backed by the archive document at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the archive document; a missing file yields an empty archive.
// A malformed document is an error.
func (s *JSONStore) Load() (*Archive, error) {
	return LoadOrDefault(s.path)
}

// Save overwrites the archive document with every archived article.
func (s *JSONStore) Save(arc *Archive, now time.Time) error {
	return output.WriteJSON(s.path, output.NewArchiveDocument(arc.Articles(), now))
}

// LoadOrDefault reads the archive document at path, returning an empty
// archive when the file does not exist.
func LoadOrDefault(path string) (*Archive, error) {
	doc, err := output.ReadArchiveDocument(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return FromArticles(doc.Articles), nil
}

// SQLiteStore keeps the archive in the archived_articles table and still
// writes the archive document for readers.
type SQLiteStore struct {
	db      *database.DB
	docPath string
}

// NewSQLiteStore creates a store on db that mirrors to the document at docPath.
func NewSQLiteStore(db *database.DB, docPath string) *SQLiteStore {
	return &SQLiteStore{db: db, docPath: docPath}
}

// Load reads all archived rows. An empty table is seeded from an existing
// archive document so switching backends keeps history.
func (s *SQLiteStore) Load() (*Archive, error) {
	n, err := s.db.CountArchivedArticles()
	if err != nil {
		return nil, fmt.Errorf("archive: counting rows: %w", err)
	}

	if n == 0 {
		seed, err := LoadOrDefault(s.docPath)
		if err != nil {
			return nil, err
		}
		if seed.Len() > 0 {
			log.Printf("Seeding SQLite archive with %d articles from %s", seed.Len(), s.docPath)
		}
		arc := New()
		for _, a := range seed.Articles() {
			arc.Insert(a)
		}
		return arc, nil
	}

	articles, err := s.db.GetArchivedArticles()
	if err != nil {
		return nil, fmt.Errorf("archive: reading rows: %w", err)
	}
	return FromArticles(articles), nil
}

// Save inserts the articles added during this run, then rewrites the
// archive document.
func (s *SQLiteStore) Save(arc *Archive, now time.Time) error {
	for _, a := range arc.Pending() {
		if _, err := s.db.InsertArchivedArticle(a); err != nil {
			return fmt.Errorf("archive: inserting %s: %w", a.Link, err)
		}
	}
	return output.WriteJSON(s.docPath, output.NewArchiveDocument(arc.Articles(), now))
}
