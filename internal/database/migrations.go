package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS archived_articles (
    link TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    published TEXT NOT NULL DEFAULT '',
    published_parsed TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    image TEXT,
    summary TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    archived_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_reports (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    source_count INTEGER DEFAULT 0,
    failed_sources INTEGER DEFAULT 0,
    entries_found INTEGER DEFAULT 0,
    duplicates INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0,
    current_count INTEGER DEFAULT 0,
    archive_count INTEGER DEFAULT 0,
    newly_archived INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_archived_published ON archived_articles(published_parsed);
CREATE INDEX IF NOT EXISTS idx_run_reports_started ON run_reports(started_at);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index archived articles by source",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_archived_source ON archived_articles(source)`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
