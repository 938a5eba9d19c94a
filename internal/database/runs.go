package database

import (
	"database/sql"

	"github.com/google/uuid"
)

// InsertRunReport records a completed run. An empty ID is replaced with a
// fresh UUID, which is returned.
func (db *DB) InsertRunReport(r RunReport) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(
		`INSERT INTO run_reports
		(id, started_at, finished_at, source_count, failed_sources, entries_found,
		duplicates, skipped, current_count, archive_count, newly_archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt, r.FinishedAt, r.SourceCount, r.FailedSources, r.EntriesFound,
		r.Duplicates, r.Skipped, r.CurrentCount, r.ArchiveCount, r.NewlyArchived,
	)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetRecentRunReports returns up to limit reports, most recent first.
func (db *DB) GetRecentRunReports(limit int) ([]RunReport, error) {
	rows, err := db.conn.Query(
		`SELECT id, started_at, finished_at, source_count, failed_sources, entries_found,
		duplicates, skipped, current_count, archive_count, newly_archived
		FROM run_reports ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []RunReport
	for rows.Next() {
		var r RunReport
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.SourceCount, &r.FailedSources,
			&r.EntriesFound, &r.Duplicates, &r.Skipped, &r.CurrentCount, &r.ArchiveCount,
			&r.NewlyArchived); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetLastRunReport returns the most recent report, or nil if none exist.
func (db *DB) GetLastRunReport() (*RunReport, error) {
	reports, err := db.GetRecentRunReports(1)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return &reports[0], nil
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	counts := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM archived_articles", &s.ArchivedArticles},
		{"SELECT COUNT(DISTINCT source) FROM archived_articles", &s.ArchivedSources},
		{"SELECT COUNT(*) FROM run_reports", &s.Runs},
	}
	for _, q := range counts {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	var oldest, newest sql.NullString
	if err := db.conn.QueryRow(
		"SELECT MIN(published_parsed), MAX(published_parsed) FROM archived_articles WHERE published_parsed != ''",
	).Scan(&oldest, &newest); err != nil {
		return nil, err
	}
	s.OldestPublished = oldest.String
	s.NewestPublished = newest.String

	return s, nil
}
