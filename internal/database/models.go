package database

// RunReport holds metadata about a single fetch run.
type RunReport struct {
	ID            string
	StartedAt     string
	FinishedAt    string
	SourceCount   int
	FailedSources int
	EntriesFound  int
	Duplicates    int
	Skipped       int
	CurrentCount  int
	ArchiveCount  int
	NewlyArchived int
}

// Stats contains aggregate database statistics.
type Stats struct {
	ArchivedArticles int
	ArchivedSources  int
	Runs             int
	OldestPublished  string
	NewestPublished  string
}
