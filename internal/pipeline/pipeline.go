package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TobiSchelling/feedshelf/internal/archive"
	"github.com/TobiSchelling/feedshelf/internal/article"
	"github.com/TobiSchelling/feedshelf/internal/config"
	"github.com/TobiSchelling/feedshelf/internal/database"
	"github.com/TobiSchelling/feedshelf/internal/enrich"
	"github.com/TobiSchelling/feedshelf/internal/feed"
	"github.com/TobiSchelling/feedshelf/internal/normalize"
	"github.com/TobiSchelling/feedshelf/internal/output"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a pipeline run.
type Result struct {
	RunID         string
	Steps         []StepResult
	Sources       []string
	Tags          []string
	EntriesFound  int
	FailedSources int
	Duplicates    int
	Skipped       int
	CurrentCount  int
	ArchiveCount  int
	NewlyArchived int
	CurrentPath   string
	ArchivePath   string
	DryRun        bool
}

// Pipeline runs fetch -> normalize -> enrich -> partition -> write.
type Pipeline struct {
	cfg        *config.Config
	db         *database.DB
	registry   *feed.Registry
	fetcher    feed.Fetcher
	normalizer *normalize.Normalizer
	store      archive.Store
	enricher   *enrich.Enricher
	now        func() time.Time
}

// New creates a pipeline for cfg. db may be nil when the JSON archive
// backend is used; runs are then not logged.
func New(cfg *config.Config, db *database.DB) (*Pipeline, error) {
	p := &Pipeline{
		cfg:        cfg,
		db:         db,
		registry:   feed.RegistryFromConfig(cfg),
		fetcher:    feed.NewGofeedFetcher(cfg.FetchTimeout(), cfg.Fetch.UserAgent),
		normalizer: normalize.New(cfg.Summary.MaxLength),
		now:        time.Now,
	}

	switch cfg.Archive.Backend {
	case "sqlite":
		if db == nil {
			return nil, errors.New("sqlite archive backend requires a database")
		}
		p.store = archive.NewSQLiteStore(db, cfg.ArchivePath())
	default:
		p.store = archive.NewJSONStore(cfg.ArchivePath())
	}

	if cfg.Enrich.Enabled {
		p.enricher = enrich.New(cfg.EnrichTimeout(), cfg.Fetch.UserAgent, cfg.Summary.MaxLength)
	}
	return p, nil
}

// WithFetcher replaces the feed fetcher.
func (p *Pipeline) WithFetcher(f feed.Fetcher) *Pipeline {
	p.fetcher = f
	return p
}

// WithRegistry replaces the configured feed sources.
func (p *Pipeline) WithRegistry(r *feed.Registry) *Pipeline {
	p.registry = r
	return p
}

// WithClock replaces the time source.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run executes the pipeline. With dryRun nothing is written.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) (*Result, error) {
	started := p.now().UTC()
	r := &Result{
		CurrentPath: p.cfg.CurrentPath(),
		ArchivePath: p.cfg.ArchivePath(),
		DryRun:      dryRun,
	}

	log.Println("Step 1/5: Fetching feeds...")
	batches := feed.FetchAll(ctx, p.fetcher, p.registry)
	for _, b := range batches {
		r.Sources = append(r.Sources, b.Source.Title)
		r.EntriesFound += len(b.Entries)
		if b.Err != nil {
			r.FailedSources++
		}
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Found %d entries in %d feeds (%d failed)", r.EntriesFound, len(batches), r.FailedSources),
	})

	log.Println("Step 2/5: Normalizing entries...")
	articles := p.normalizeAll(batches, r)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Normalize",
		Summary: fmt.Sprintf("%d articles (%d duplicates, %d skipped)", len(articles), r.Duplicates, r.Skipped),
	})

	arc, err := p.store.Load()
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Load archive", Err: err})
		return r, err
	}
	before := arc.Len()

	log.Println("Step 3/5: Enriching new articles...")
	r.Steps = append(r.Steps, p.runEnrich(ctx, articles, arc))

	log.Println("Step 4/5: Partitioning current window and archive...")
	now := p.now()
	current := archive.Partition(articles, arc, now, p.cfg.WindowDuration())
	r.CurrentCount = len(current)
	r.ArchiveCount = arc.Len()
	r.NewlyArchived = arc.Len() - before
	r.Steps = append(r.Steps, StepResult{
		Name: "Partition",
		Summary: fmt.Sprintf("%d current (last %d days), %d archived (%d new)",
			r.CurrentCount, p.cfg.Window.Days, r.ArchiveCount, r.NewlyArchived),
	})

	doc := output.NewCurrentDocument(current, r.Sources, now)
	r.Sources = doc.Sources
	r.Tags = doc.Tags

	if dryRun {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Write",
			Summary: fmt.Sprintf("[dry-run] Would write %s and %s", r.CurrentPath, r.ArchivePath),
		})
		return r, nil
	}

	log.Println("Step 5/5: Writing documents...")
	if err := output.WriteJSON(r.CurrentPath, doc); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Write", Err: err})
		return r, err
	}
	if err := p.store.Save(arc, now); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Write", Err: err})
		return r, err
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Write",
		Summary: fmt.Sprintf("Wrote %s and %s", r.CurrentPath, r.ArchivePath),
	})

	p.recordRun(r, started)
	return r, nil
}

func (p *Pipeline) normalizeAll(batches []feed.Batch, r *Result) []article.Article {
	dedup := article.NewDeduplicator()
	var articles []article.Article

	for _, b := range batches {
		for _, entry := range b.Entries {
			a, err := p.normalizer.Normalize(entry, b.Source)
			if err != nil {
				r.Skipped++
				continue
			}
			if !dedup.Admit(a.Link) {
				r.Duplicates++
				continue
			}
			articles = append(articles, a)
		}
	}
	return articles
}

func (p *Pipeline) runEnrich(ctx context.Context, articles []article.Article, arc *archive.Archive) StepResult {
	if p.enricher == nil {
		return StepResult{Name: "Enrich", Summary: "Disabled"}
	}

	// Only articles new to the archive; archived copies are never rewritten.
	var idx []int
	var fresh []article.Article
	for i, a := range articles {
		if !arc.Has(a.Link) && enrich.NeedsEnrichment(a) {
			idx = append(idx, i)
			fresh = append(fresh, a)
		}
	}

	res := p.enricher.Enrich(ctx, fresh)
	for j, i := range idx {
		articles[i] = fresh[j]
	}
	return StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("Enriched %d of %d articles, %d failed", res.Enriched, res.Attempted, res.Failed),
	}
}

func (p *Pipeline) recordRun(r *Result, started time.Time) {
	if p.db == nil {
		return
	}
	id, err := p.db.InsertRunReport(database.RunReport{
		StartedAt:     output.Timestamp(started),
		FinishedAt:    output.Timestamp(p.now()),
		SourceCount:   len(r.Sources),
		FailedSources: r.FailedSources,
		EntriesFound:  r.EntriesFound,
		Duplicates:    r.Duplicates,
		Skipped:       r.Skipped,
		CurrentCount:  r.CurrentCount,
		ArchiveCount:  r.ArchiveCount,
		NewlyArchived: r.NewlyArchived,
	})
	if err != nil {
		log.Printf("Failed to record run report: %v", err)
		return
	}
	r.RunID = id
}
