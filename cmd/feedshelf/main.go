package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/TobiSchelling/feedshelf/internal/config"
	"github.com/TobiSchelling/feedshelf/internal/database"
	"github.com/TobiSchelling/feedshelf/internal/feed"
	"github.com/TobiSchelling/feedshelf/internal/pipeline"
	"github.com/TobiSchelling/feedshelf/internal/server"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "feedshelf",
	Short:   "Fetch RSS/Atom feeds into a current window and a permanent archive",
	Long:    "feedshelf fetches a fixed list of feeds, normalizes and deduplicates entries, and writes JSON documents for a static reader.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.Debug() {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("feedshelf", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in $XDG_CONFIG_HOME/feedshelf/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds and output paths.")
		return nil
	},
}

// --- fetch command ---

var (
	dryRun     bool
	windowDays int
)

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	Aliases: []string{"run"},
	Short:   "Fetch all feeds and write the current and archive documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		if windowDays > 0 {
			cfg.Window.Days = windowDays
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe, err := pipeline.New(cfg, db)
		if err != nil {
			return err
		}

		result, err := pipe.Run(context.Background(), dryRun)
		for i, step := range result.Steps {
			fmt.Printf("Step %d: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		if err != nil {
			return err
		}

		printSummary(result)
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and partition without writing anything")
	fetchCmd.Flags().IntVar(&windowDays, "window-days", 0, "Override the current window (days)")
}

func printSummary(r *pipeline.Result) {
	fmt.Println()
	fmt.Printf("Fetched %d articles\n", r.CurrentCount)
	fmt.Printf("Archive: %d articles (%d new)\n", r.ArchiveCount, r.NewlyArchived)
	fmt.Printf("Sources: %s\n", strings.Join(r.Sources, ", "))
	fmt.Printf("Unique tags: %d\n", len(r.Tags))
	if len(r.Tags) > 0 {
		shown := r.Tags
		more := ""
		if len(shown) > 10 {
			shown = shown[:10]
			more = "..."
		}
		fmt.Printf("Tags: %s%s\n", strings.Join(shown, ", "), more)
	}
	if r.DryRun {
		fmt.Println("Dry run: nothing written")
		return
	}
	fmt.Printf("Written to %s\n", r.CurrentPath)
	fmt.Printf("Archive written to %s\n", r.ArchivePath)
}

// --- sources command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured feeds",
	Run: func(cmd *cobra.Command, args []string) {
		registry := feed.RegistryFromConfig(cfg)
		if registry.Len() == 0 {
			fmt.Println("No feeds configured.")
			return
		}
		for i, src := range registry.Sources() {
			fmt.Printf("  [%d] %s\n", i+1, src.Title)
			fmt.Printf("        %s\n", src.URL)
			if len(src.ManualTags) > 0 {
				fmt.Printf("        tags: %s\n", strings.Join(src.ManualTags, ", "))
			}
		}
	},
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show archive and run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Feeds configured: %d\n", len(cfg.Sources.Feeds))
		fmt.Printf("Current window: %d days\n", cfg.Window.Days)
		fmt.Printf("Archive backend: %s\n\n", cfg.Archive.Backend)

		if cfg.Archive.Backend == "sqlite" {
			fmt.Println("Archive:")
			fmt.Printf("  Articles: %d\n", stats.ArchivedArticles)
			fmt.Printf("  Sources: %d\n", stats.ArchivedSources)
			if stats.OldestPublished != "" {
				fmt.Printf("  Published: %s .. %s\n", stats.OldestPublished, stats.NewestPublished)
			}
			fmt.Println()
		}

		reports, err := db.GetRecentRunReports(5)
		if err != nil {
			return fmt.Errorf("getting run reports: %w", err)
		}
		fmt.Printf("Runs: %d\n", stats.Runs)
		for _, r := range reports {
			fmt.Printf("  %s  %d current, %d archived (+%d), %d/%d feeds failed\n",
				r.StartedAt, r.CurrentCount, r.ArchiveCount, r.NewlyArchived, r.FailedSources, r.SourceCount)
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local reader",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg.CurrentPath(), cfg.ArchivePath(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(cfg.DatabasePath())
}
