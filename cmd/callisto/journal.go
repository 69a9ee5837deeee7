package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/journal"
	"mercator-hq/callisto/pkg/journal/retention"
	"mercator-hq/callisto/pkg/journal/storage"
)

var journalFlags struct {
	backend   string
	timeRange string
	subject   string
	handler   string
	kind      string
	valid     bool
	invalid   bool
	limit     int
	offset    int
	sortBy    string
	format    string
	output    string
	daemon    bool
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query and maintain the validation journal",
	Long: `Query and maintain the validation audit journal.

The journal command provides access to recorded validation runs for
inspection, debugging, and retention maintenance.

Subcommands:
  query  - Query journal records with filters
  prune  - Enforce the retention policy

Examples:
  # Show the most recent failed runs
  callisto journal query --invalid

  # Filter by handler within a time window
  callisto journal query --handler email --time-range "2026-08-01T00:00:00Z/2026-08-29T00:00:00Z"

  # Export to JSON file
  callisto journal query --format json --output journal.json`,
}

var journalQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query journal records",
	Long: `Query journal records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-28T00:00:00Z/2026-08-29T00:00:00Z"

Examples:
  # Query a specific time range
  callisto journal query --time-range "2026-08-28T00:00:00Z/2026-08-29T00:00:00Z"

  # Filter by subject type and outcome
  callisto journal query --subject "*app.signupForm" --invalid

  # Slowest async runs first
  callisto journal query --kind async --sort duration

  # Export to JSON
  callisto journal query --format json --output journal.json`,
	RunE: queryJournal,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Enforce the retention policy",
	Long: `Delete journal records per the configured retention policy.

Runs a single pruning pass by default. With --daemon, keeps running and
prunes on the configured cron schedule until interrupted.

Examples:
  # One-shot prune
  callisto journal prune

  # Scheduled pruning in the foreground
  callisto journal prune --daemon`,
	RunE: pruneJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalQueryCmd, journalPruneCmd)

	// Flags for query command
	journalQueryCmd.Flags().StringVar(&journalFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	journalQueryCmd.Flags().StringVar(&journalFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	journalQueryCmd.Flags().StringVar(&journalFlags.subject, "subject", "", "filter by subject description")
	journalQueryCmd.Flags().StringVar(&journalFlags.handler, "handler", "", "filter by handler key")
	journalQueryCmd.Flags().StringVar(&journalFlags.kind, "kind", "", "filter by handler kind (instant, sync, async)")
	journalQueryCmd.Flags().BoolVar(&journalFlags.valid, "valid", false, "only runs that produced no errors")
	journalQueryCmd.Flags().BoolVar(&journalFlags.invalid, "invalid", false, "only runs that produced errors")
	journalQueryCmd.Flags().IntVar(&journalFlags.limit, "limit", 100, "max results")
	journalQueryCmd.Flags().IntVar(&journalFlags.offset, "offset", 0, "pagination offset")
	journalQueryCmd.Flags().StringVar(&journalFlags.sortBy, "sort", "time", "sort column: time, duration")
	journalQueryCmd.Flags().StringVar(&journalFlags.format, "format", "text", "output format: text, json")
	journalQueryCmd.Flags().StringVarP(&journalFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for prune command
	journalPruneCmd.Flags().StringVar(&journalFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	journalPruneCmd.Flags().BoolVar(&journalFlags.daemon, "daemon", false, "keep running and prune on the configured schedule")
}

// openStorage creates the storage backend selected by flag or config.
func openStorage(cfg *config.Config) (journal.Storage, error) {
	backendType := journalFlags.backend
	if backendType == "" {
		backendType = cfg.Journal.Backend
	}

	switch backendType {
	case "sqlite":
		sqliteConfig := &storage.SQLiteConfig{
			Path:         cfg.Journal.SQLite.Path,
			MaxOpenConns: cfg.Journal.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Journal.SQLite.MaxIdleConns,
			WALMode:      cfg.Journal.SQLite.WALMode,
			BusyTimeout:  cfg.Journal.SQLite.BusyTimeout,
		}
		store, err := storage.NewSQLiteStorage(sqliteConfig)
		if err != nil {
			return nil, cli.NewCommandError("journal", fmt.Errorf("failed to create SQLite storage: %w", err))
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: sqlite, memory)", backendType)
	}
}

func queryJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Build query
	query := &journal.Query{
		Subject:    journalFlags.subject,
		HandlerKey: journalFlags.handler,
		Kind:       journalFlags.kind,
		Limit:      journalFlags.limit,
		Offset:     journalFlags.offset,
		SortBy:     journalFlags.sortBy,
	}

	if journalFlags.valid && journalFlags.invalid {
		return fmt.Errorf("--valid and --invalid are mutually exclusive")
	}
	if journalFlags.valid {
		v := true
		query.Valid = &v
	}
	if journalFlags.invalid {
		v := false
		query.Valid = &v
	}

	// Parse time range
	if journalFlags.timeRange != "" {
		parts := strings.Split(journalFlags.timeRange, "/")
		if len(parts) != 2 {
			return fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	// Execute query
	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("query failed: %w", err))
	}

	// Output results
	var output *os.File
	if journalFlags.output != "" {
		output, err = os.Create(journalFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	switch cli.OutputFormat(journalFlags.format) {
	case cli.FormatJSON:
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(output, map[string]interface{}{
			"total_records": len(records),
			"records":       records,
		})
	default:
		return outputJournalText(output, records, query)
	}
}

func outputJournalText(output *os.File, records []*journal.Record, query *journal.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Timestamp: %s\n", record.Time.Format(time.RFC3339))
		fmt.Fprintf(output, "Subject: %s\n", record.Subject)
		fmt.Fprintf(output, "Handler: %s (%s)\n", record.HandlerKey, record.Kind)
		if record.Valid {
			fmt.Fprintln(output, "Outcome: valid")
		} else {
			fmt.Fprintln(output, "Outcome: invalid")
		}
		for _, entry := range record.Errors {
			fmt.Fprintf(output, "  %s: %s\n", entry.KeyPath, entry.Message)
		}
		if record.Err != "" {
			fmt.Fprintf(output, "Handler Error: %s\n", record.Err)
		}
		fmt.Fprintf(output, "Duration: %s\n", record.Duration)

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func pruneJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.Journal.Retention.RetentionDays,
		PruneSchedule: cfg.Journal.Retention.PruneSchedule,
		MaxRecords:    cfg.Journal.Retention.MaxRecords,
	})

	if !journalFlags.daemon {
		deleted, err := pruner.Prune(context.Background())
		if err != nil {
			return cli.NewCommandError("journal", fmt.Errorf("prune failed: %w", err))
		}
		fmt.Printf("Deleted %d records\n", deleted)
		return nil
	}

	// Daemon mode: prune on the configured cron schedule until interrupted.
	ctx := cli.SetupSignalHandler()
	if err := pruner.Start(ctx); err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("failed to start pruning scheduler: %w", err))
	}
	defer pruner.Stop()

	if next := pruner.NextRun(); next != nil {
		fmt.Printf("Pruning scheduler running, next run at %s. Press Ctrl+C to stop.\n",
			next.Format(time.RFC3339))
	} else {
		fmt.Println("Pruning scheduler running. Press Ctrl+C to stop.")
	}

	<-ctx.Done()
	fmt.Println("Shutting down.")
	return nil
}
