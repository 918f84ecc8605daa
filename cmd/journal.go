package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/journal"
	"github.com/mj1618/accessbridge/internal/output"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print adapter lifecycle records from a journal database",
	Long: `Print the lifecycle records (created, handle, activated, degraded, updated,
destroyed, ...) that replay and serve wrote with --journal, newest first.

Examples:
  accessbridge journal --db /tmp/accessbridge.db
  accessbridge journal --db /tmp/accessbridge.db --window 3 --limit 20`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().String("db", "", "Journal database (default from config)")
	journalCmd.Flags().Int("window", 0, "Only records of this window id")
	journalCmd.Flags().Int("limit", 100, "Max records (0 = unlimited)")
}

// JournalResult is the output of the journal command.
type JournalResult struct {
	Path    string           `yaml:"path"    json:"path"`
	Records []journal.Record `yaml:"records" json:"records"`
}

func runJournal(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = cfg.Journal.Path
	}
	if path == "" {
		return fmt.Errorf("no journal database; pass --db or set journal.path in the config")
	}
	window, _ := cmd.Flags().GetInt("window")
	limit, _ := cmd.Flags().GetInt("limit")

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("journal database: %w", err)
	}
	store, err := journal.Open(ctx, path, journal.Options{})
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Query(ctx, adapter.WindowID(window), limit)
	if err != nil {
		return err
	}
	if records == nil {
		records = []journal.Record{}
	}
	return output.Print(JournalResult{Path: path, Records: records})
}
