package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/grader/internal/config"
	"github.com/nao1215/grader/internal/database"
	"github.com/nao1215/grader/internal/model"
	"github.com/nao1215/grader/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "Show saved grading results",
		Long: `History reads results stored with 'grader --save'.

Without flags it lists the saved runs of a source (file path or URL).
A single run can be shown by ID, and the latest two runs of a source can be
compared to see which selectors appeared or disappeared.

Examples:
  # List every source in the database
  grader history --list-sources

  # List saved runs of index.html
  grader history index.html

  # Show run 3 as JSON with metadata
  grader history --id 3 --json

  # Show the latest run of index.html
  grader history --latest index.html

  # Show what changed between the last two runs
  grader history --diff index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-sources", "L", false, "List all sources in the database")
	cmd.Flags().Int64P("id", "i", 0, "Show the run with this ID")
	cmd.Flags().BoolP("latest", "l", false, "Show the latest run of the source")
	cmd.Flags().BoolP("diff", "d", false, "Compare the latest two runs of the source")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listSources, err := cmd.Flags().GetBool("list-sources")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Validate arguments before opening the database.
	if !listSources && id == 0 && len(args) == 0 {
		return errors.New("source is required (use --list-sources to see available sources)")
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case listSources:
		return printSources(ctx, out, db)
	case id != 0:
		run, err := db.GetRunByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get run %d: %w", id, err)
		}
		return printRun(out, run, jsonOutput)
	case latest:
		run, err := db.GetLatestRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get latest run of %s: %w", args[0], err)
		}
		return printRun(out, run, jsonOutput)
	case diff:
		return printDiff(ctx, out, db, args[0], jsonOutput)
	default:
		return printHistory(ctx, out, db, args[0])
	}
}

func printSources(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Fprintln(out, "No saved results found in the database.")
		fmt.Fprintln(out, "\nUse 'grader --save' to keep a result.")
		return nil
	}

	fmt.Fprintf(out, "Sources (%d):\n\n", len(sources))
	for _, source := range sources {
		fmt.Fprintf(out, "  • %s\n", source)
	}
	return nil
}

func printHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, source string) error {
	history, err := db.GetHistory(ctx, source)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No saved results found for %s\n", source)
		return nil
	}

	fmt.Fprintf(out, "History for %s (%d runs):\n\n", source, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %s\n", "ID", "Date", "Result")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			formatSummary(meta),
		)
	}
	fmt.Fprintln(out, "\nUse 'grader history --id <id>' to show a run.")
	return nil
}

// formatSummary renders the result column of the history table.
func formatSummary(meta database.RunMetadata) string {
	if meta.Error != "" {
		return "error: " + meta.Error
	}
	return fmt.Sprintf("%d/%d present", meta.Summary.Present, meta.Summary.Total)
}

func printRun(out io.Writer, run *model.Run, jsonOutput bool) error {
	var w report.Writer
	if jsonOutput {
		w = report.NewJSONWriter(out, report.WithMetadata())
	} else {
		if run.Failed() {
			fmt.Fprintf(out, "Run %d of %s failed: %s\n", run.ID, run.Source, run.Error)
			return nil
		}
		w = report.NewSimpleWriter(out)
	}
	_, err := w.Write(run)
	return err
}

// SelectorChange is a selector whose presence differs between two runs.
type SelectorChange struct {
	Selector string `json:"selector"`
	Before   *bool  `json:"before"`
	After    *bool  `json:"after"`
}

// Diff compares two runs of the same source.
type Diff struct {
	Source   string           `json:"source"`
	BeforeID int64            `json:"before_id"`
	AfterID  int64            `json:"after_id"`
	Changes  []SelectorChange `json:"changes"`
}

func printDiff(ctx context.Context, out io.Writer, db *database.HistoryDB, source string, jsonOutput bool) error {
	history, err := db.GetHistory(ctx, source)
	if err != nil {
		return err
	}
	if len(history) < 2 {
		return fmt.Errorf("at least 2 saved runs are required for comparison (found %d)", len(history))
	}

	after, err := db.GetRunByID(ctx, history[0].ID)
	if err != nil {
		return err
	}
	before, err := db.GetRunByID(ctx, history[1].ID)
	if err != nil {
		return err
	}

	d := diffRuns(before, after)

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", config.DefaultJSONIndent)
		return encoder.Encode(d)
	}

	fmt.Fprintf(out, "Changes in %s (run %d -> run %d):\n\n", d.Source, d.BeforeID, d.AfterID)
	if len(d.Changes) == 0 {
		fmt.Fprintln(out, "  No changes")
		return nil
	}
	for _, c := range d.Changes {
		fmt.Fprintf(out, "  %-30s  %s -> %s\n", c.Selector, formatPresence(c.Before), formatPresence(c.After))
	}
	return nil
}

// diffRuns lists selectors that were added, removed or changed presence.
// Selectors are reported in sorted order.
func diffRuns(before, after *model.Run) Diff {
	d := Diff{
		Source:   after.Source,
		BeforeID: before.ID,
		AfterID:  after.ID,
		Changes:  []SelectorChange{},
	}

	seen := make(map[string]bool)
	var selectors []string
	for _, run := range []*model.Run{before, after} {
		if run.Result == nil {
			continue
		}
		for _, sel := range run.Result.Selectors() {
			if !seen[sel] {
				seen[sel] = true
				selectors = append(selectors, sel)
			}
		}
	}

	for _, sel := range model.CheckList(selectors).Sorted() {
		b := presence(before, sel)
		a := presence(after, sel)
		if b != nil && a != nil && *b == *a {
			continue
		}
		d.Changes = append(d.Changes, SelectorChange{Selector: sel, Before: b, After: a})
	}
	return d
}

func presence(run *model.Run, selector string) *bool {
	if run.Result == nil {
		return nil
	}
	present, ok := run.Result.Get(selector)
	if !ok {
		return nil
	}
	return &present
}

func formatPresence(p *bool) string {
	switch {
	case p == nil:
		return "-"
	case *p:
		return "present"
	default:
		return "missing"
	}
}
