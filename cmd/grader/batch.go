package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/grader/internal/batch"
	"github.com/nao1215/grader/internal/checker"
	"github.com/nao1215/grader/internal/config"
	"github.com/nao1215/grader/internal/document"
	"github.com/nao1215/grader/internal/model"
	"github.com/nao1215/grader/internal/report"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file-or-url>...",
		Short: "Grade several documents against one checks file",
		Long: `Batch grades every given HTML file or http(s) URL against the same checks
file. Documents are graded concurrently. A document that cannot be loaded is
reported with its error and does not stop the others; the command then exits
with status 1 after printing the report.

Examples:
  # Grade two local files
  grader batch site/index.html site/about.html

  # Mix files and URLs, four at a time
  grader batch -n 4 index.html https://example.com

  # Markdown summary of all documents
  grader batch --markdown -o report.md *.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatchCmd,
	}

	cmd.Flags().StringP("checks", "c", config.DefaultChecksFile, "Path to the JSON checks file")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency, "Number of documents graded at once")
	cmd.Flags().String("config", "",
		"Configuration file path (default: .grader in current directory or XDG config)")
	cmd.Flags().Bool("save", false, "Save the results to the history database")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")
	addFetchFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

// errBatchFailures is returned when at least one document could not be graded.
var errBatchFailures = errors.New("some documents could not be graded")

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	// Targets come from the arguments, never from the config file.
	cfg.URL = ""
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)

	if err := document.RequireFile(cfg.ChecksFile); err != nil {
		return err
	}
	checks, err := config.LoadChecks(cfg.ChecksFile)
	if err != nil {
		return err
	}
	// An invalid selector would fail every document; report it once.
	if _, err := checker.Compile(checks); err != nil {
		return err
	}

	fetcher, err := document.NewFetcher(cfg.FetcherOptions()...)
	if err != nil {
		return err
	}

	processor := batch.NewProcessor(
		&batch.TargetLoader{Fetcher: fetcher},
		checks,
		batch.WithConcurrency(cfg.Concurrency),
		batch.WithChecksFile(cfg.ChecksFile),
		batch.WithLogger(logger),
	)

	targets := uniqueTargets(args)
	if skipped := len(args) - len(targets); skipped > 0 {
		logger.Debug("skipped duplicate targets", "count", skipped)
	}

	runs, err := processor.Process(cmd.Context(), targets)
	if err != nil {
		return err
	}

	if err := writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteBatch(runs)
		return err
	}); err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveRuns(cmd.Context(), cfg, logger, runs...); err != nil {
			return err
		}
	}

	if failed := countFailed(runs); failed > 0 {
		return fmt.Errorf("%w: %d of %d", errBatchFailures, failed, len(runs))
	}
	return nil
}

// uniqueTargets drops repeated targets, keeping the first occurrence, so
// that every source appears once in the report.
func uniqueTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	unique := make([]string, 0, len(targets))
	for _, target := range targets {
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		unique = append(unique, target)
	}
	return unique
}

func countFailed(runs []*model.Run) int {
	n := 0
	for _, run := range runs {
		if run.Failed() {
			n++
		}
	}
	return n
}
