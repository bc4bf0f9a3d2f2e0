package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/grader/internal/checker"
	"github.com/nao1215/grader/internal/config"
	"github.com/nao1215/grader/internal/database"
	"github.com/nao1215/grader/internal/document"
	"github.com/nao1215/grader/internal/log"
	"github.com/nao1215/grader/internal/model"
	"github.com/nao1215/grader/internal/report"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Run without a subcommand it grades
// one document.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grader",
		Short: "Check an HTML document for required CSS selectors",
		Long: `grader checks whether an HTML document contains the elements named by a
list of CSS selectors and prints the result as JSON.

The checks file is a JSON array of selectors. The document is a local file
(--file, default index.html) or a page fetched with --url. Selectors are
sorted, and each one maps to true when at least one element matches.

Examples:
  # Grade index.html against checks.json in the current directory
  grader

  # Grade a specific file
  grader --file site/index.html --checks site/checks.json

  # Grade a live page
  grader --url https://example.com --checks checks.json

  # Human-readable or Markdown output
  grader --text
  grader --markdown --output report.md

  # Keep the result in the history database
  grader --save

Configuration file (.grader) example:
  file: site/index.html
  checks: site/checks.json
  timeout: 10s
  proxy: 127.0.0.1:9050`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.Flags().StringP("file", "f", config.DefaultHTMLFile, "Path to the HTML file")
	cmd.Flags().StringP("checks", "c", config.DefaultChecksFile, "Path to the JSON checks file")
	cmd.Flags().StringP("url", "u", "", "Fetch and grade this URL instead of --file")
	cmd.Flags().String("config", "",
		"Configuration file path (default: .grader in current directory or XDG config)")
	cmd.Flags().Bool("save", false, "Save the result to the history database")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")
	addFetchFlags(cmd)
	addOutputFlags(cmd)

	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with status 1 on failure.
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, log.RedactText(err.Error()))
		os.Exit(1)
	}
}

// addFetchFlags registers the flags that control fetching remote documents.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for fetching a URL")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header for fetching a URL")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy for fetching a URL (e.g., 127.0.0.1:9050)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize, "Largest response body accepted, in bytes")
}

// addOutputFlags registers the report format flags.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --text)")
	cmd.Flags().Bool("text", false, "Output human-readable report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("only-missing", false, "List only missing selectors in the text report")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger creates the stderr logger and installs it as the slog default.
func newLogger(cmd *cobra.Command) *slog.Logger {
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	slog.SetDefault(logger)
	return logger
}

// runRootCmd grades a single document.
func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)
	// An explicit --file must exist even when --url selects the page.
	requireHTML := !cfg.UsesURL() || cmd.Flags().Changed("file")
	run, err := grade(cmd.Context(), cfg, requireHTML, logger)
	if err != nil {
		return err
	}

	if err := writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.Write(run)
		return err
	}); err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveRuns(cmd.Context(), cfg, logger, run); err != nil {
			return err
		}
	}
	return nil
}

// grade loads the checks and the document named by cfg and checks them.
// Files are verified before anything is read so that a missing file is the
// only error reported for it.
func grade(ctx context.Context, cfg *config.Config, requireHTML bool, logger *slog.Logger) (*model.Run, error) {
	if err := document.RequireFile(cfg.ChecksFile); err != nil {
		return nil, err
	}
	if requireHTML {
		if err := document.RequireFile(cfg.HTMLFile); err != nil {
			return nil, err
		}
	}

	checks, err := config.LoadChecks(cfg.ChecksFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded checks", "file", cfg.ChecksFile, "count", len(checks))

	doc, err := loadDocument(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded document", "source", doc.Source, "bytes", doc.Size, "hash", doc.Hash)

	result, err := checker.CheckList(doc, checks)
	if err != nil {
		return nil, err
	}

	run := model.NewRun(doc.Source)
	run.DocumentHash = doc.Hash
	run.ChecksFile = cfg.ChecksFile
	run.Result = result

	s := result.Summary()
	logger.Info("graded",
		"source", run.Source,
		"present", s.Present,
		"missing", s.Missing,
	)
	return run, nil
}

// loadDocument reads the HTML file or fetches the URL.
func loadDocument(ctx context.Context, cfg *config.Config) (*document.Document, error) {
	if !cfg.UsesURL() {
		return document.LoadFile(cfg.HTMLFile)
	}
	fetcher, err := document.NewFetcher(cfg.FetcherOptions()...)
	if err != nil {
		return nil, err
	}
	return fetcher.Fetch(ctx, cfg.URL)
}

// saveRuns stores runs in the history database.
func saveRuns(ctx context.Context, cfg *config.Config, logger *slog.Logger, runs ...*model.Run) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for _, run := range runs {
		if err := db.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		logger.Info("run saved", "id", run.ID, "source", run.Source, "db", db.Path())
	}
	return nil
}
