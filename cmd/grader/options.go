package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/grader/internal/config"
	"github.com/nao1215/grader/internal/report"
	"github.com/spf13/cobra"
)

// buildConfig creates a Config from defaults, the .grader file and the
// command line, in increasing order of precedence. Only flags given
// explicitly override the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	flags := []struct {
		name string
		set  func() error
	}{
		{"file", stringFlag(cmd, "file", &cfg.HTMLFile)},
		{"checks", stringFlag(cmd, "checks", &cfg.ChecksFile)},
		{"url", stringFlag(cmd, "url", &cfg.URL)},
		{"user-agent", stringFlag(cmd, "user-agent", &cfg.UserAgent)},
		{"proxy", stringFlag(cmd, "proxy", &cfg.ProxyAddress)},
		{"output", stringFlag(cmd, "output", &cfg.ReportFile)},
		{"db-dir", stringFlag(cmd, "db-dir", &cfg.DBDir)},
		{"timeout", durationFlag(cmd, "timeout", &cfg.Timeout)},
		{"max-body-size", int64Flag(cmd, "max-body-size", &cfg.MaxBodySize)},
		{"concurrency", intFlag(cmd, "concurrency", &cfg.Concurrency)},
		{"markdown", boolFlag(cmd, "markdown", &cfg.MarkdownReport)},
		{"text", boolFlag(cmd, "text", &cfg.TextReport)},
		{"only-missing", boolFlag(cmd, "only-missing", &cfg.OnlyMissing)},
		{"save", boolFlag(cmd, "save", &cfg.SaveToDB)},
	}
	for _, f := range flags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		if err := f.set(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func stringFlag(cmd *cobra.Command, name string, dst *string) func() error {
	return func() (err error) {
		*dst, err = cmd.Flags().GetString(name)
		return err
	}
}

func boolFlag(cmd *cobra.Command, name string, dst *bool) func() error {
	return func() (err error) {
		*dst, err = cmd.Flags().GetBool(name)
		return err
	}
}

func durationFlag(cmd *cobra.Command, name string, dst *time.Duration) func() error {
	return func() (err error) {
		*dst, err = cmd.Flags().GetDuration(name)
		return err
	}
}

func intFlag(cmd *cobra.Command, name string, dst *int) func() error {
	return func() (err error) {
		*dst, err = cmd.Flags().GetInt(name)
		return err
	}
}

func int64Flag(cmd *cobra.Command, name string, dst *int64) func() error {
	return func() (err error) {
		*dst, err = cmd.Flags().GetInt64(name)
		return err
	}
}

// applyConfigFile loads the .grader file, if any, into cfg.
// An explicitly given --config path must exist; otherwise a missing file
// is not an error.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Lookup("config") != nil {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		cfg.ConfigFilePath = path
	}

	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.Apply(cfg)
	return nil
}

// newReportWriter returns the Writer selected by cfg. JSON is the default.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	case cfg.TextReport:
		return report.NewSimpleWriter(output, report.WithOnlyMissing(cfg.OnlyMissing))
	default:
		return report.NewJSONWriter(output, report.WithIndent(config.DefaultJSONIndent))
	}
}

// writeReport opens the report destination named by cfg and calls write
// with a Writer for it.
func writeReport(cmd *cobra.Command, cfg *config.Config, write func(report.Writer) error) error {
	output := cmd.OutOrStdout()

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	return write(newReportWriter(cfg, output))
}
