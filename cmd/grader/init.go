package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/grader/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/checks.json
var checksTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter checks.json",
		Long: `Init writes a checks file listing common page elements (html, head, title,
body, h1, links, images, charset meta, stylesheets and scripts). Edit it to
list the selectors your page must contain.

Examples:
  # Create checks.json in current directory
  grader init

  # Create the file at a specific path
  grader init -o site/checks.json

  # Force overwrite existing file
  grader init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultChecksFile,
		"Output file path for the checks file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing checks file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("checks file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := checksTemplate.ReadFile("templates/checks.json")
	if err != nil {
		return fmt.Errorf("failed to read checks template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write checks file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created checks file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'grader --checks "+outputPath+"' to grade index.html against it.")
	return nil
}
