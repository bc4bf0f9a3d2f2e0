package main

import (
	"fmt"
	"net"

	"github.com/nao1215/grader/internal/config"
	"github.com/nao1215/grader/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTML file over HTTP",
		Long: `Serve reads an HTML file once and returns it for every GET request to "/".
The port is taken from --port, then the PORT environment variable, then 5000.
Stop the server with Ctrl+C.

Examples:
  # Serve index.html on port 5000
  grader serve

  # Serve another file on port 8080
  PORT=8080 grader serve --file site/index.html`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("file", "f", config.DefaultHTMLFile, "Path to the HTML file")
	cmd.Flags().StringP("port", "p", "", "Port to listen on (default: $PORT or 5000)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	port, err := cmd.Flags().GetString("port")
	if err != nil {
		return err
	}
	if port == "" {
		port = server.Port()
	}

	logger := newLogger(cmd)

	srv, err := server.New(path, server.WithLogger(logger))
	if err != nil {
		return err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(cmd.Context(), "tcp", net.JoinHostPort("", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", port)
	return srv.Serve(cmd.Context(), ln)
}
