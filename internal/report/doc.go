// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - JSONWriter: the selector to presence-flag object, 4-space indented
//   - MarkdownWriter: tables for documentation and sharing
//   - SimpleWriter: human-readable text output for terminal display
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
