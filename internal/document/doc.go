// Package document loads HTML documents from disk or over HTTP and parses
// them into a queryable handle.
//
// A Document is produced only when loading and parsing both succeed. Every
// failure is returned as one of the typed errors of this package
// (MissingFileError, FetchError, ParseError) so that callers stop before
// any selector is evaluated.
package document
