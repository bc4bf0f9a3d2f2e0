// Package database provides SQLite-based storage for grading history.
//
// HistoryDB stores one row per grading run: the document source, the hash
// of the graded bytes, the selector results and their counts. This allows
// listing how a document's grade changed over time.
//
// The database is a single file opened through modernc.org/sqlite, a
// CGO-free driver.
package database
