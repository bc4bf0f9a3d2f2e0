// Package model defines the data structures shared by the grader packages.
//
// This package contains the following main types:
//   - CheckList: the selectors loaded from a checks file
//   - CheckResult: the ordered selector to presence-flag mapping
//   - Run: one grading of one document, as written to reports and history
//
// The types are serializable to JSON for report output and database storage.
package model
