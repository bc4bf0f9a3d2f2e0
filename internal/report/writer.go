package report

import (
	"errors"
	"io"

	"github.com/nao1215/grader/internal/model"
)

// ErrNoResult is returned when a failed run is written as a single report.
var ErrNoResult = errors.New("run has no result")

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report of a single run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.Run) (int, error)

	// WriteBatch outputs the reports of several runs as one document.
	WriteBatch(runs []*model.Run) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the runs to all configured Writers.
func (m *MultiWriter) WriteBatch(runs []*model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// checkRun rejects runs that cannot be reported on their own.
func checkRun(run *model.Run) error {
	if run == nil || run.Failed() || run.Result == nil {
		return ErrNoResult
	}
	return nil
}
