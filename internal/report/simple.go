package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/grader/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// onlyMissing hides selectors that matched.
	onlyMissing bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithOnlyMissing configures the writer to list missing selectors only.
func WithOnlyMissing(only bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.onlyMissing = only
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs a single run in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	if err := checkRun(run); err != nil {
		return 0, err
	}

	var sb strings.Builder
	w.writeRun(&sb, run)
	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs every run followed by a batch total.
func (w *SimpleWriter) WriteBatch(runs []*model.Run) (int, error) {
	var sb strings.Builder

	failed := 0
	for _, run := range runs {
		if run.Failed() || run.Result == nil {
			failed++
			w.writeHeader(&sb, run)
			sb.WriteString(fmt.Sprintf("Status:   ERROR - %s\n\n", run.Error))
			continue
		}
		w.writeRun(&sb, run)
	}

	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Documents: %d graded, %d failed\n", len(runs)-failed, failed))

	return w.output.Write([]byte(sb.String()))
}

// writeRun writes the header, selector lines and summary of one run.
func (w *SimpleWriter) writeRun(sb *strings.Builder, run *model.Run) {
	w.writeHeader(sb, run)

	run.Result.Each(func(selector string, present bool) {
		if present && w.onlyMissing {
			return
		}
		mark := "[PASS]"
		if !present {
			mark = "[FAIL]"
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", mark, selector))
	})

	s := run.Summary()
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %d/%d selectors present", s.Present, s.Total))
	if s.AllPresent() {
		sb.WriteString(" - all checks passed\n\n")
	} else {
		sb.WriteString(fmt.Sprintf(" - %d missing\n\n", s.Missing))
	}
}

// writeHeader writes the source and timestamp of a run.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.Run) {
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Document: %s\n", run.Source))
	sb.WriteString(fmt.Sprintf("Graded:   %s\n", run.Timestamp.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n\n")
}
