package report

import (
	"io"
	"strconv"

	"github.com/nao1215/grader/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs a single run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	if err := checkRun(run); err != nil {
		return 0, err
	}

	md := markdown.NewMarkdown(w.output)
	md.H1("Grading Report")
	md.PlainText("")
	w.writeRun(md, run)

	return len(md.String()), md.Build()
}

// WriteBatch outputs a summary table of all runs followed by one section per
// graded document.
func (w *MarkdownWriter) WriteBatch(runs []*model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Grading Report")
	md.PlainText("")

	rows := make([][]string, len(runs))
	for i, run := range runs {
		if run.Failed() || run.Result == nil {
			rows[i] = []string{"`" + run.Source + "`", "-", "-", "❌ " + run.Error}
			continue
		}
		s := run.Summary()
		rows[i] = []string{
			"`" + run.Source + "`",
			strconv.Itoa(s.Present),
			strconv.Itoa(s.Missing),
			statusText(s),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Document", "Present", "Missing", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, run := range runs {
		if run.Failed() || run.Result == nil {
			continue
		}
		md.H2(run.Source)
		md.PlainText("")
		w.writeRun(md, run)
	}

	return len(md.String()), md.Build()
}

// writeRun writes the info table, selector table, chart and alert of one run.
func (w *MarkdownWriter) writeRun(md *markdown.Markdown, run *model.Run) {
	s := run.Summary()

	info := [][]string{
		{"Document", "`" + run.Source + "`"},
		{"Graded", run.Timestamp.Format("2006-01-02 15:04:05 MST")},
		{"Status", statusText(s)},
	}
	if run.DocumentHash != "" {
		info = append(info, []string{"SHA3-256", "`" + run.DocumentHash + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   info,
	})
	md.PlainText("")

	rows := make([][]string, 0, run.Result.Len())
	run.Result.Each(func(selector string, present bool) {
		mark := "✅"
		if !present {
			mark = "❌"
		}
		rows = append(rows, []string{"`" + selector + "`", mark})
	})
	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Selector", "Present"},
			Rows:   rows,
		})
		md.PlainText("")
		w.writePieChart(md, s)
	}

	if s.AllPresent() {
		md.Tip("All checks passed.")
	} else {
		md.Warningf("%d of %d selectors are missing.", s.Missing, s.Total)
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of present versus missing selectors.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Selector Presence"),
		piechart.WithShowData(true),
	)
	if s.Present > 0 {
		chart.LabelAndIntValue("Present", uint64(s.Present))
	}
	if s.Missing > 0 {
		chart.LabelAndIntValue("Missing", uint64(s.Missing))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// statusText returns a short status for a summary.
func statusText(s model.Summary) string {
	if s.AllPresent() {
		return "✅ Pass"
	}
	return "❌ " + strconv.Itoa(s.Missing) + " missing"
}
