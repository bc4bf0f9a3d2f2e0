package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/grader/internal/model"
)

// DefaultIndent is the indentation used by JSONWriter unless overridden.
const DefaultIndent = "    "

// JSONWriter outputs reports in JSON format.
//
// By default a single run is written as the bare selector object, e.g.
//
//	{
//	    "a": true,
//	    "audio": false
//	}
//
// and a batch as an object keyed by source.
type JSONWriter struct {
	baseWriter

	// indent is the indentation string; empty means compact output.
	indent string

	// withMetadata writes whole runs (source, hash, timestamp, result)
	// instead of bare results.
	withMetadata bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation string. An empty string gives compact output.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = indent
	}
}

// WithMetadata writes whole runs instead of bare results.
func WithMetadata() JSONWriterOption {
	return func(w *JSONWriter) {
		w.withMetadata = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		indent:     DefaultIndent,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs a single run.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	if w.withMetadata {
		return w.writeJSON(run)
	}
	if err := checkRun(run); err != nil {
		return 0, err
	}
	return w.writeJSON(run.Result)
}

// WriteBatch outputs several runs. With metadata the runs are written as an
// array; otherwise as an object keyed by source in run order, where a failed
// run is written as {"error": "..."}.
func (w *JSONWriter) WriteBatch(runs []*model.Run) (int, error) {
	if w.withMetadata {
		if runs == nil {
			runs = []*model.Run{}
		}
		return w.writeJSON(runs)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, run := range runs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalUnescaped(run.Source)
		if err != nil {
			return 0, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if run.Failed() || run.Result == nil {
			value, err = marshalUnescaped(map[string]string{"error": run.Error})
		} else {
			value, err = marshalUnescaped(run.Result)
		}
		if err != nil {
			return 0, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	return w.writeJSON(json.RawMessage(buf.Bytes()))
}

// writeJSON marshals the given value to JSON and writes it to the output
// followed by a single newline. HTML characters are not escaped, so
// selectors such as "div > p" are written verbatim.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

// marshalUnescaped is json.Marshal without HTML escaping.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
