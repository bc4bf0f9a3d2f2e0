package model

import "time"

// Run is the outcome of grading one document against one checks file.
type Run struct {
	// ID is the history database identifier. Zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	// Source is the file path or URL the document was loaded from.
	Source string `json:"source"`

	// DocumentHash is the hex SHA3-256 of the raw document bytes.
	DocumentHash string `json:"document_hash,omitempty"`

	// ChecksFile is the path of the checks file used.
	ChecksFile string `json:"checks_file,omitempty"`

	// Timestamp is when the run finished.
	Timestamp time.Time `json:"timestamp"`

	// Result holds the presence flag of every selector.
	// Nil when Error is set.
	Result *CheckResult `json:"result,omitempty"`

	// Error describes why the document could not be graded.
	Error string `json:"error,omitempty"`
}

// NewRun creates a Run for the given source stamped with the current time.
func NewRun(source string) *Run {
	return &Run{
		Source:    source,
		Timestamp: time.Now(),
	}
}

// Failed reports whether the run ended without a result.
func (r *Run) Failed() bool {
	return r.Error != ""
}

// Summary returns the counts of the run's result.
func (r *Run) Summary() Summary {
	return r.Result.Summary()
}
