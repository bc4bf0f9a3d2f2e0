package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nao1215/grader/internal/document"
	"github.com/nao1215/grader/internal/model"
)

// ErrMalformedChecks is wrapped by ChecksParseError.
var ErrMalformedChecks = errors.New("malformed checks file")

// ChecksParseError reports a checks file that is not a JSON array of strings.
type ChecksParseError struct {
	Path string
	Err  error
}

func (e *ChecksParseError) Error() string {
	return fmt.Sprintf("malformed checks file %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrMalformedChecks and the decoder error.
func (e *ChecksParseError) Unwrap() []error {
	return []error{ErrMalformedChecks, e.Err}
}

// LoadChecks reads a JSON array of CSS selectors from path.
// A missing file yields *document.MissingFileError; anything other than an
// array of strings yields *ChecksParseError. The list is returned in file
// order; callers sort it with CheckList.Sorted.
func LoadChecks(path string) (model.CheckList, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided checks path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &document.MissingFileError{Path: path}
		}
		return nil, err
	}

	var list model.CheckList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &ChecksParseError{Path: path, Err: err}
	}
	if list == nil {
		// "null" decodes without error but is not an array.
		return nil, &ChecksParseError{Path: path, Err: errors.New("expected a JSON array")}
	}
	return list, nil
}
