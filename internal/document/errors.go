package document

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	// ErrFileNotFound is wrapped by MissingFileError.
	ErrFileNotFound = errors.New("file does not exist")

	// ErrFetch is wrapped by FetchError.
	ErrFetch = errors.New("failed to fetch document")

	// ErrParse is wrapped by ParseError.
	ErrParse = errors.New("failed to parse document")

	// ErrUnexpectedStatus is returned when the server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrBodyTooLarge is returned when the response body exceeds the size limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrInvalidProxyAddress is returned for a proxy address not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// MissingFileError reports a referenced file that does not exist.
type MissingFileError struct {
	// Path is the path as given by the user.
	Path string
}

// Error returns "<path> does not exist".
func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}

// Unwrap returns ErrFileNotFound.
func (e *MissingFileError) Unwrap() error {
	return ErrFileNotFound
}

// FetchError reports a failed HTTP fetch of a remote document.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns both ErrFetch and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// ParseError reports HTML that could not be turned into a document.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

// Unwrap returns both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
