package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoChecksFile is returned when the checks file path is empty.
	ErrNoChecksFile = errors.New("no checks file specified")

	// ErrNoDocument is returned when neither an HTML file nor a URL is given.
	ErrNoDocument = errors.New("no document specified: provide --file or --url")

	// ErrInvalidURL is returned when --url is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidConcurrency is returned when the batch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --markdown and --text are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --markdown and --text cannot be used together")

	// ErrInvalidProxyAddress is returned when the proxy is not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
