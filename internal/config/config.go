package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/grader/internal/document"
)

// Default configuration values.
const (
	// DefaultHTMLFile is the document graded when neither --file nor --url is given.
	DefaultHTMLFile = "index.html"

	// DefaultChecksFile is the checks file used when --checks is not given.
	DefaultChecksFile = "checks.json"

	// DefaultTimeout bounds fetching a remote document.
	DefaultTimeout = document.DefaultTimeout

	// DefaultUserAgent is sent when fetching a remote document.
	DefaultUserAgent = document.DefaultUserAgent

	// DefaultMaxBodySize is the largest remote document accepted.
	DefaultMaxBodySize = document.DefaultMaxBodySize

	// DefaultConcurrency is the number of documents graded at once in batch mode.
	DefaultConcurrency = 4

	// DefaultJSONIndent is the indentation of JSON output.
	DefaultJSONIndent = "    "

	// AppName is the application name used for XDG directory paths.
	AppName = "grader"
)

// Config holds the options of a grading run.
// It is populated from CLI flags and the optional .grader file and passed
// explicitly to the components that need it.
type Config struct {
	// HTMLFile is the local HTML document to grade. Ignored when URL is set.
	HTMLFile string

	// ChecksFile is the JSON file holding the array of selectors.
	ChecksFile string

	// URL, when set, is fetched and graded instead of HTMLFile.
	URL string

	// Timeout bounds the fetch of URL.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent when fetching URL.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in host:port form.
	ProxyAddress string

	// MaxBodySize is the largest response body accepted when fetching URL.
	MaxBodySize int64

	// Concurrency is the number of documents graded at once in batch mode.
	Concurrency int

	// MarkdownReport selects Markdown output. Mutually exclusive with TextReport.
	MarkdownReport bool

	// TextReport selects human-readable text output. Mutually exclusive with MarkdownReport.
	TextReport bool

	// OnlyMissing limits the text report to selectors that were not found.
	OnlyMissing bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// SaveToDB stores the run in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	DBDir string

	// ConfigFilePath is the path of the .grader file.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		HTMLFile:    DefaultHTMLFile,
		ChecksFile:  DefaultChecksFile,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		Concurrency: DefaultConcurrency,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for grader.
// On Linux: ~/.local/share/grader
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for grader.
// On Linux: ~/.config/grader
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// UsesURL reports whether the document is fetched rather than read from disk.
func (c *Config) UsesURL() bool {
	return c.URL != ""
}

// Source returns the URL when set, otherwise the HTML file path.
func (c *Config) Source() string {
	if c.UsesURL() {
		return c.URL
	}
	return c.HTMLFile
}

// Validate checks if the configuration is valid.
// It returns the first problem found. File existence is not checked here;
// see document.RequireFile.
func (c *Config) Validate() error {
	if c.ChecksFile == "" {
		return ErrNoChecksFile
	}

	if !c.UsesURL() && c.HTMLFile == "" {
		return ErrNoDocument
	}

	if c.UsesURL() {
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidURL
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MarkdownReport && c.TextReport {
		return ErrConflictingReportFormats
	}

	if c.ProxyAddress != "" && !document.IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	return nil
}

// FetcherOptions converts the fetch-related settings into document options.
func (c *Config) FetcherOptions() []document.FetcherOption {
	opts := []document.FetcherOption{
		document.WithTimeout(c.Timeout),
		document.WithUserAgent(c.UserAgent),
		document.WithMaxBodySize(c.MaxBodySize),
	}
	if c.ProxyAddress != "" {
		opts = append(opts, document.WithSOCKS5Proxy(c.ProxyAddress))
	}
	return opts
}
