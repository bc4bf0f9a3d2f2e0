package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".grader"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .grader configuration file.
// Every field is optional; zero values leave the built-in default alone.
//
//	file: site/index.html
//	checks: site/checks.json
//	timeout: 10s
//	userAgent: my-grader
//	proxy: 127.0.0.1:9050
type File struct {
	HTMLFile    string        `yaml:"file,omitempty"`
	ChecksFile  string        `yaml:"checks,omitempty"`
	URL         string        `yaml:"url,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
	MaxBodySize int64         `yaml:"maxBodySize,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	DBDir       string        `yaml:"dbDir,omitempty"`
}

// Apply copies the non-zero settings of the file into cfg.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.HTMLFile != "" {
		cfg.HTMLFile = f.HTMLFile
	}
	if f.ChecksFile != "" {
		cfg.ChecksFile = f.ChecksFile
	}
	if f.URL != "" {
		cfg.URL = f.URL
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.MaxBodySize != 0 {
		cfg.MaxBodySize = f.MaxBodySize
	}
	if f.Concurrency != 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .grader in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
