// Package config provides configuration structures and utilities for grader.
// It defines command options, their defaults and validation, the optional
// .grader YAML file, and the loader for JSON checks files.
package config
