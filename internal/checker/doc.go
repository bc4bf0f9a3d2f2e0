// Package checker evaluates CSS selectors against a parsed HTML document
// and reports, for each selector, whether at least one element matches.
package checker
