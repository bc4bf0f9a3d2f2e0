// Package main provides the entry point for the grader CLI.
//
// grader checks an HTML document for the presence of CSS selectors listed in
// a JSON checks file and prints a JSON object mapping each selector to true
// or false.
//
// Usage:
//
//	grader --file index.html --checks checks.json
//	grader --url https://example.com --checks checks.json
//	grader serve --file index.html
//
// See --help for all available options.
package main

func main() {
	Execute()
}
