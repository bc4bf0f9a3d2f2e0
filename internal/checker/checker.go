package checker

import (
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/nao1215/grader/internal/document"
	"github.com/nao1215/grader/internal/model"
)

// ErrInvalidSelector is wrapped by InvalidSelectorError.
var ErrInvalidSelector = errors.New("invalid CSS selector")

// InvalidSelectorError reports a selector that could not be compiled.
type InvalidSelectorError struct {
	Selector string
	Err      error
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("invalid CSS selector %q: %v", e.Selector, e.Err)
}

// Unwrap returns both ErrInvalidSelector and the compiler error.
func (e *InvalidSelectorError) Unwrap() []error {
	return []error{ErrInvalidSelector, e.Err}
}

// Queryable is a parsed document that compiled selectors can run against.
// *goquery.Document and *document.Document both satisfy it.
type Queryable interface {
	FindMatcher(m goquery.Matcher) *goquery.Selection
}

// Compile compiles every selector, failing on the first invalid one.
func Compile(selectors []string) ([]cascadia.Selector, error) {
	compiled := make([]cascadia.Selector, len(selectors))
	for i, sel := range selectors {
		c, err := cascadia.Compile(sel)
		if err != nil {
			return nil, &InvalidSelectorError{Selector: sel, Err: err}
		}
		compiled[i] = c
	}
	return compiled, nil
}

// Check reports for each selector whether it matches at least one element
// of doc. The result has exactly one key per distinct selector, in the order
// the selectors are given.
//
// All selectors are compiled before the document is queried, so an invalid
// selector fails the whole check and no partial result is returned.
// Check does not modify doc and can be called concurrently on one document.
func Check(doc Queryable, selectors []string) (*model.CheckResult, error) {
	compiled, err := Compile(selectors)
	if err != nil {
		return nil, err
	}

	result := model.NewCheckResult(len(selectors))
	for i, sel := range selectors {
		if _, seen := result.Get(sel); seen {
			continue
		}
		result.Set(sel, doc.FindMatcher(compiled[i]).Length() > 0)
	}
	return result, nil
}

// CheckList sorts the list and checks it against doc.
// This is the order used for all grader output.
func CheckList(doc Queryable, list model.CheckList) (*model.CheckResult, error) {
	return Check(doc, list.Sorted())
}

// CheckHTML parses r and checks the selectors against it.
func CheckHTML(r io.Reader, selectors []string) (*model.CheckResult, error) {
	doc, err := document.Parse("input", r)
	if err != nil {
		return nil, err
	}
	return Check(doc, selectors)
}
