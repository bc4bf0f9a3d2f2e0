package model

import "sort"

// CheckList is an ordered sequence of CSS selectors loaded from a checks file.
type CheckList []string

// Sorted returns a lexicographically sorted copy of the list with duplicate
// selectors removed. The receiver is not modified.
//
// Sorting only affects the key order of the resulting CheckResult; duplicates
// are dropped because each selector is reported exactly once.
func (c CheckList) Sorted() CheckList {
	sorted := make(CheckList, len(c))
	copy(sorted, c)
	sort.Strings(sorted)

	unique := sorted[:0]
	for i, sel := range sorted {
		if i > 0 && sel == sorted[i-1] {
			continue
		}
		unique = append(unique, sel)
	}
	return unique
}
