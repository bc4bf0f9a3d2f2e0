package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CheckResult maps each selector to a presence flag.
// Keys are unique and keep their insertion order, which is also the order
// used when the result is encoded as JSON.
//
// A CheckResult is built once by the checker and only read afterwards.
type CheckResult struct {
	selectors []string
	present   map[string]bool
}

// NewCheckResult creates an empty CheckResult with room for n selectors.
func NewCheckResult(n int) *CheckResult {
	return &CheckResult{
		selectors: make([]string, 0, n),
		present:   make(map[string]bool, n),
	}
}

// Set records the presence flag for a selector. A selector that is already
// present keeps its original position.
func (r *CheckResult) Set(selector string, present bool) {
	if _, ok := r.present[selector]; !ok {
		r.selectors = append(r.selectors, selector)
	}
	r.present[selector] = present
}

// Get returns the presence flag of selector and whether it was checked.
func (r *CheckResult) Get(selector string) (present, ok bool) {
	if r == nil {
		return false, false
	}
	present, ok = r.present[selector]
	return present, ok
}

// Len returns the number of selectors in the result.
func (r *CheckResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.selectors)
}

// Selectors returns the selectors in result order.
func (r *CheckResult) Selectors() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.selectors))
	copy(out, r.selectors)
	return out
}

// Each calls fn for every selector in result order.
func (r *CheckResult) Each(fn func(selector string, present bool)) {
	if r == nil {
		return
	}
	for _, sel := range r.selectors {
		fn(sel, r.present[sel])
	}
}

// Summary counts present and missing selectors.
func (r *CheckResult) Summary() Summary {
	var s Summary
	r.Each(func(_ string, present bool) {
		s.Total++
		if present {
			s.Present++
		} else {
			s.Missing++
		}
	})
	return s
}

// Equal reports whether both results hold the same selectors, in the same
// order, with the same flags.
func (r *CheckResult) Equal(other *CheckResult) bool {
	if r.Len() != other.Len() {
		return false
	}
	for i, sel := range r.Selectors() {
		if other.selectors[i] != sel || other.present[sel] != r.present[sel] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the result as a JSON object whose keys follow the
// result order.
func (r *CheckResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	r.Each(func(selector string, present bool) {
		if err != nil {
			return
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if err = writeKey(&buf, selector); err != nil {
			return
		}
		buf.WriteByte(':')
		if present {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeKey appends selector as a JSON string. Selectors are written as-is,
// so combinators such as '>' and '&' inside attribute values stay readable.
func writeKey(buf *bytes.Buffer, selector string) error {
	var key bytes.Buffer
	enc := json.NewEncoder(&key)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(selector); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(key.Bytes(), []byte{'\n'}))
	return nil
}

// errNotObject is returned when decoding a CheckResult from anything other
// than a JSON object.
var errNotObject = errors.New("check result must be a JSON object")

// UnmarshalJSON decodes a JSON object of booleans, keeping key order.
func (r *CheckResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	decoded := NewCheckResult(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errNotObject
		}
		var present bool
		if err := dec.Decode(&present); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		decoded.Set(key, present)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = *decoded
	return nil
}

// Summary holds the counts of a CheckResult.
type Summary struct {
	// Total is the number of selectors checked.
	Total int `json:"total"`

	// Present is the number of selectors that matched at least one element.
	Present int `json:"present"`

	// Missing is the number of selectors that matched nothing.
	Missing int `json:"missing"`
}

// AllPresent reports whether every checked selector matched.
func (s Summary) AllPresent() bool {
	return s.Missing == 0
}
