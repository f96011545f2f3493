// Package feature holds the structured feature-file model: keywords,
// steps with docstring/table arguments, scenarios, and a line-oriented
// parser producing the ordered (keyword, text) pairs fed into dispatch.
package feature

import "fmt"

// Keyword is one of the closed set of step keywords.
type Keyword string

const (
	Given Keyword = "Given"
	When  Keyword = "When"
	Then  Keyword = "Then"
	And   Keyword = "And"
	But   Keyword = "But"
)

// Primary reports whether k stands on its own. And/But are conjunctions that
// borrow the nearest preceding primary keyword instead.
func (k Keyword) Primary() bool {
	return k == Given || k == When || k == Then
}

// ParseKeyword maps a step's leading word to its Keyword.
func ParseKeyword(word string) (Keyword, bool) {
	switch Keyword(word) {
	case Given, When, Then, And, But:
		return Keyword(word), true
	}
	return "", false
}

// Resolver resolves And/But conjunctions to the nearest preceding primary
// keyword in a step sequence. The resolution state lives here and is
// threaded through by the caller; the registry never stores it.
type Resolver struct {
	last Keyword
}

// Resolve maps k to its effective keyword, updating the resolver state when
// k is primary. A leading And/But has no antecedent and is an error.
func (r *Resolver) Resolve(k Keyword) (Keyword, error) {
	if k.Primary() {
		r.last = k
		return k, nil
	}
	if r.last == "" {
		return "", fmt.Errorf("%s has no preceding Given/When/Then to resolve against", k)
	}
	return r.last, nil
}

// Reset clears the resolution state between scenarios.
func (r *Resolver) Reset() {
	r.last = ""
}
