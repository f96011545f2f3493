package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// PlaceholderSpec records one placeholder occurrence, in declaration order.
// A pattern that uses the same name twice carries two specs.
type PlaceholderSpec struct {
	Name string
	Hint string
}

// CompiledPattern is the matcher form of a pattern: the ordered placeholder
// specs plus an anchored regular expression derived from the token stream.
// Literal segments match exactly; placeholders capture non-greedily between
// them. Stray braces take part in balance validation and scoring but
// contribute no matched text.
type CompiledPattern struct {
	Source       string
	Tokens       []Token
	Placeholders []PlaceholderSpec

	re *regexp.Regexp
}

// BraceError reports stray braces that are not perfectly nested and
// balanced, carrying the rune position of the first offending brace.
type BraceError struct {
	Pos int
}

func (e *BraceError) Error() string {
	return fmt.Sprintf("unbalanced brace at position %d", e.Pos)
}

type compileResult struct {
	cp  *CompiledPattern
	err error
}

var (
	cacheMu sync.Mutex
	cache   = make(map[string]compileResult)
)

// Compile returns the compiled form of the pattern text, building it at most
// once per distinct text for the process lifetime. Failed compilations are
// cached too: validity is established once, at registry build, and a broken
// pattern is never retried at dispatch time.
func Compile(text string) (*CompiledPattern, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if r, ok := cache[text]; ok {
		return r.cp, r.err
	}
	cp, err := compile(text)
	cache[text] = compileResult{cp: cp, err: err}
	return cp, err
}

func compile(text string) (*CompiledPattern, error) {
	tokens, err := Lex(text)
	if err != nil {
		return nil, err
	}
	if err := checkBraceBalance(tokens); err != nil {
		return nil, err
	}

	var specs []PlaceholderSpec
	var re strings.Builder
	re.WriteString("^")
	for _, t := range tokens {
		switch t.Kind {
		case TokenLiteral:
			re.WriteString(regexp.QuoteMeta(t.Text))
		case TokenPlaceholder:
			specs = append(specs, PlaceholderSpec{Name: t.Name, Hint: t.Hint})
			re.WriteString("(.*?)")
		}
		// Stray braces: validated above, matched as nothing.
	}
	re.WriteString("$")

	matcher, err := regexp.Compile(re.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", text, err)
	}
	return &CompiledPattern{
		Source:       text,
		Tokens:       tokens,
		Placeholders: specs,
		re:           matcher,
	}, nil
}

// checkBraceBalance rejects stray Open/Close tokens that are not perfectly
// nested and balanced, reporting the first offending brace.
func checkBraceBalance(tokens []Token) error {
	var open []int
	for _, t := range tokens {
		switch t.Kind {
		case TokenOpenBrace:
			open = append(open, t.Pos)
		case TokenCloseBrace:
			if len(open) == 0 {
				return &BraceError{Pos: t.Pos}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return &BraceError{Pos: open[0]}
	}
	return nil
}

// Match tests step text against the pattern. It returns the ordered capture
// strings, one per placeholder occurrence, and whether the text matched.
// A miss is a plain false, not an error.
func (cp *CompiledPattern) Match(text string) ([]string, bool) {
	m := cp.re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}
