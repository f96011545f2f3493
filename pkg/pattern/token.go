// Package pattern implements the step-pattern template language: a lexer for
// literal/placeholder pattern text, a compiler that produces cached matchers,
// and the specificity score used to rank competing patterns.
package pattern

import (
	"fmt"
	"strings"
)

// TokenKind discriminates the token variants produced by Lex.
type TokenKind int

const (
	// TokenLiteral is a run of literal characters with escapes resolved.
	TokenLiteral TokenKind = iota
	// TokenPlaceholder is a {name} or {name:hint} capture slot.
	TokenPlaceholder
	// TokenOpenBrace is a stray '{' that did not open a placeholder.
	TokenOpenBrace
	// TokenCloseBrace is a stray '}' outside any placeholder.
	TokenCloseBrace
)

// Token is one element of a lexed pattern. Pos is the rune offset of the
// token's first character in the pattern text; all positions and counts in
// this package are rune-based, never byte-based.
type Token struct {
	Kind TokenKind
	Text string // literal text (TokenLiteral only)
	Name string // placeholder name (TokenPlaceholder only)
	Hint string // placeholder type hint, "" when absent
	Pos  int
}

// SyntaxError reports a malformed placeholder at a rune position.
type SyntaxError struct {
	Pos     int
	Name    string // offending placeholder name, when known
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("pattern syntax error at position %d in placeholder %q: %s", e.Pos, e.Name, e.Message)
	}
	return fmt.Sprintf("pattern syntax error at position %d: %s", e.Pos, e.Message)
}

// Lex tokenizes pattern text into literal, placeholder, and stray-brace
// tokens. A backslash escapes the following character into the current
// literal (a trailing lone backslash is itself a literal backslash); "{{"
// and "}}" are literal braces. A '{' followed by an identifier-start
// character opens a placeholder; any other '{', and any bare '}', is
// recorded as a stray brace token so the compiler can validate balance with
// positions instead of failing here.
func Lex(pattern string) ([]Token, error) {
	rs := []rune(pattern)
	var tokens []Token
	var lit strings.Builder
	litStart := 0

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: lit.String(), Pos: litStart})
			lit.Reset()
		}
	}
	add := func(pos int, r rune) {
		if lit.Len() == 0 {
			litStart = pos
		}
		lit.WriteRune(r)
	}

	i := 0
	for i < len(rs) {
		switch rs[i] {
		case '\\':
			if i+1 < len(rs) {
				add(i, rs[i+1])
				i += 2
			} else {
				add(i, '\\')
				i++
			}
		case '{':
			if i+1 < len(rs) && rs[i+1] == '{' {
				add(i, '{')
				i += 2
				continue
			}
			if i+1 < len(rs) && isIdentStart(rs[i+1]) {
				flush()
				tok, next, err := lexPlaceholder(rs, i)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, tok)
				i = next
				continue
			}
			flush()
			tokens = append(tokens, Token{Kind: TokenOpenBrace, Pos: i})
			i++
		case '}':
			if i+1 < len(rs) && rs[i+1] == '}' {
				add(i, '}')
				i += 2
				continue
			}
			flush()
			tokens = append(tokens, Token{Kind: TokenCloseBrace, Pos: i})
			i++
		default:
			add(i, rs[i])
			i++
		}
	}
	flush()
	return tokens, nil
}

// lexPlaceholder scans a placeholder starting at the '{' at rs[open]. The
// name is a run of identifier characters, optionally followed by ":hint",
// terminated by '}'. A '{' inside the hint is a fatal syntax error; nesting
// inside a type hint is never legal.
func lexPlaceholder(rs []rune, open int) (Token, int, error) {
	i := open + 1
	nameStart := i
	for i < len(rs) && isIdentChar(rs[i]) {
		i++
	}
	name := string(rs[nameStart:i])
	if i >= len(rs) {
		return Token{}, 0, &SyntaxError{Pos: open, Name: name, Message: "unterminated placeholder"}
	}
	switch rs[i] {
	case '}':
		return Token{Kind: TokenPlaceholder, Name: name, Pos: open}, i + 1, nil
	case ':':
		hintStart := i + 1
		for j := hintStart; j < len(rs); j++ {
			switch rs[j] {
			case '}':
				hint := string(rs[hintStart:j])
				return Token{Kind: TokenPlaceholder, Name: name, Hint: hint, Pos: open}, j + 1, nil
			case '{':
				return Token{}, 0, &SyntaxError{Pos: j, Name: name, Message: "'{' is not allowed inside a type hint"}
			}
		}
		return Token{}, 0, &SyntaxError{Pos: open, Name: name, Message: "unterminated placeholder"}
	default:
		return Token{}, 0, &SyntaxError{Pos: i, Name: name, Message: fmt.Sprintf("unexpected %q in placeholder", rs[i])}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
