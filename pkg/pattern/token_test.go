package pattern

import (
	"errors"
	"testing"
)

func TestLexLiteralsAndPlaceholders(t *testing.T) {
	tokens, err := Lex("I have {count:u32} apples")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []Token{
		{Kind: TokenLiteral, Text: "I have ", Pos: 0},
		{Kind: TokenPlaceholder, Name: "count", Hint: "u32", Pos: 7},
		{Kind: TokenLiteral, Text: " apples", Pos: 18},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i] != w {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], w)
		}
	}
}

func TestLexDoubleBracesAreLiterals(t *testing.T) {
	tokens, err := Lex("a {{b}} c")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1: %+v", len(tokens), tokens)
	}
	if tokens[0].Kind != TokenLiteral || tokens[0].Text != "a {b} c" {
		t.Errorf("got %+v, want literal %q", tokens[0], "a {b} c")
	}
}

func TestLexEscapes(t *testing.T) {
	cases := []struct {
		pattern string
		literal string
	}{
		{`\{x\}`, "{x}"},
		{`a\\b`, `a\b`},
		{`trailing\`, `trailing\`},
	}
	for _, tc := range cases {
		tokens, err := Lex(tc.pattern)
		if err != nil {
			t.Fatalf("Lex(%q): %v", tc.pattern, err)
		}
		if len(tokens) != 1 || tokens[0].Kind != TokenLiteral {
			t.Fatalf("Lex(%q) = %+v, want single literal", tc.pattern, tokens)
		}
		if tokens[0].Text != tc.literal {
			t.Errorf("Lex(%q) literal = %q, want %q", tc.pattern, tokens[0].Text, tc.literal)
		}
	}
}

func TestLexStrayBraces(t *testing.T) {
	tokens, err := Lex("{ not a placeholder}")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []Token{
		{Kind: TokenOpenBrace, Pos: 0},
		{Kind: TokenLiteral, Text: " not a placeholder", Pos: 1},
		{Kind: TokenCloseBrace, Pos: 19},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i] != w {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], w)
		}
	}
}

func TestLexPlaceholderSyntaxErrors(t *testing.T) {
	cases := []struct {
		pattern  string
		wantName string
		wantPos  int
	}{
		{"{name", "name", 0},
		{"{name:u32", "name", 0},
		{"{name:u{32}", "name", 7},
		{"{na me}", "na", 3},
	}
	for _, tc := range cases {
		_, err := Lex(tc.pattern)
		if err == nil {
			t.Fatalf("Lex(%q): expected error", tc.pattern)
		}
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("Lex(%q): error %T, want *SyntaxError", tc.pattern, err)
		}
		if serr.Name != tc.wantName {
			t.Errorf("Lex(%q): name %q, want %q", tc.pattern, serr.Name, tc.wantName)
		}
		if serr.Pos != tc.wantPos {
			t.Errorf("Lex(%q): pos %d, want %d", tc.pattern, serr.Pos, tc.wantPos)
		}
	}
}

func TestLexPositionsAreRuneBased(t *testing.T) {
	// "café " is five characters but six bytes.
	tokens, err := Lex("café {x}")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(tokens), tokens)
	}
	if tokens[1].Kind != TokenPlaceholder || tokens[1].Pos != 5 {
		t.Errorf("placeholder token = %+v, want pos 5", tokens[1])
	}
}
