package pattern

import "unicode/utf8"

// SpecificityScore ranks a pattern for disambiguation among several that
// match the same step text: more literal characters beats fewer; ties fall
// to the pattern with fewer placeholders; remaining ties to the one with
// more typed placeholders.
//
// The score is consulted only by consumers that gather every candidate match
// (diagnostic tooling); the registry's own fallback Find stays first-match
// in registration order. The two behaviours are deliberately different.
type SpecificityScore struct {
	LiteralChars          int `json:"literal_chars"`
	PlaceholderCount      int `json:"placeholder_count"`
	TypedPlaceholderCount int `json:"typed_placeholder_count"`
}

// Score computes the specificity of a token stream. Stray brace tokens count
// one literal character each: they rank as literal text even though the
// matcher never consumes them.
func Score(tokens []Token) SpecificityScore {
	var s SpecificityScore
	for _, t := range tokens {
		switch t.Kind {
		case TokenLiteral:
			s.LiteralChars += utf8.RuneCountInString(t.Text)
		case TokenOpenBrace, TokenCloseBrace:
			s.LiteralChars++
		case TokenPlaceholder:
			s.PlaceholderCount++
			if t.Hint != "" {
				s.TypedPlaceholderCount++
			}
		}
	}
	return s
}

// Compare returns -1, 0, or 1 as a ranks below, equal to, or above b.
func Compare(a, b SpecificityScore) int {
	switch {
	case a.LiteralChars != b.LiteralChars:
		if a.LiteralChars > b.LiteralChars {
			return 1
		}
		return -1
	case a.PlaceholderCount != b.PlaceholderCount:
		if a.PlaceholderCount < b.PlaceholderCount {
			return 1
		}
		return -1
	case a.TypedPlaceholderCount != b.TypedPlaceholderCount:
		if a.TypedPlaceholderCount > b.TypedPlaceholderCount {
			return 1
		}
		return -1
	}
	return 0
}

// ScoreText lexes and scores arbitrary pattern text. It never touches the
// compile cache and is read-only with respect to dispatch state.
func ScoreText(pattern string) (SpecificityScore, error) {
	tokens, err := Lex(pattern)
	if err != nil {
		return SpecificityScore{}, err
	}
	return Score(tokens), nil
}
