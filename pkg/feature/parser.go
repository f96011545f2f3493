package feature

import (
	"fmt"
	"os"
	"strings"
)

// ParseError reports a malformed feature file with its location.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
}

// ParseFile reads and parses one feature file.
func ParseFile(path string) (*Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature: %w", err)
	}
	return Parse(path, string(data))
}

// Parse parses feature text. The path is carried for diagnostics only.
//
// The grammar is the line-oriented subset this runtime consumes: optional
// @tags, one Feature: with free-form description lines, an optional
// Background: (before any scenario), Scenario: blocks, step lines, """
// docstrings with an optional media type, and | data-table rows. Scenario
// outlines are not supported.
func Parse(path, src string) (*Feature, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	var (
		feat          *Feature
		cur           *Scenario
		pending       []Tag
		desc          []string
		inBackground  bool
		sawBackground bool
		sawScenario   bool
	)

	fail := func(lineNo int, format string, args ...any) error {
		return &ParseError{Path: path, Line: lineNo, Message: fmt.Sprintf(format, args...)}
	}

	lastStep := func() *Step {
		if inBackground {
			if n := len(feat.Background); n > 0 {
				return &feat.Background[n-1]
			}
			return nil
		}
		if cur != nil && len(cur.Steps) > 0 {
			return &cur.Steps[len(cur.Steps)-1]
		}
		return nil
	}

	flushDescription := func() {
		if feat != nil && feat.Description == "" && len(desc) > 0 {
			feat.Description = strings.Join(desc, "\n")
		}
		desc = nil
	}

	i := 0
	for i < len(lines) {
		raw := lines[i]
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			i++

		case strings.HasPrefix(line, "@"):
			for _, f := range strings.Fields(line) {
				if !strings.HasPrefix(f, "@") || len(f) < 2 {
					return nil, fail(lineNo, "malformed tag %q", f)
				}
				pending = append(pending, Tag(f[1:]))
			}
			i++

		case strings.HasPrefix(line, "Feature:"):
			if feat != nil {
				return nil, fail(lineNo, "duplicate Feature section")
			}
			feat = &Feature{
				Path: path,
				Name: strings.TrimSpace(strings.TrimPrefix(line, "Feature:")),
				Tags: pending,
			}
			pending = nil
			i++

		case strings.HasPrefix(line, "Scenario Outline:") || strings.HasPrefix(line, "Examples:"):
			return nil, fail(lineNo, "scenario outlines are not supported")

		case strings.HasPrefix(line, "Background:"):
			if feat == nil {
				return nil, fail(lineNo, "Background before Feature")
			}
			if sawScenario {
				return nil, fail(lineNo, "Background must precede scenarios")
			}
			if sawBackground {
				return nil, fail(lineNo, "duplicate Background section")
			}
			if len(pending) > 0 {
				return nil, fail(lineNo, "tags are not allowed on Background")
			}
			flushDescription()
			inBackground = true
			sawBackground = true
			cur = nil
			i++

		case strings.HasPrefix(line, "Scenario:"):
			if feat == nil {
				return nil, fail(lineNo, "Scenario before Feature")
			}
			flushDescription()
			feat.Scenarios = append(feat.Scenarios, Scenario{
				Name: strings.TrimSpace(strings.TrimPrefix(line, "Scenario:")),
				Tags: pending,
				Line: lineNo,
			})
			cur = &feat.Scenarios[len(feat.Scenarios)-1]
			pending = nil
			inBackground = false
			sawScenario = true
			i++

		case strings.HasPrefix(line, `"""`):
			step := lastStep()
			if step == nil {
				return nil, fail(lineNo, "docstring without a preceding step")
			}
			if step.DocString != nil {
				return nil, fail(lineNo, "step already has a docstring")
			}
			mediaType := strings.TrimSpace(strings.TrimPrefix(line, `"""`))
			indent := raw[:len(raw)-len(strings.TrimLeft(raw, " \t"))]
			var content []string
			j := i + 1
			for ; j < len(lines); j++ {
				if strings.TrimSpace(lines[j]) == `"""` {
					break
				}
				content = append(content, strings.TrimPrefix(lines[j], indent))
			}
			if j >= len(lines) {
				return nil, fail(lineNo, "unterminated docstring")
			}
			step.DocString = &DocString{MediaType: mediaType, Content: strings.Join(content, "\n")}
			i = j + 1

		case strings.HasPrefix(line, "|"):
			step := lastStep()
			if step == nil {
				return nil, fail(lineNo, "table row without a preceding step")
			}
			cells, err := parseTableRow(line)
			if err != nil {
				return nil, fail(lineNo, "%v", err)
			}
			if step.Table == nil {
				step.Table = &DataTable{}
			} else if want := len(step.Table.Rows[0]); len(cells) != want {
				return nil, fail(lineNo, "table row has %d cells, want %d", len(cells), want)
			}
			step.Table.Rows = append(step.Table.Rows, cells)
			i++

		default:
			if k, rest, ok := cutKeyword(line); ok {
				if feat == nil || (!inBackground && cur == nil) {
					return nil, fail(lineNo, "step outside of a scenario or background")
				}
				if rest == "" {
					return nil, fail(lineNo, "%s step has no text", k)
				}
				step := Step{Keyword: k, Text: rest, Line: lineNo}
				if inBackground {
					feat.Background = append(feat.Background, step)
				} else {
					cur.Steps = append(cur.Steps, step)
				}
				i++
				continue
			}
			if feat == nil {
				return nil, fail(lineNo, "content before Feature:")
			}
			if sawBackground || sawScenario {
				return nil, fail(lineNo, "unexpected line %q", line)
			}
			desc = append(desc, line)
			i++
		}
	}

	if feat == nil {
		return nil, fail(len(lines), "no Feature section")
	}
	if len(pending) > 0 {
		return nil, fail(len(lines), "tags are not attached to a scenario")
	}
	flushDescription()
	return feat, nil
}

// cutKeyword splits a step line into its keyword and text.
func cutKeyword(line string) (Keyword, string, bool) {
	word, rest, found := strings.Cut(line, " ")
	if !found {
		if k, ok := ParseKeyword(line); ok {
			return k, "", true
		}
		return "", "", false
	}
	k, ok := ParseKeyword(word)
	if !ok {
		return "", "", false
	}
	return k, strings.TrimSpace(rest), true
}

// parseTableRow splits a pipe-delimited row into trimmed cells. Backslash
// escapes: \| for a literal pipe, \\ for a backslash, \n for a newline.
func parseTableRow(line string) ([]string, error) {
	rs := []rune(line)
	var cells []string
	var cell strings.Builder
	endedAtPipe := false
	for i := 1; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			endedAtPipe = false
			if i+1 < len(rs) {
				i++
				if rs[i] == 'n' {
					cell.WriteByte('\n')
				} else {
					cell.WriteRune(rs[i])
				}
			} else {
				cell.WriteByte('\\')
			}
		case '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
			endedAtPipe = true
		default:
			endedAtPipe = false
			cell.WriteRune(rs[i])
		}
	}
	if !endedAtPipe {
		return nil, fmt.Errorf("table row must end with '|'")
	}
	return cells, nil
}
