package feature

// Tag is a scenario or feature annotation in canonical form, without the
// leading '@'.
type Tag string

// Feature is one parsed feature file.
type Feature struct {
	Path        string
	Name        string
	Description string
	Tags        []Tag
	Background  []Step
	Scenarios   []Scenario
}

// Scenario is a named, ordered step sequence.
type Scenario struct {
	Name  string
	Tags  []Tag
	Steps []Step
	Line  int
}

// Step is one line of a scenario: a keyword, literal text, and optionally a
// docstring or data-table argument.
type Step struct {
	Keyword   Keyword
	Text      string
	DocString *DocString
	Table     *DataTable
	Line      int
}

// DocString is a fenced multi-line step argument with an optional media
// type from the opening delimiter (e.g. """json).
type DocString struct {
	MediaType string
	Content   string
}

// DataTable is a pipe-delimited step argument.
type DataTable struct {
	Rows [][]string
}

// MergeTags unions feature-level and scenario-level tags, preserving first
// appearance order and dropping duplicates.
func MergeTags(feature, scenario []Tag) []Tag {
	seen := make(map[Tag]bool, len(feature)+len(scenario))
	var out []Tag
	for _, set := range [][]Tag{feature, scenario} {
		for _, t := range set {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// HasTag reports whether name (with or without a leading '@') is present.
func HasTag(tags []Tag, name string) bool {
	if len(name) > 0 && name[0] == '@' {
		name = name[1:]
	}
	for _, t := range tags {
		if string(t) == name {
			return true
		}
	}
	return false
}
