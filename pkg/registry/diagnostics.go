package registry

import (
	"sort"

	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/pattern"
)

// StepInfo describes one registered step for diagnostic listings.
type StepInfo struct {
	Keyword  feature.Keyword          `json:"keyword"`
	Pattern  string                   `json:"pattern"`
	Source   string                   `json:"source,omitempty"`
	Fixtures []string                 `json:"fixtures,omitempty"`
	Used     bool                     `json:"used"`
	Score    pattern.SpecificityScore `json:"score"`
}

// Snapshot lists every registered step in registration order with its usage
// flag (memory unioned with the ledger) and specificity score.
func (r *Registry) Snapshot() ([]StepInfo, error) {
	used, err := r.usedSet()
	if err != nil {
		return nil, err
	}
	out := make([]StepInfo, 0, len(r.ordered))
	for _, e := range r.ordered {
		var fixtures []string
		for _, f := range e.Fixtures {
			fixtures = append(fixtures, f.Name)
		}
		out = append(out, StepInfo{
			Keyword:  e.Keyword,
			Pattern:  e.Pattern,
			Source:   e.Source,
			Fixtures: fixtures,
			Used:     used[stepKey{e.Keyword, e.Pattern}],
			Score:    pattern.Score(e.Compiled.Tokens),
		})
	}
	return out, nil
}

// Candidate pairs a matching step with its specificity for diagnostics.
type Candidate struct {
	Entry *Entry
	Score pattern.SpecificityScore
}

// MatchesFor returns every step of the keyword whose matcher accepts the
// text, most specific first (ties keep registration order). It is read-only:
// unlike Find it marks nothing used, and dispatch never consults this
// ranking. Find stays first-match in registration order.
func (r *Registry) MatchesFor(kw feature.Keyword, text string) []Candidate {
	var out []Candidate
	for _, e := range r.byKw[kw] {
		if _, ok := e.Compiled.Match(text); ok {
			out = append(out, Candidate{Entry: e, Score: pattern.Score(e.Compiled.Tokens)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return pattern.Compare(out[i].Score, out[j].Score) > 0
	})
	return out
}

// DuplicateGroup is a (keyword, pattern) pair registered more than once,
// with every registration site. Duplicates abort a build on first sight;
// this diagnostic reports all of them at once for tooling.
type DuplicateGroup struct {
	Keyword feature.Keyword `json:"keyword"`
	Pattern string          `json:"pattern"`
	Sources []string        `json:"sources"`
}

// Duplicates groups definitions sharing a (keyword, pattern) pair, in first
// appearance order.
func Duplicates(defs []Definition) []DuplicateGroup {
	counts := make(map[stepKey][]string)
	var order []stepKey
	for _, d := range defs {
		key := stepKey{d.Keyword, d.Pattern}
		if len(counts[key]) == 0 {
			order = append(order, key)
		}
		counts[key] = append(counts[key], d.Source)
	}
	var out []DuplicateGroup
	for _, key := range order {
		if sources := counts[key]; len(sources) > 1 {
			out = append(out, DuplicateGroup{Keyword: key.Keyword, Pattern: key.Pattern, Sources: sources})
		}
	}
	return out
}
