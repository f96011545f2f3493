package registry

import (
	"strings"
	"sync"
	"testing"

	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/step"
)

func noop(c *step.Context, captures []string) (any, error) {
	return nil, nil
}

func def(kw feature.Keyword, pat, source string) Definition {
	return Definition{Keyword: kw, Pattern: pat, Handler: noop, Source: source}
}

func TestNewCompilesEagerlyAndRejectsBadPatterns(t *testing.T) {
	_, err := New([]Definition{def(feature.Given, "{broken", "a.go:1")})
	if err == nil {
		t.Fatalf("expected build error for malformed pattern")
	}
	if !strings.Contains(err.Error(), "a.go:1") {
		t.Errorf("build error %q should carry the registration site", err)
	}
}

func TestDuplicateFailsAtBuildNotLookup(t *testing.T) {
	defs := []Definition{
		def(feature.Given, "a step", "a.go:1"),
		def(feature.Given, "a step", "b.go:2"),
	}
	_, err := New(defs)
	if err == nil {
		t.Fatalf("expected duplicate build error")
	}
	for _, want := range []string{"duplicate", "a.go:1", "b.go:2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestNewRejectsConjunctionKeywords(t *testing.T) {
	if _, err := New([]Definition{def(feature.And, "a step", "a.go:1")}); err == nil {
		t.Errorf("And-keyword definitions must fail the build")
	}
}

func TestNewRejectsHandlerlessDefinitions(t *testing.T) {
	d := Definition{Keyword: feature.Given, Pattern: "a step", Source: "a.go:1"}
	if _, err := New([]Definition{d}); err == nil {
		t.Errorf("definitions with no handler must fail the build")
	}
}

func TestLookupIsExactAndFindFallsBack(t *testing.T) {
	r, err := New([]Definition{
		def(feature.Given, "I have {count} apples", "a.go:1"),
		def(feature.Given, "a literal step", "a.go:2"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, ok := r.Lookup(feature.Given, "I have 5 apples"); ok {
		t.Errorf("Lookup must be exact, not matching")
	}
	if e, ok := r.Lookup(feature.Given, "a literal step"); !ok || e.Pattern != "a literal step" {
		t.Errorf("Lookup exact hit failed")
	}
	if e, ok := r.Find(feature.Given, "I have 5 apples"); !ok || e.Pattern != "I have {count} apples" {
		t.Errorf("Find fallback failed")
	}
	if _, ok := r.Find(feature.When, "I have 5 apples"); ok {
		t.Errorf("Find must respect the keyword")
	}
	if _, ok := r.Find(feature.Given, "nothing matches this"); ok {
		t.Errorf("miss must be a plain false")
	}
}

func TestFindIsFirstMatchNotBestMatch(t *testing.T) {
	// The later pattern is strictly more specific, but Find returns the
	// earlier registration; only MatchesFor ranks by specificity.
	r, err := New([]Definition{
		def(feature.Then, "{anything}", "a.go:1"),
		def(feature.Then, "the output is {expected}", "a.go:2"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e, ok := r.Find(feature.Then, "the output is fine")
	if !ok {
		t.Fatalf("expected a match")
	}
	if e.Pattern != "{anything}" {
		t.Errorf("Find returned %q; first registered match must win", e.Pattern)
	}

	ranked := r.MatchesFor(feature.Then, "the output is fine")
	if len(ranked) != 2 {
		t.Fatalf("MatchesFor returned %d candidates, want 2", len(ranked))
	}
	if ranked[0].Entry.Pattern != "the output is {expected}" {
		t.Errorf("MatchesFor must rank the more specific pattern first, got %q", ranked[0].Entry.Pattern)
	}
}

func TestUnusedFlipsAfterLookup(t *testing.T) {
	r, err := New([]Definition{
		def(feature.Given, "a step", "a.go:1"),
		def(feature.When, "an action", "a.go:2"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	unused, err := r.Unused()
	if err != nil {
		t.Fatalf("Unused: %v", err)
	}
	if len(unused) != 2 {
		t.Fatalf("before any lookup both steps must be unused, got %d", len(unused))
	}

	if _, ok := r.Find(feature.Given, "a step"); !ok {
		t.Fatalf("Find miss")
	}
	unused, err = r.Unused()
	if err != nil {
		t.Fatalf("Unused: %v", err)
	}
	if len(unused) != 1 || unused[0].Pattern != "an action" {
		t.Errorf("after lookup only the untouched step must remain, got %+v", unused)
	}
}

func TestMatchesForMarksNothingUsed(t *testing.T) {
	r, err := New([]Definition{def(feature.Given, "a step", "a.go:1")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.MatchesFor(feature.Given, "a step")
	unused, err := r.Unused()
	if err != nil {
		t.Fatalf("Unused: %v", err)
	}
	if len(unused) != 1 {
		t.Errorf("diagnostic matching must not mark steps used")
	}
}

func TestConcurrentMarkingLosesNoUpdates(t *testing.T) {
	defs := []Definition{
		def(feature.Given, "step one", "a.go:1"),
		def(feature.Given, "step two", "a.go:2"),
		def(feature.Given, "step three", "a.go:3"),
	}
	r, err := New(defs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, text := range []string{"step one", "step two", "step three"} {
				r.Find(feature.Given, text)
			}
		}()
	}
	wg.Wait()

	unused, err := r.Unused()
	if err != nil {
		t.Fatalf("Unused: %v", err)
	}
	if len(unused) != 0 {
		t.Errorf("all steps were hit; unused = %+v", unused)
	}
}

func TestSnapshotCarriesUsageAndScore(t *testing.T) {
	r, err := New([]Definition{
		def(feature.Given, "I have {count} apples", "a.go:1"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Find(feature.Given, "I have 5 apples")

	infos, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("snapshot size = %d", len(infos))
	}
	info := infos[0]
	if !info.Used {
		t.Errorf("step should be flagged used")
	}
	if info.Score.PlaceholderCount != 1 {
		t.Errorf("score = %+v, want one placeholder", info.Score)
	}
}

func TestDuplicatesGroupsAllSites(t *testing.T) {
	defs := []Definition{
		def(feature.Given, "a step", "a.go:1"),
		def(feature.When, "an action", "a.go:2"),
		def(feature.Given, "a step", "b.go:3"),
		def(feature.Given, "a step", "c.go:4"),
	}
	groups := Duplicates(defs)
	if len(groups) != 1 {
		t.Fatalf("groups = %+v, want exactly one", groups)
	}
	g := groups[0]
	if g.Keyword != feature.Given || g.Pattern != "a step" || len(g.Sources) != 3 {
		t.Errorf("group = %+v", g)
	}
}

func TestGlobalRegistryLifecycle(t *testing.T) {
	Reset()
	defer Reset()

	if err := Add(def(feature.Given, "a global step", "g.go:1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	r, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("global registry size = %d", r.Len())
	}

	// Registration closes at first build.
	if err := Add(def(feature.Given, "too late", "g.go:2")); err == nil {
		t.Errorf("Add after build must fail")
	}

	// Default is built once: same registry back.
	again, err := Default()
	if err != nil {
		t.Fatalf("Default (second): %v", err)
	}
	if again != r {
		t.Errorf("Default must return the same built registry")
	}

	Reset()
	if err := Add(def(feature.Given, "fresh", "g.go:3")); err != nil {
		t.Errorf("Add after Reset: %v", err)
	}
}

func TestGlobalBuildFailureIsSticky(t *testing.T) {
	Reset()
	defer Reset()

	MustAdd(def(feature.Given, "{broken", "g.go:1"))
	if _, err := Default(); err == nil {
		t.Fatalf("expected build failure")
	}
	// The failed build is remembered, not retried.
	if _, err := Default(); err == nil {
		t.Errorf("second Default must return the remembered failure")
	}
}
