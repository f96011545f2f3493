package debugger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/registry"
	"github.com/ormasoftchile/gait/pkg/runtime"
	"github.com/ormasoftchile/gait/pkg/step"
)

func testFeature() (*feature.Feature, *feature.Scenario) {
	f := &feature.Feature{
		Path: "features/demo.feature",
		Name: "demo",
		Scenarios: []feature.Scenario{{
			Name: "basic",
			Steps: []feature.Step{
				{Keyword: feature.Given, Text: "a step", Line: 3},
				{Keyword: feature.When, Text: "an action", Line: 4},
				{Keyword: feature.Then, Text: "a result", Line: 5},
			},
		}},
	}
	return f, &f.Scenarios[0]
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ok := func(c *step.Context, captures []string) (any, error) { return nil, nil }
	reg, err := registry.New([]registry.Definition{
		{Keyword: feature.Given, Pattern: "a step", Handler: ok, Source: "demo.go:10"},
		{Keyword: feature.When, Pattern: "an action", Handler: ok, Source: "demo.go:11"},
		{Keyword: feature.Then, Pattern: "a result", Handler: ok, Source: "demo.go:12"},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func newTestDebugger(t *testing.T, buf *bytes.Buffer) *Debugger {
	t.Helper()
	f, sc := testFeature()
	d := New(testRegistry(t), f, sc, map[string]string{"base_url": "http://localhost"})
	d.output = buf
	return d
}

func TestNextAdvancesThroughSteps(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDebugger(t, &buf)

	d.handleNext(context.Background())
	if d.index != 1 {
		t.Fatalf("index = %d after one next, want 1", d.index)
	}
	if d.steps[0].Status != runtime.StatusPassed {
		t.Errorf("step 0 status = %q", d.steps[0].Status)
	}
	if !strings.Contains(buf.String(), "✓ Given a step") {
		t.Errorf("output missing pass line: %s", buf.String())
	}
}

func TestContinueRunsToEnd(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDebugger(t, &buf)

	d.handleContinue(context.Background())
	if d.index != 3 {
		t.Fatalf("index = %d, want 3", d.index)
	}
	for i, st := range d.steps {
		if st.Status != runtime.StatusPassed {
			t.Errorf("step %d status = %q", i, st.Status)
		}
	}
}

func TestSkipBypassesWithoutDispatch(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDebugger(t, &buf)

	d.handleSkip()
	if d.steps[0].Status != runtime.StatusSkipped {
		t.Errorf("step 0 status = %q, want skipped", d.steps[0].Status)
	}
	if d.index != 1 {
		t.Errorf("index = %d, want 1", d.index)
	}

	// The remaining steps still dispatch normally.
	d.handleContinue(context.Background())
	if d.steps[1].Status != runtime.StatusPassed || d.steps[2].Status != runtime.StatusPassed {
		t.Error("steps after a debugger skip did not run")
	}
}

func TestHandlerSkipMarksRest(t *testing.T) {
	ok := func(c *step.Context, captures []string) (any, error) { return nil, nil }
	reg, err := registry.New([]registry.Definition{
		{Keyword: feature.Given, Pattern: "a step", Source: "d.go:1",
			Handler: func(c *step.Context, captures []string) (any, error) {
				return nil, step.Skipf("not implemented")
			}},
		{Keyword: feature.When, Pattern: "an action", Handler: ok, Source: "d.go:2"},
		{Keyword: feature.Then, Pattern: "a result", Handler: ok, Source: "d.go:3"},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	f, sc := testFeature()
	var buf bytes.Buffer
	d := New(reg, f, sc, nil)
	d.output = &buf

	d.handleNext(context.Background())
	if d.steps[0].Status != runtime.StatusSkipped {
		t.Fatalf("step 0 status = %q, want skipped", d.steps[0].Status)
	}
	for i := 1; i < 3; i++ {
		if d.steps[i].Status != runtime.StatusSkipped {
			t.Errorf("step %d not marked skipped after handler skip", i)
		}
	}
	if !d.done {
		t.Error("scenario not finished after skip")
	}
}

func TestVarsListsFixtures(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDebugger(t, &buf)
	d.handleVars()
	if !strings.Contains(buf.String(), "base_url") {
		t.Errorf("vars output missing fixture: %s", buf.String())
	}
}

func TestHelpListsCommands(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDebugger(t, &buf)
	d.handleHelp()
	for _, cmd := range []string{"next", "continue", "skip", "vars", "steps", "where", "help", "quit"} {
		if !strings.Contains(buf.String(), cmd) {
			t.Errorf("help output missing command %q", cmd)
		}
	}
}

func TestPromptFormat(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDebugger(t, &buf)
	prompt := d.buildPrompt()
	if !strings.Contains(prompt, "1/3") || !strings.Contains(prompt, "basic") {
		t.Errorf("prompt format unexpected: %q", prompt)
	}

	d.handleContinue(context.Background())
	if got := d.buildPrompt(); got != "gait[done]> " {
		t.Errorf("finished prompt = %q", got)
	}
}
