package debugger

import (
	"context"
	"fmt"

	"github.com/ormasoftchile/gait/pkg/runtime"
	"github.com/ormasoftchile/gait/pkg/step"
)

// handleNext executes the next step and advances.
func (d *Debugger) handleNext(ctx context.Context) {
	if d.index >= len(d.steps) || d.done {
		fmt.Fprintf(d.output, "All steps completed.\n")
		return
	}

	st := &d.steps[d.index]
	resolved, err := d.resolver.Resolve(st.Step.Keyword)
	if err != nil {
		st.Status = runtime.StatusFailed
		st.Message = err.Error()
		fmt.Fprintf(d.output, "  ✗ %s\n", err)
		d.done = true
		return
	}

	req := step.Request{
		Index:        d.index,
		Keyword:      resolved,
		Text:         st.Step.Text,
		DocString:    st.Step.DocString,
		Table:        st.Step.Table,
		FeaturePath:  d.feat.Path,
		ScenarioName: d.scenario.Name,
	}

	outcome, execErr := d.disp.Execute(ctx, req, d.sctx)
	switch {
	case execErr != nil:
		st.Status = runtime.StatusFailed
		st.Message = execErr.Error()
		fmt.Fprintf(d.output, "  ✗ %s %s\n      %s\n", st.Step.Keyword, st.Step.Text, execErr)
		d.done = true
	case outcome.Kind == step.KindSkipped:
		st.Status = runtime.StatusSkipped
		st.Message = outcome.Message
		fmt.Fprintf(d.output, "  ⏭ %s %s", st.Step.Keyword, st.Step.Text)
		if outcome.Message != "" {
			fmt.Fprintf(d.output, " (%s)", outcome.Message)
		}
		fmt.Fprintln(d.output)
		d.markRestSkipped()
		d.done = true
	default:
		st.Status = runtime.StatusPassed
		fmt.Fprintf(d.output, "  ✓ %s %s\n", st.Step.Keyword, st.Step.Text)
		d.index++
	}
}

// handleContinue executes all remaining steps, halting where the scenario
// would halt.
func (d *Debugger) handleContinue(ctx context.Context) {
	for d.index < len(d.steps) && !d.done {
		d.handleNext(ctx)
	}
	if !d.done {
		fmt.Fprintf(d.output, "All steps completed.\n")
	}
}

// handleSkip bypasses the current step without dispatching it, the manual
// counterpart of a handler's skip signal.
func (d *Debugger) handleSkip() {
	if d.index >= len(d.steps) || d.done {
		fmt.Fprintf(d.output, "Nothing to skip.\n")
		return
	}
	st := &d.steps[d.index]
	st.Status = runtime.StatusSkipped
	st.Message = "skipped from debugger"
	fmt.Fprintf(d.output, "  ⏭ %s %s (debugger)\n", st.Step.Keyword, st.Step.Text)
	// The keyword still advances the resolver so a following And resolves.
	if st.Step.Keyword.Primary() {
		d.resolver.Resolve(st.Step.Keyword)
	}
	d.index++
}

// handleVars prints the scenario context fixtures.
func (d *Debugger) handleVars() {
	names := d.sctx.Names()
	if len(names) == 0 {
		fmt.Fprintf(d.output, "No fixtures set.\n")
		return
	}
	for _, name := range names {
		v, _ := d.sctx.Get(name)
		display := fmt.Sprintf("%v", v)
		if len(display) > 200 {
			display = display[:200] + "..."
		}
		fmt.Fprintf(d.output, "  %s = %q (%T)\n", name, display, v)
	}
}

// handleSteps lists every step with its status glyph.
func (d *Debugger) handleSteps() {
	for i, st := range d.steps {
		glyph := "○"
		switch st.Status {
		case runtime.StatusPassed:
			glyph = "✓"
		case runtime.StatusFailed:
			glyph = "✗"
		case runtime.StatusSkipped:
			glyph = "⏭"
		}
		marker := " "
		if i == d.index && !d.done {
			marker = "▸"
		}
		fmt.Fprintf(d.output, " %s %s [%d] %s %s\n", marker, glyph, i+1, st.Step.Keyword, st.Step.Text)
		if st.Message != "" {
			fmt.Fprintf(d.output, "       %s\n", st.Message)
		}
	}
}

// handleWhere shows the current position.
func (d *Debugger) handleWhere() {
	if d.index >= len(d.steps) || d.done {
		fmt.Fprintf(d.output, "Scenario %q finished.\n", d.scenario.Name)
		return
	}
	st := d.steps[d.index]
	fmt.Fprintf(d.output, "  %s:%d — step %d of %d in scenario %q\n",
		d.feat.Path, st.Step.Line, d.index+1, len(d.steps), d.scenario.Name)
	fmt.Fprintf(d.output, "  %s %s\n", st.Step.Keyword, st.Step.Text)
}

// handleHelp displays available commands.
func (d *Debugger) handleHelp() {
	fmt.Fprintln(d.output, "Available commands:")
	fmt.Fprintln(d.output, "  next (n)      Execute the next step")
	fmt.Fprintln(d.output, "  continue (c)  Execute all remaining steps")
	fmt.Fprintln(d.output, "  skip          Bypass the current step without running it")
	fmt.Fprintln(d.output, "  vars (v)      Show scenario context fixtures")
	fmt.Fprintln(d.output, "  steps         List all steps with status")
	fmt.Fprintln(d.output, "  where (w)     Show the current position")
	fmt.Fprintln(d.output, "  help (?)      Show this help")
	fmt.Fprintln(d.output, "  quit (q)      Exit debugger")
}

// markRestSkipped flags the steps after the current one as skipped.
func (d *Debugger) markRestSkipped() {
	for i := d.index + 1; i < len(d.steps); i++ {
		d.steps[i].Status = runtime.StatusSkipped
	}
	d.index = len(d.steps)
}
