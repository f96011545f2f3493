package step

import (
	"fmt"
	"strings"

	"github.com/ormasoftchile/gait/pkg/feature"
)

// ErrorKind tags the ExecutionError variants.
type ErrorKind int

const (
	// KindSkip marks a skip converted into a forced failure by the
	// fail-on-skipped policy. The dispatcher itself never returns it: a
	// skip signal always becomes a Skipped outcome first.
	KindSkip ErrorKind = iota
	// KindStepNotFound means no registered step matched the text.
	KindStepNotFound
	// KindMissingFixtures means the handler's required fixtures were absent
	// or carried incompatible types.
	KindMissingFixtures
	// KindHandlerFailed wraps a handler error or non-skip panic.
	KindHandlerFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindSkip:
		return "skipped"
	case KindStepNotFound:
		return "step not found"
	case KindMissingFixtures:
		return "missing fixtures"
	case KindHandlerFailed:
		return "handler failed"
	}
	return "unknown"
}

// ExecutionError is the tagged error produced around dispatch. Every kind
// renders a message carrying enough context (feature path, scenario, step
// index, keyword, text) to locate the failing step without further tooling.
type ExecutionError struct {
	Kind         ErrorKind
	Index        int
	Keyword      feature.Keyword
	Text         string
	Message      string   // KindSkip: the skip message
	Pattern      string   // KindMissingFixtures: the matched pattern
	Location     string   // KindMissingFixtures: handler registration site
	Required     []string // KindMissingFixtures
	Missing      []string // KindMissingFixtures
	Available    []string // KindMissingFixtures
	Err          error    // KindHandlerFailed: the cause
	FeaturePath  string
	ScenarioName string
}

func (e *ExecutionError) Error() string {
	at := e.at()
	switch e.Kind {
	case KindStepNotFound:
		return fmt.Sprintf("no registered step matches %s %q%s", e.Keyword, e.Text, at)
	case KindMissingFixtures:
		return fmt.Sprintf("step %q (registered at %s) requires fixtures [%s], missing [%s], available [%s]%s",
			e.Pattern, e.Location,
			strings.Join(e.Required, ", "), strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "), at)
	case KindHandlerFailed:
		return fmt.Sprintf("%s %q failed: %v%s", e.Keyword, e.Text, e.Err, at)
	case KindSkip:
		msg := e.Message
		if msg == "" {
			msg = "no message"
		}
		return fmt.Sprintf("%s %q skipped (%s) and the run fails on skipped steps%s", e.Keyword, e.Text, msg, at)
	}
	return fmt.Sprintf("step execution error%s", at)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// at renders the diagnostic suffix locating the step.
func (e *ExecutionError) at() string {
	var b strings.Builder
	fmt.Fprintf(&b, " (step %d", e.Index+1)
	if e.ScenarioName != "" {
		fmt.Fprintf(&b, " of scenario %q", e.ScenarioName)
	}
	if e.FeaturePath != "" {
		fmt.Fprintf(&b, " in %s", e.FeaturePath)
	}
	b.WriteString(")")
	return b.String()
}
