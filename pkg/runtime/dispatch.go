// Package runtime drives step execution: the dispatcher resolves one step
// against the registry and classifies its result into the outcome protocol;
// the runner orchestrates whole scenarios, threading the shared fixture
// context and applying suite policy.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ormasoftchile/gait/pkg/registry"
	"github.com/ormasoftchile/gait/pkg/step"
)

// Dispatcher executes single steps against a built registry.
type Dispatcher struct {
	reg *registry.Registry
}

// NewDispatcher wraps a registry for dispatch.
func NewDispatcher(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Registry exposes the underlying registry for callers that need raw
// Lookup/Find access to a bare handler reference.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.reg
}

// Execute runs one step to an outcome. The returned error, when non-nil, is
// always a *step.ExecutionError. A skip, however the handler signalled it,
// comes back as a Skipped outcome, never as an error.
func (d *Dispatcher) Execute(ctx context.Context, req step.Request, sc *step.Context) (step.Outcome, error) {
	entry, ok := d.reg.Find(req.Keyword, req.Text)
	if !ok {
		return step.Outcome{}, &step.ExecutionError{
			Kind: step.KindStepNotFound,
			Index: req.Index, Keyword: req.Keyword, Text: req.Text,
			FeaturePath: req.FeaturePath, ScenarioName: req.ScenarioName,
		}
	}

	captures, ok := entry.Compiled.Match(req.Text)
	if !ok {
		// Find accepted this text a moment ago; the registry and the
		// matcher cannot disagree.
		panic(fmt.Sprintf("pattern %q matched %q in find but not in capture extraction", entry.Pattern, req.Text))
	}

	if required, missing := missingFixtures(entry, sc); len(missing) > 0 {
		return step.Outcome{}, &step.ExecutionError{
			Kind:     step.KindMissingFixtures,
			Index:    req.Index,
			Keyword:  req.Keyword,
			Text:     req.Text,
			Pattern:  entry.Pattern,
			Location: entry.Source,
			Required: required, Missing: missing, Available: sc.Names(),
			FeaturePath: req.FeaturePath, ScenarioName: req.ScenarioName,
		}
	}

	captures, err := normalizeCaptures(entry, captures)
	if err != nil {
		return step.Outcome{}, &step.ExecutionError{
			Kind: step.KindHandlerFailed,
			Index: req.Index, Keyword: req.Keyword, Text: req.Text, Err: err,
			FeaturePath: req.FeaturePath, ScenarioName: req.ScenarioName,
		}
	}

	sc.SetRequest(&req)
	payload, err := invoke(ctx, entry, sc, captures)

	var sig *step.SkipSignal
	if errors.As(err, &sig) {
		return step.Skipped(sig.Message), nil
	}
	if err != nil {
		return step.Outcome{}, &step.ExecutionError{
			Kind: step.KindHandlerFailed,
			Index: req.Index, Keyword: req.Keyword, Text: req.Text, Err: err,
			FeaturePath: req.FeaturePath, ScenarioName: req.ScenarioName,
		}
	}
	return step.Continue(payload), nil
}

// invoke calls the handler, preferring the ctx-aware shape when both are
// registered. A panic carrying the skip marker surfaces as that marker on
// the error channel; any other panic becomes an ordinary handler error.
func invoke(ctx context.Context, e *registry.Entry, sc *step.Context, captures []string) (payload any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if sig, ok := rec.(*step.SkipSignal); ok {
				err = sig
				return
			}
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	if e.HandlerCtx != nil {
		return e.HandlerCtx(ctx, sc, captures)
	}
	return e.Handler(sc, captures)
}

// missingFixtures checks the handler's fixture requirements against the
// scenario context. A fixture holding an incompatible type counts as
// missing.
func missingFixtures(e *registry.Entry, sc *step.Context) (required, missing []string) {
	for _, spec := range e.Fixtures {
		required = append(required, spec.Name)
		v, ok := sc.Get(spec.Name)
		if !ok || !spec.Compatible(v) {
			missing = append(missing, spec.Name)
		}
	}
	return required, missing
}

// normalizeCaptures applies hint-driven capture post-processing. A :string
// hint promises a quoted literal: exactly one leading and one trailing
// character are stripped, and a raw capture shorter than two characters is
// a malformed quoted value.
func normalizeCaptures(e *registry.Entry, captures []string) ([]string, error) {
	for i, spec := range e.Compiled.Placeholders {
		if spec.Hint != "string" {
			continue
		}
		raw := captures[i]
		if utf8.RuneCountInString(raw) < 2 {
			return nil, fmt.Errorf("placeholder %q: malformed quoted value %q", spec.Name, raw)
		}
		rs := []rune(raw)
		captures[i] = string(rs[1 : len(rs)-1])
	}
	return captures, nil
}
