package runtime

import (
	"context"
	"time"

	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/registry"
	"github.com/ormasoftchile/gait/pkg/step"
)

// DefaultAllowSkipTag is the scenario tag exempting it from the
// fail-on-skipped policy.
const DefaultAllowSkipTag = "allow-skip"

// Runner executes parsed features against a registry. Scenarios run one
// after another; the steps of a scenario run strictly sequentially with the
// background prepended, handing one mutable context step to step.
type Runner struct {
	Registry      *registry.Registry
	FailOnSkipped bool           // convert skips to failures unless the scenario allows them
	AllowSkipTag  string         // tag overriding FailOnSkipped; DefaultAllowSkipTag when empty
	Filter        *TagFilter     // optional scenario selection
	Fixtures      map[string]any // seed fixtures copied into every scenario context
	Events        EventSink      // optional progress observer

	disp *Dispatcher
}

func (r *Runner) dispatcher() *Dispatcher {
	if r.disp == nil {
		r.disp = NewDispatcher(r.Registry)
	}
	return r.disp
}

func (r *Runner) allowSkipTag() string {
	if r.AllowSkipTag != "" {
		return r.AllowSkipTag
	}
	return DefaultAllowSkipTag
}

// Run executes the features in order. Cancelling ctx stops the run between
// scenarios; the partial result is still returned. The error reports run
// infrastructure problems (a broken filter expression); step and scenario
// failures live in the result.
func (r *Runner) Run(ctx context.Context, features []*feature.Feature) (*RunResult, error) {
	result := &RunResult{}
	start := time.Now()
	for _, f := range features {
		if ctx.Err() != nil {
			break
		}
		fr := FeatureResult{Path: f.Path, Name: f.Name}
		fstart := time.Now()
		for i := range f.Scenarios {
			if ctx.Err() != nil {
				break
			}
			sc := &f.Scenarios[i]
			if r.Filter != nil {
				selected, err := r.Filter.Match(feature.MergeTags(f.Tags, sc.Tags))
				if err != nil {
					return nil, err
				}
				if !selected {
					continue
				}
			}
			if r.Events != nil {
				r.Events.ScenarioStarted(f.Path, sc.Name, len(f.Background)+len(sc.Steps))
			}
			sres := r.runScenario(ctx, f, sc)
			if r.Events != nil {
				r.Events.ScenarioFinished(f.Path, sc.Name, sres)
			}
			fr.Scenarios = append(fr.Scenarios, sres)
			result.Summary.Scenarios++
			result.Summary.Steps += len(sres.Steps)
			switch sres.Status {
			case StatusPassed:
				result.Summary.Passed++
			case StatusFailed:
				result.Summary.Failed++
			case StatusSkipped:
				result.Summary.Skipped++
			}
		}
		fr.Duration = time.Since(fstart)
		result.Features = append(result.Features, fr)
		result.Summary.Features++
	}
	result.Duration = time.Since(start)
	return result, nil
}

// runScenario executes background steps then scenario steps against a fresh
// context. The first error aborts the scenario, leaving other scenarios
// unaffected; a skip aborts the remaining steps without failing the
// scenario unless the fail-on-skipped policy converts it afterwards.
func (r *Runner) runScenario(ctx context.Context, f *feature.Feature, sc *feature.Scenario) ScenarioResult {
	res := ScenarioResult{Name: sc.Name, Tags: feature.MergeTags(f.Tags, sc.Tags)}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
	}()

	steps := make([]feature.Step, 0, len(f.Background)+len(sc.Steps))
	steps = append(steps, f.Background...)
	steps = append(steps, sc.Steps...)

	sctx := step.NewContext()
	for name, v := range r.Fixtures {
		sctx.Set(name, v)
	}

	var resolver feature.Resolver
	var skip *step.ExecutionError
	for i, st := range steps {
		resolved, err := resolver.Resolve(st.Keyword)
		if err != nil {
			execErr := &step.ExecutionError{
				Kind: step.KindHandlerFailed,
				Index: i, Keyword: st.Keyword, Text: st.Text, Err: err,
				FeaturePath: f.Path, ScenarioName: sc.Name,
			}
			r.record(&res, f, sc, failedStep(st, st.Keyword, execErr))
			res.Status = StatusFailed
			res.Err = execErr
			return res
		}

		req := step.Request{
			Index:        i,
			Keyword:      resolved,
			Text:         st.Text,
			DocString:    st.DocString,
			Table:        st.Table,
			FeaturePath:  f.Path,
			ScenarioName: sc.Name,
		}
		stepStart := time.Now()
		outcome, execErr := r.dispatcher().Execute(ctx, req, sctx)
		sr := StepResult{
			Keyword:  st.Keyword,
			Resolved: resolved,
			Text:     st.Text,
			Line:     st.Line,
			Duration: time.Since(stepStart),
		}

		if execErr != nil {
			sr.Status = StatusFailed
			sr.Err = execErr
			sr.Error = execErr.Error()
			r.record(&res, f, sc, sr)
			res.Status = StatusFailed
			res.Err = execErr
			return res
		}

		if outcome.Kind == step.KindSkipped {
			sr.Status = StatusSkipped
			sr.Message = outcome.Message
			r.record(&res, f, sc, sr)
			skip = &step.ExecutionError{
				Kind: step.KindSkip,
				Index: i, Keyword: resolved, Text: st.Text, Message: outcome.Message,
				FeaturePath: f.Path, ScenarioName: sc.Name,
			}
			break
		}

		// The Continue payload is part of the outcome protocol for direct
		// Execute callers; the runner does not consume it.
		sr.Status = StatusPassed
		r.record(&res, f, sc, sr)
	}

	if skip != nil {
		res.Status = StatusSkipped
		if r.FailOnSkipped && !feature.HasTag(res.Tags, r.allowSkipTag()) {
			// Converted only here, after the executed steps have completed.
			res.Status = StatusFailed
			res.Err = skip
		}
		return res
	}

	res.Status = StatusPassed
	return res
}

func (r *Runner) record(res *ScenarioResult, f *feature.Feature, sc *feature.Scenario, sr StepResult) {
	res.Steps = append(res.Steps, sr)
	if r.Events != nil {
		r.Events.StepFinished(f.Path, sc.Name, sr)
	}
}

func failedStep(st feature.Step, resolved feature.Keyword, err error) StepResult {
	return StepResult{
		Keyword:  st.Keyword,
		Resolved: resolved,
		Text:     st.Text,
		Line:     st.Line,
		Status:   StatusFailed,
		Err:      err,
		Error:    err.Error(),
	}
}
