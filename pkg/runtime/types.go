package runtime

import (
	"time"

	"github.com/ormasoftchile/gait/pkg/feature"
)

// Step and scenario statuses used throughout reporting.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StepResult records one dispatched step.
type StepResult struct {
	Keyword  feature.Keyword `json:"keyword"`  // as written in the feature
	Resolved feature.Keyword `json:"resolved"` // after And/But resolution
	Text     string          `json:"text"`
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"` // skip message
	Err      error           `json:"-"`
	Error    string          `json:"error,omitempty"`
	Line     int             `json:"line,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// ScenarioResult aggregates one scenario's steps. Err is set when the
// scenario failed, including a skip forced into failure by policy.
type ScenarioResult struct {
	Name     string        `json:"name"`
	Tags     []feature.Tag `json:"tags,omitempty"`
	Steps    []StepResult  `json:"steps"`
	Status   string        `json:"status"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// FeatureResult aggregates one feature file.
type FeatureResult struct {
	Path      string           `json:"path"`
	Name      string           `json:"name"`
	Scenarios []ScenarioResult `json:"scenarios"`
	Duration  time.Duration    `json:"duration"`
}

// Summary counts a run at scenario granularity, with the step total
// alongside.
type Summary struct {
	Features  int `json:"features"`
	Scenarios int `json:"scenarios"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Steps     int `json:"steps"`
}

// RunResult is a whole run.
type RunResult struct {
	Features []FeatureResult `json:"features"`
	Summary  Summary         `json:"summary"`
	Duration time.Duration   `json:"duration"`
}

// Failed reports whether any scenario failed.
func (r *RunResult) Failed() bool {
	return r.Summary.Failed > 0
}

// EventSink receives run progress between steps. The runner calls it
// synchronously; implementations hand off to their own goroutine when they
// need to do slow work.
type EventSink interface {
	ScenarioStarted(featurePath, scenario string, totalSteps int)
	StepFinished(featurePath, scenario string, result StepResult)
	ScenarioFinished(featurePath, scenario string, result ScenarioResult)
}
