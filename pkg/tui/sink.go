package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ormasoftchile/gait/pkg/runtime"
)

// Sink bridges runner events into the Bubble Tea program. The runner calls
// it from its own goroutine; Program.Send is safe for that.
type Sink struct {
	program *tea.Program
}

// NewSink wraps a running program.
func NewSink(p *tea.Program) *Sink {
	return &Sink{program: p}
}

// ScenarioStarted implements runtime.EventSink.
func (s *Sink) ScenarioStarted(featurePath, scenario string, totalSteps int) {
	s.program.Send(scenarioStartedMsg{Feature: featurePath, Scenario: scenario, Total: totalSteps})
}

// StepFinished implements runtime.EventSink.
func (s *Sink) StepFinished(featurePath, scenario string, result runtime.StepResult) {
	s.program.Send(stepFinishedMsg{Feature: featurePath, Scenario: scenario, Result: result})
}

// ScenarioFinished implements runtime.EventSink.
func (s *Sink) ScenarioFinished(featurePath, scenario string, result runtime.ScenarioResult) {
	s.program.Send(scenarioFinishedMsg{Feature: featurePath, Scenario: scenario, Result: result})
}

// RunComplete delivers the final result; the view switches from the spinner
// to the summary line.
func (s *Sink) RunComplete(result *runtime.RunResult, err error) {
	s.program.Send(runCompleteMsg{Result: result, Err: err})
}
