package step

import "fmt"

// OutcomeKind discriminates the two non-error step outcomes.
type OutcomeKind int

const (
	// KindContinue means the step succeeded and the scenario proceeds.
	KindContinue OutcomeKind = iota
	// KindSkipped means the step asked to bypass the rest of the scenario.
	KindSkipped
)

// Outcome is the non-error result of one dispatched step.
type Outcome struct {
	Kind    OutcomeKind
	Payload any    // Continue only; nil when the handler returned nothing
	Message string // Skipped only
}

// Continue builds a success outcome carrying an optional payload.
func Continue(payload any) Outcome {
	return Outcome{Kind: KindContinue, Payload: payload}
}

// Skipped builds a skip outcome with an optional message.
func Skipped(message string) Outcome {
	return Outcome{Kind: KindSkipped, Message: message}
}

// SkipSignal is the dedicated skip marker. It travels the error channel as a
// returned error and the panic channel via Skip, and the dispatcher converts
// it into a Skipped outcome on both paths, so a catch-all recover can never
// misclassify a skip as a failure.
type SkipSignal struct {
	Message string
}

func (s *SkipSignal) Error() string {
	if s.Message == "" {
		return "step skipped"
	}
	return "step skipped: " + s.Message
}

// Skipf returns the skip signal as an error, for handlers that skip by
// returning.
func Skipf(format string, args ...any) error {
	return &SkipSignal{Message: fmt.Sprintf(format, args...)}
}

// Skip aborts the running handler by panicking with a SkipSignal, for call
// sites too deep to thread an error return. The dispatcher recovers it.
func Skip(message string) {
	panic(&SkipSignal{Message: message})
}
