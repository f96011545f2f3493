// Package step defines the shared vocabulary between the step registry, the
// execution dispatcher, and their callers: execution requests, the
// Continue/Skipped outcome protocol, the tagged execution errors, the
// mutable fixture context, and the handler signatures.
package step

import (
	"context"
	"reflect"

	"github.com/ormasoftchile/gait/pkg/feature"
)

// Request describes one step about to be dispatched. It is created per call
// and carried for diagnostic context only, never stored.
type Request struct {
	Index        int
	Keyword      feature.Keyword
	Text         string
	DocString    *feature.DocString
	Table        *feature.DataTable
	FeaturePath  string
	ScenarioName string
}

// Handler is the synchronous, run-to-completion handler shape. captures are
// the placeholder values extracted from the step text, in pattern order.
// A non-nil returned payload is carried in the Continue outcome.
type Handler func(c *Context, captures []string) (any, error)

// HandlerCtx is the cooperative handler shape: it may block on ctx-aware
// operations. Capture extraction happens before invocation and is never
// suspended.
type HandlerCtx func(ctx context.Context, c *Context, captures []string) (any, error)

// FixtureSpec names a context value a handler requires before it runs. When
// Type is non-nil the stored value must be assignable to it; a nil Type
// accepts any value.
type FixtureSpec struct {
	Name string
	Type reflect.Type
}

// Compatible reports whether v satisfies the spec.
func (s FixtureSpec) Compatible(v any) bool {
	if s.Type == nil {
		return true
	}
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	return t.AssignableTo(s.Type)
}
