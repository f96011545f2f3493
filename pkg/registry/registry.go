// Package registry implements the process-wide step registry: build-once
// registration of (keyword, pattern) handlers, exact and fallback lookup,
// and the cross-run usage ledger behind unused-step reporting.
package registry

import (
	"fmt"
	"sync"

	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/pattern"
	"github.com/ormasoftchile/gait/pkg/step"
)

// Definition is one externally-registered step. Registration is the only
// entry point by which steps populate the registry; the generation layer
// (or hand-written glue) supplies these before first use.
type Definition struct {
	Keyword    feature.Keyword
	Pattern    string
	Handler    step.Handler
	HandlerCtx step.HandlerCtx // optional ctx-aware shape
	Source     string          // file:line of the registration site
	Fixtures   []step.FixtureSpec
}

// Entry is a built registry row: the definition plus its compiled pattern.
type Entry struct {
	Definition
	Compiled *pattern.CompiledPattern
}

type stepKey struct {
	Keyword feature.Keyword
	Pattern string
}

// Registry maps (keyword, pattern text) to handlers. It is built once from
// the collected definitions and read concurrently afterwards; the usage
// state is its only post-build mutable part.
type Registry struct {
	ordered  []*Entry
	byKey    map[stepKey]*Entry
	byKw     map[feature.Keyword][]*Entry

	usageMu sync.Mutex
	used    map[stepKey]bool
	ledger  *Ledger
}

// New builds a registry from definitions: every pattern is compiled eagerly
// and the build aborts on the first malformed pattern, duplicate
// (keyword, pattern) pair, non-primary keyword, or handlerless definition.
// A failed build never yields a partial registry.
func New(defs []Definition) (*Registry, error) {
	r := &Registry{
		byKey: make(map[stepKey]*Entry, len(defs)),
		byKw:  make(map[feature.Keyword][]*Entry),
		used:  make(map[stepKey]bool),
	}
	for _, def := range defs {
		if !def.Keyword.Primary() {
			return nil, fmt.Errorf("step %q (%s): steps register under Given/When/Then; %s resolves to its antecedent at dispatch",
				def.Pattern, def.Source, def.Keyword)
		}
		if def.Handler == nil && def.HandlerCtx == nil {
			return nil, fmt.Errorf("step %s %q (%s): no handler", def.Keyword, def.Pattern, def.Source)
		}
		cp, err := pattern.Compile(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("step %s %q (%s): %w", def.Keyword, def.Pattern, def.Source, err)
		}
		key := stepKey{def.Keyword, def.Pattern}
		if prev, ok := r.byKey[key]; ok {
			return nil, fmt.Errorf("duplicate step %s %q registered at %s and %s",
				def.Keyword, def.Pattern, prev.Source, def.Source)
		}
		e := &Entry{Definition: def, Compiled: cp}
		r.byKey[key] = e
		r.byKw[def.Keyword] = append(r.byKw[def.Keyword], e)
		r.ordered = append(r.ordered, e)
	}
	return r, nil
}

// SetLedger attaches the persisted usage ledger. A nil ledger keeps usage
// in memory only.
func (r *Registry) SetLedger(l *Ledger) {
	r.usageMu.Lock()
	r.ledger = l
	r.usageMu.Unlock()
}

// Lookup returns the step whose pattern text equals literalText for the
// keyword, marking it used on a hit. This is the O(1) path; step text that
// coincides verbatim with a registered pattern's text resolves here.
func (r *Registry) Lookup(kw feature.Keyword, literalText string) (*Entry, bool) {
	e, ok := r.byKey[stepKey{kw, literalText}]
	if !ok {
		return nil, false
	}
	r.markUsed(e)
	return e, true
}

// Find resolves step text to a registered step: Lookup first, then a scan
// of the keyword's steps in registration order, returning the first whose
// matcher accepts the text. The scan is deliberately first-match, not
// best-match; only diagnostic tooling ranks candidates by specificity.
// A miss is (nil, false), never an error.
func (r *Registry) Find(kw feature.Keyword, text string) (*Entry, bool) {
	if e, ok := r.Lookup(kw, text); ok {
		return e, true
	}
	for _, e := range r.byKw[kw] {
		if _, ok := e.Compiled.Match(text); ok {
			r.markUsed(e)
			return e, true
		}
	}
	return nil, false
}

// Steps returns every entry in registration order.
func (r *Registry) Steps() []*Entry {
	return r.ordered
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// markUsed records usage in memory and best-effort appends to the persisted
// ledger. A ledger write failure never fails the calling dispatch.
func (r *Registry) markUsed(e *Entry) {
	key := stepKey{e.Keyword, e.Pattern}
	r.usageMu.Lock()
	r.used[key] = true
	ledger := r.ledger
	r.usageMu.Unlock()
	if ledger != nil {
		_ = ledger.Append(e.Keyword, e.Pattern)
	}
}

// usedSet unions the in-memory usage set with the persisted ledger.
func (r *Registry) usedSet() (map[stepKey]bool, error) {
	r.usageMu.Lock()
	union := make(map[stepKey]bool, len(r.used))
	for k := range r.used {
		union[k] = true
	}
	ledger := r.ledger
	r.usageMu.Unlock()

	if ledger != nil {
		persisted, err := ledger.Used()
		if err != nil {
			return union, fmt.Errorf("read usage ledger: %w", err)
		}
		for k := range persisted {
			union[k] = true
		}
	}
	return union, nil
}

// Unused returns the registered steps never marked used, in registration
// order. The in-memory set is unioned with the persisted ledger, so usage
// survives across separate runs of the same suite.
func (r *Registry) Unused() ([]*Entry, error) {
	used, err := r.usedSet()
	if err != nil {
		return nil, err
	}
	var out []*Entry
	for _, e := range r.ordered {
		if !used[stepKey{e.Keyword, e.Pattern}] {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- process-wide registry ---

var (
	globalMu  sync.Mutex
	pending   []Definition
	global    *Registry
	globalErr error
	built     bool
)

// Add queues a definition for the process-wide registry. Definitions are
// collected until the first Default call builds the registry; afterwards
// registration is closed.
func Add(def Definition) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if built {
		return fmt.Errorf("step %s %q (%s): registry already built", def.Keyword, def.Pattern, def.Source)
	}
	pending = append(pending, def)
	return nil
}

// MustAdd is Add for init-time registration glue; a post-build registration
// is a programming error and panics.
func MustAdd(def Definition) {
	if err := Add(def); err != nil {
		panic(err)
	}
}

// Default returns the process-wide registry, building it on first call from
// every definition queued so far. The build happens exactly once: a failed
// build is remembered and returned until Reset.
func Default() (*Registry, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if !built {
		global, globalErr = New(pending)
		built = true
	}
	return global, globalErr
}

// Pending returns the queued definitions when the process-wide registry has
// not been built yet. Diagnostic tooling uses it to report duplicates in
// bulk before a build would abort on the first.
func Pending() []Definition {
	globalMu.Lock()
	defer globalMu.Unlock()
	out := make([]Definition, len(pending))
	copy(out, pending)
	return out
}

// Reset drains the process-wide registry and its queued definitions for
// test isolation between runs.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	pending = nil
	global = nil
	globalErr = nil
	built = false
}
