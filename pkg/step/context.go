package step

import (
	"fmt"
	"sort"
)

// Context is the mutable fixture context of one running scenario. Steps
// within a scenario execute strictly sequentially and the context is handed
// off step to step, so access needs no locking; two steps never touch it
// concurrently.
type Context struct {
	fixtures map[string]any
	request  *Request
}

// NewContext returns an empty scenario context.
func NewContext() *Context {
	return &Context{fixtures: make(map[string]any)}
}

// Set stores a named fixture value, replacing any previous value.
func (c *Context) Set(name string, value any) {
	c.fixtures[name] = value
}

// Get returns a named fixture value.
func (c *Context) Get(name string) (any, bool) {
	v, ok := c.fixtures[name]
	return v, ok
}

// Has reports whether a fixture is set.
func (c *Context) Has(name string) bool {
	_, ok := c.fixtures[name]
	return ok
}

// Delete removes a fixture.
func (c *Context) Delete(name string) {
	delete(c.fixtures, name)
}

// Names returns the fixture names currently set, sorted.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.fixtures))
	for n := range c.fixtures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Request returns the step currently being dispatched, giving handlers
// access to the docstring/table arguments and diagnostic coordinates.
func (c *Context) Request() *Request {
	return c.request
}

// SetRequest installs the current step. The dispatcher calls this before
// each handler invocation.
func (c *Context) SetRequest(r *Request) {
	c.request = r
}

// FixtureAs retrieves a named fixture with a concrete type. A missing
// fixture or a type mismatch is an ordinary error for the handler to return.
func FixtureAs[T any](c *Context, name string) (T, error) {
	var zero T
	v, ok := c.Get(name)
	if !ok {
		return zero, fmt.Errorf("fixture %q is not set", name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("fixture %q holds %T, not %T", name, v, zero)
	}
	return t, nil
}
