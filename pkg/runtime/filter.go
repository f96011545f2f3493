package runtime

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ormasoftchile/gait/pkg/feature"
)

// TagFilter selects scenarios by evaluating a boolean expression against
// their effective tags (feature tags unioned with scenario tags). The
// environment exposes `tags` as a string list and `has(name)`:
//
//	has("smoke") && !has("wip")
//
// The expression compiles once at construction; Match only evaluates it.
type TagFilter struct {
	src     string
	program *vm.Program
}

// NewTagFilter compiles a filter expression. An empty expression yields a
// nil filter, meaning select everything.
func NewTagFilter(src string) (*TagFilter, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	program, err := expr.Compile(src, expr.Env(filterEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &TagFilter{src: src, program: program}, nil
}

// String returns the filter source.
func (tf *TagFilter) String() string {
	return tf.src
}

// Match evaluates the filter against a scenario's effective tags.
func (tf *TagFilter) Match(tags []feature.Tag) (bool, error) {
	out, err := expr.Run(tf.program, filterEnv(tags))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", tf.src, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q evaluated to %T, want bool", tf.src, out)
	}
	return b, nil
}

func filterEnv(tags []feature.Tag) map[string]any {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}
	return map[string]any{
		"tags": names,
		"has": func(name string) bool {
			return feature.HasTag(tags, name)
		},
	}
}
