// Package debugger implements the interactive REPL for stepping through one
// scenario's dispatch.
package debugger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/registry"
	"github.com/ormasoftchile/gait/pkg/runtime"
	"github.com/ormasoftchile/gait/pkg/step"
)

// stepState tracks one step's REPL status.
type stepState struct {
	Step    feature.Step
	Status  string // "", passed, failed, skipped
	Message string
}

// Debugger steps one scenario through the dispatcher interactively.
type Debugger struct {
	feat     *feature.Feature
	scenario *feature.Scenario
	disp     *runtime.Dispatcher
	steps    []stepState
	resolver feature.Resolver
	sctx     *step.Context
	index    int
	done     bool
	output   io.Writer
	rl       *readline.Instance
}

// New creates a debugger for one scenario of a parsed feature, with the
// background steps prepended. Seed fixtures are copied into the scenario
// context before the first step.
func New(reg *registry.Registry, feat *feature.Feature, sc *feature.Scenario, fixtures map[string]string) *Debugger {
	all := make([]stepState, 0, len(feat.Background)+len(sc.Steps))
	for _, st := range feat.Background {
		all = append(all, stepState{Step: st})
	}
	for _, st := range sc.Steps {
		all = append(all, stepState{Step: st})
	}

	sctx := step.NewContext()
	for name, v := range fixtures {
		sctx.Set(name, v)
	}

	return &Debugger{
		feat:     feat,
		scenario: sc,
		disp:     runtime.NewDispatcher(reg),
		steps:    all,
		sctx:     sctx,
		output:   os.Stdout,
	}
}

// Run starts the interactive REPL loop.
func (d *Debugger) Run(ctx context.Context) error {
	commands := []string{"next", "continue", "skip", "vars", "steps", "where", "help", "quit"}

	completer := readline.NewPrefixCompleter()
	for _, cmd := range commands {
		completer.Children = append(completer.Children, readline.PcItem(cmd))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          d.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	d.rl = rl
	defer rl.Close()

	fmt.Fprintf(d.output, "gait debugger — scenario %q, %d steps\n", d.scenario.Name, len(d.steps))
	fmt.Fprintf(d.output, "Type 'help' for available commands, 'next' to execute next step.\n\n")

	for {
		rl.SetPrompt(d.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch strings.Fields(line)[0] {
		case "next", "n":
			d.handleNext(ctx)
		case "continue", "c":
			d.handleContinue(ctx)
		case "skip":
			d.handleSkip()
		case "vars", "v":
			d.handleVars()
		case "steps":
			d.handleSteps()
		case "where", "w":
			d.handleWhere()
		case "help", "?":
			d.handleHelp()
		case "quit", "q":
			fmt.Fprintf(d.output, "Exiting debugger.\n")
			return nil
		default:
			fmt.Fprintf(d.output, "Unknown command: %q. Type 'help' for available commands.\n", line)
		}
	}
}

// buildPrompt creates the prompt string: gait[N/M | scenario]>
func (d *Debugger) buildPrompt() string {
	if d.index >= len(d.steps) || d.done {
		return "gait[done]> "
	}
	return fmt.Sprintf("gait[%d/%d | %s]> ", d.index+1, len(d.steps), d.scenario.Name)
}
