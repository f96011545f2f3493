package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/gait/pkg/runtime"
)

// Writer streams run progress to an io.Writer as it happens and renders the
// final summary. It implements runtime.EventSink; the runner calls it
// synchronously between steps, so no locking is needed.
type Writer struct {
	out   io.Writer
	plain bool

	lastFeature string
}

// NewWriter returns a styled console reporter.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// NewPlainWriter returns a reporter with styling disabled, for non-TTY
// output and log capture.
func NewPlainWriter(out io.Writer) *Writer {
	return &Writer{out: out, plain: true}
}

func (w *Writer) render(style lipgloss.Style, s string) string {
	if w.plain {
		return s
	}
	return style.Render(s)
}

// ScenarioStarted implements runtime.EventSink.
func (w *Writer) ScenarioStarted(featurePath, scenario string, totalSteps int) {
	if featurePath != w.lastFeature {
		fmt.Fprintf(w.out, "\n%s\n", w.render(featureStyle, featurePath))
		w.lastFeature = featurePath
	}
	fmt.Fprintf(w.out, "  %s\n", w.render(scenarioStyle, scenario))
}

// StepFinished implements runtime.EventSink.
func (w *Writer) StepFinished(featurePath, scenario string, sr runtime.StepResult) {
	line := fmt.Sprintf("%s %s", sr.Keyword, sr.Text)
	switch sr.Status {
	case runtime.StatusPassed:
		fmt.Fprintf(w.out, "    %s %s\n", w.render(stepPassed, GlyphPassed), line)
	case runtime.StatusFailed:
		fmt.Fprintf(w.out, "    %s %s\n", w.render(stepFailed, GlyphFailed), line)
		if sr.Error != "" {
			fmt.Fprintf(w.out, "      %s\n", w.render(errorStyle, sr.Error))
		}
	case runtime.StatusSkipped:
		fmt.Fprintf(w.out, "    %s\n", w.render(stepSkipped, GlyphSkipped+" "+line))
		if sr.Message != "" {
			fmt.Fprintf(w.out, "      %s\n", w.render(skipNoteStyle, "skipped: "+sr.Message))
		}
	}
}

// ScenarioFinished implements runtime.EventSink.
func (w *Writer) ScenarioFinished(featurePath, scenario string, res runtime.ScenarioResult) {
	if res.Status == runtime.StatusFailed && res.Error != "" && len(res.Steps) == 0 {
		fmt.Fprintf(w.out, "    %s\n", w.render(errorStyle, res.Error))
	}
}

// Summary renders the end-of-run block.
func (w *Writer) Summary(r *runtime.RunResult) {
	s := r.Summary
	fmt.Fprintf(w.out, "\n%s\n", w.render(summaryTitleStyle, "Run complete"))

	line := fmt.Sprintf("  %d features, %d scenarios, %d steps", s.Features, s.Scenarios, s.Steps)
	fmt.Fprintln(w.out, line)

	stats := ""
	if s.Passed > 0 {
		stats += w.render(summaryPassedStyle, fmt.Sprintf("%s%d passed", GlyphPassed, s.Passed))
	}
	if s.Failed > 0 {
		if stats != "" {
			stats += "  "
		}
		stats += w.render(summaryFailedStyle, fmt.Sprintf("%s%d failed", GlyphFailed, s.Failed))
	}
	if s.Skipped > 0 {
		if stats != "" {
			stats += "  "
		}
		stats += w.render(stepSkipped, fmt.Sprintf("%s%d skipped", GlyphSkipped, s.Skipped))
	}
	if stats != "" {
		fmt.Fprintf(w.out, "  %s\n", stats)
	}

	fmt.Fprintf(w.out, "  %s\n", w.render(dimStyle, formatDuration(r.Duration)))
}

// WriteJSON emits the whole run result as indented JSON, for the json
// report style and machine consumers.
func WriteJSON(out io.Writer, r *runtime.RunResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// formatDuration returns a human-friendly duration string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
