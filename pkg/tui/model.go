// Package tui implements the live run view: an in-process Bubble Tea model
// fed by runner events, showing scenarios and their steps as they execute
// with a failure-detail viewport.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/gait/pkg/runtime"
)

// Step status glyphs, matching the console report.
const (
	glyphPending = "○"
	glyphPassed  = "✓"
	glyphFailed  = "✗"
	glyphSkipped = "⏭"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	scenarioStyle = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	passedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	skippedStyle  = lipgloss.NewStyle().Faint(true)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	spinnerStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	panelBorder   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// --- Messages ---

type scenarioStartedMsg struct {
	Feature  string
	Scenario string
	Total    int
}

type stepFinishedMsg struct {
	Feature  string
	Scenario string
	Result   runtime.StepResult
}

type scenarioFinishedMsg struct {
	Feature  string
	Scenario string
	Result   runtime.ScenarioResult
}

type runCompleteMsg struct {
	Result *runtime.RunResult
	Err    error
}

// stepRow is one rendered step line.
type stepRow struct {
	Keyword  string
	Text     string
	Status   string
	Message  string
	Error    string
	Duration time.Duration
}

// scenarioBlock groups the rows of one scenario.
type scenarioBlock struct {
	Feature string
	Name    string
	Total   int
	Steps   []stepRow
	Status  string // "" while running
}

// Model is the Bubble Tea model for the live run view.
type Model struct {
	title     string
	narrative string // feature description, glamour-rendered

	scenarios []scenarioBlock
	selected  int

	spinner  spinner.Model
	detail   viewport.Model
	running  bool
	done     bool
	result   *runtime.RunResult
	err      error
	cancel   context.CancelFunc
	width    int
	height   int
}

// NewModel creates the run view. cancel stops the runner when the user
// quits mid-run.
func NewModel(title, narrative string, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		title:     title,
		narrative: renderMarkdown(narrative),
		spinner:   sp,
		detail:    viewport.New(0, 8),
		running:   true,
		cancel:    cancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refreshDetail()
			}
		case "down", "j":
			if m.selected < len(m.scenarios)-1 {
				m.selected++
				m.refreshDetail()
			}
		case "pgup":
			m.detail.HalfViewUp()
		case "pgdown":
			m.detail.HalfViewDown()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width - 4

	case scenarioStartedMsg:
		m.scenarios = append(m.scenarios, scenarioBlock{
			Feature: msg.Feature, Name: msg.Scenario, Total: msg.Total,
		})
		m.selected = len(m.scenarios) - 1
		m.refreshDetail()

	case stepFinishedMsg:
		if b := m.currentBlock(msg.Feature, msg.Scenario); b != nil {
			b.Steps = append(b.Steps, stepRow{
				Keyword:  string(msg.Result.Keyword),
				Text:     msg.Result.Text,
				Status:   msg.Result.Status,
				Message:  msg.Result.Message,
				Error:    msg.Result.Error,
				Duration: msg.Result.Duration,
			})
			m.refreshDetail()
		}

	case scenarioFinishedMsg:
		if b := m.currentBlock(msg.Feature, msg.Scenario); b != nil {
			b.Status = msg.Result.Status
		}

	case runCompleteMsg:
		m.running = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// currentBlock finds the block for a (feature, scenario) pair, scanning from
// the end since events arrive for the newest scenario.
func (m *Model) currentBlock(featurePath, scenario string) *scenarioBlock {
	for i := len(m.scenarios) - 1; i >= 0; i-- {
		b := &m.scenarios[i]
		if b.Feature == featurePath && b.Name == scenario {
			return b
		}
	}
	return nil
}

// refreshDetail rebuilds the viewport content for the selected scenario.
func (m *Model) refreshDetail() {
	if m.selected >= len(m.scenarios) {
		m.detail.SetContent("")
		return
	}
	b := m.scenarios[m.selected]
	var sb strings.Builder
	for _, s := range b.Steps {
		if s.Error != "" {
			sb.WriteString(failedStyle.Render(s.Error))
			sb.WriteString("\n")
		}
		if s.Message != "" {
			sb.WriteString(skippedStyle.Render("skipped: " + s.Message))
			sb.WriteString("\n")
		}
	}
	m.detail.SetContent(sb.String())
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("gait: " + m.title))
	b.WriteString("\n")
	if m.narrative != "" {
		b.WriteString(m.narrative)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, sc := range m.scenarios {
		name := sc.Name
		if i == m.selected {
			b.WriteString(selectedStyle.Render("▸ " + name))
		} else {
			b.WriteString(scenarioStyle.Render("  " + name))
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%s)", sc.Feature)))
		b.WriteString("\n")
		for _, s := range sc.Steps {
			b.WriteString("    " + stepLine(s) + "\n")
		}
		if sc.Status == "" && m.running && i == len(m.scenarios)-1 {
			b.WriteString("    " + m.spinner.View() + dimStyle.Render(fmt.Sprintf(" %d/%d", len(sc.Steps), sc.Total)) + "\n")
		}
	}

	if detail := strings.TrimSpace(m.detail.View()); detail != "" {
		b.WriteString("\n")
		b.WriteString(panelBorder.Render(m.detail.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		if m.result != nil {
			s := m.result.Summary
			line := fmt.Sprintf("%d scenarios: %d passed, %d failed, %d skipped", s.Scenarios, s.Passed, s.Failed, s.Skipped)
			if m.result.Failed() {
				b.WriteString(failedStyle.Render(glyphFailed + " " + line))
			} else {
				b.WriteString(passedStyle.Render(glyphPassed + " " + line))
			}
		}
		if m.err != nil {
			b.WriteString("\n" + failedStyle.Render(m.err.Error()))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("  q: quit  ↑/↓: browse  PgUp/PgDn: scroll detail"))

	return b.String()
}

func stepLine(s stepRow) string {
	line := s.Keyword + " " + s.Text
	switch s.Status {
	case runtime.StatusPassed:
		return passedStyle.Render(glyphPassed) + " " + line
	case runtime.StatusFailed:
		return failedStyle.Render(glyphFailed) + " " + line
	case runtime.StatusSkipped:
		return skippedStyle.Render(glyphSkipped + " " + line)
	}
	return glyphPending + " " + line
}
