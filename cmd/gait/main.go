package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/gait/pkg/config"
	"github.com/ormasoftchile/gait/pkg/debugger"
	"github.com/ormasoftchile/gait/pkg/feature"
	"github.com/ormasoftchile/gait/pkg/pattern"
	"github.com/ormasoftchile/gait/pkg/registry"
	"github.com/ormasoftchile/gait/pkg/report"
	"github.com/ormasoftchile/gait/pkg/runtime"
	"github.com/ormasoftchile/gait/pkg/tui"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	loadDotEnv() // load .env file if present (gitignored)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv reads a .env file from the working directory and sets
// any variables that aren't already set in the environment.
// Lines are KEY=VALUE (or KEY="VALUE"). Comments (#) and blanks are skipped.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return // no .env file — that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "gait",
	Short: "Scenario-driven test runner",
	Long:  "gait runs behavioural test scenarios against a registry of pattern-matched step definitions.",
}

// loadSuite reads the suite config: an explicit --config path must exist,
// the default file may be absent.
func loadSuite(path string) (*config.Suite, error) {
	if path == "" {
		path = config.DefaultFileName
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	s, errs := config.ValidateFile(path)
	if errs != nil {
		var fatal int
		for _, e := range errs {
			if e.Severity == "warning" {
				fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
				continue
			}
			fatal++
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "    at: %s\n", e.Path)
			}
		}
		if fatal > 0 {
			return nil, fmt.Errorf("config validation failed with %d error(s)", fatal)
		}
	}
	return s, nil
}

// --- run ---

var (
	runConfigPath    string
	runFilter        string
	runFailOnSkipped bool
	runTUI           bool
	runJSON          bool
)

var runCmd = &cobra.Command{
	Use:   "run [features...]",
	Short: "Run feature files against the registered steps",
	Long: `Run feature files against the registered steps.

Feature files are taken from the arguments, or from the suite config's
feature globs when no arguments are given. The usage ledger under the
ledger directory is appended as steps match, so 'gait unused' reports
across runs.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	suite, err := loadSuite(runConfigPath)
	if err != nil {
		return err
	}

	globs := args
	if len(globs) == 0 {
		globs = suite.Features
	}
	features, err := feature.LoadGlobs(globs)
	if err != nil {
		return err
	}
	if len(features) == 0 {
		return fmt.Errorf("no feature files matched %v", globs)
	}

	reg, err := registry.Default()
	if err != nil {
		return fmt.Errorf("build step registry: %w", err)
	}
	ledger, err := registry.OpenLedger(suite.LedgerDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: usage ledger unavailable: %v\n", err)
	} else {
		reg.SetLedger(ledger)
		defer ledger.Close()
	}

	filterSrc := runFilter
	if filterSrc == "" {
		filterSrc = suite.Filter
	}
	filter, err := runtime.NewTagFilter(filterSrc)
	if err != nil {
		return err
	}

	fixtures := make(map[string]any, len(suite.Fixtures))
	for name, v := range suite.Fixtures {
		fixtures[name] = v
	}

	runner := &runtime.Runner{
		Registry:      reg,
		FailOnSkipped: runFailOnSkipped || suite.FailOnSkipped,
		Filter:        filter,
		Fixtures:      fixtures,
	}

	if runTUI {
		return runWithTUI(runner, features)
	}

	style := suite.Style()
	if runJSON {
		style = "json"
	}
	var writer *report.Writer
	switch style {
	case "plain":
		writer = report.NewPlainWriter(os.Stdout)
	case "json":
		// No live output; the result is emitted at the end.
	default:
		writer = report.NewWriter(os.Stdout)
	}
	if writer != nil {
		runner.Events = writer
	}

	result, err := runner.Run(context.Background(), features)
	if err != nil {
		return err
	}

	if style == "json" {
		if err := report.WriteJSON(os.Stdout, result); err != nil {
			return err
		}
	} else {
		writer.Summary(result)
	}

	if result.Failed() {
		os.Exit(1)
	}
	return nil
}

// runWithTUI drives the run inside the live bubbletea view.
func runWithTUI(runner *runtime.Runner, features []*feature.Feature) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	title := fmt.Sprintf("%d feature file(s)", len(features))
	narrative := ""
	if len(features) == 1 {
		title = features[0].Name
		narrative = features[0].Description
	}

	p := tea.NewProgram(tui.NewModel(title, narrative, cancel))
	sink := tui.NewSink(p)
	runner.Events = sink

	var result *runtime.RunResult
	var runErr error
	go func() {
		result, runErr = runner.Run(ctx, features)
		sink.RunComplete(result, runErr)
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if result != nil && result.Failed() {
		os.Exit(1)
	}
	return nil
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [.gait.yaml]",
	Short: "Validate a suite config file against the schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFileName
		if len(args) == 1 {
			path = args[0]
		}
		_, errs := config.ValidateFile(path)
		var fatal int
		for _, e := range errs {
			if e.Severity == "warning" {
				fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
				continue
			}
			fatal++
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", fatal, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
		if fatal > 0 {
			return fmt.Errorf("validation failed with %d error(s)", fatal)
		}
		fmt.Printf("✓ %s is valid\n", path)
		return nil
	},
}

// --- steps ---

var (
	stepsConfigPath string
	stepsJSON       bool
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List registered steps with usage flags and specificity scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistryWithLedger(stepsConfigPath)
		if err != nil {
			return err
		}
		infos, err := reg.Snapshot()
		if err != nil {
			return err
		}
		if stepsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}
		for _, info := range infos {
			flag := " "
			if info.Used {
				flag = "✓"
			}
			fmt.Printf("  %s %-5s %-50q  lit=%d ph=%d typed=%d  %s\n",
				flag, info.Keyword, info.Pattern,
				info.Score.LiteralChars, info.Score.PlaceholderCount, info.Score.TypedPlaceholderCount,
				info.Source)
		}
		return nil
	},
}

// --- unused ---

var unusedConfigPath string

var unusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "List registered steps never matched by any run",
	Long: `List registered steps never matched by any run.

Usage marks accumulate in the persisted ledger across process runs, so a
step exercised by yesterday's run does not show up here today.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistryWithLedger(unusedConfigPath)
		if err != nil {
			return err
		}
		unused, err := reg.Unused()
		if err != nil {
			return err
		}
		if len(unused) == 0 {
			fmt.Println("All registered steps have been used.")
			return nil
		}
		fmt.Printf("%d unused step(s):\n", len(unused))
		for _, e := range unused {
			fmt.Printf("  %-5s %q  (%s)\n", e.Keyword, e.Pattern, e.Source)
		}
		return nil
	},
}

func openRegistryWithLedger(configPath string) (*registry.Registry, error) {
	suite, err := loadSuite(configPath)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("build step registry: %w", err)
	}
	if ledger, err := registry.OpenLedger(suite.LedgerDir()); err == nil {
		reg.SetLedger(ledger)
	}
	return reg, nil
}

// --- duplicates ---

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List (keyword, pattern) pairs registered more than once",
	Long: `List (keyword, pattern) pairs registered more than once.

A duplicate aborts the registry build on first sight; this command reads
the pending definitions instead, so every duplicate group is reported at
once with all registration sites.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups := registry.Duplicates(registry.Pending())
		if len(groups) == 0 {
			fmt.Println("No duplicate registrations.")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("  %s %q registered %d times:\n", g.Keyword, g.Pattern, len(g.Sources))
			for _, src := range g.Sources {
				fmt.Printf("    %s\n", src)
			}
		}
		return fmt.Errorf("%d duplicate group(s)", len(groups))
	},
}

// --- score ---

var scoreJSON bool

var scoreCmd = &cobra.Command{
	Use:   "score [pattern]",
	Short: "Compute the specificity score of a step pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := pattern.ScoreText(args[0])
		if err != nil {
			return err
		}
		if scoreJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(score)
		}
		fmt.Printf("  literal chars:      %d\n", score.LiteralChars)
		fmt.Printf("  placeholders:       %d\n", score.PlaceholderCount)
		fmt.Printf("  typed placeholders: %d\n", score.TypedPlaceholderCount)
		return nil
	},
}

// --- debug ---

var (
	debugConfigPath string
	debugScenario   string
)

var debugCmd = &cobra.Command{
	Use:   "debug [feature file]",
	Short: "Step through one scenario interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebug,
}

func runDebug(cmd *cobra.Command, args []string) error {
	suite, err := loadSuite(debugConfigPath)
	if err != nil {
		return err
	}
	feat, err := feature.ParseFile(args[0])
	if err != nil {
		return err
	}
	if len(feat.Scenarios) == 0 {
		return fmt.Errorf("%s has no scenarios", args[0])
	}

	sc := &feat.Scenarios[0]
	if debugScenario != "" {
		sc = nil
		for i := range feat.Scenarios {
			if feat.Scenarios[i].Name == debugScenario {
				sc = &feat.Scenarios[i]
				break
			}
		}
		if sc == nil {
			return fmt.Errorf("no scenario named %q in %s", debugScenario, args[0])
		}
	}

	reg, err := registry.Default()
	if err != nil {
		return fmt.Errorf("build step registry: %w", err)
	}
	if ledger, err := registry.OpenLedger(suite.LedgerDir()); err == nil {
		reg.SetLedger(ledger)
		defer ledger.Close()
	}

	d := debugger.New(reg, feat, sc, suite.Fixtures)
	return d.Run(context.Background())
}

// --- schema export ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the suite config JSON Schema to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.GenerateJSONSchema()
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gait %s (build: %s)\n", version, commit)
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Suite config path (default .gait.yaml)")
	runCmd.Flags().StringVar(&runFilter, "filter", "", `Tag filter expression, e.g. 'has("smoke") && !has("wip")'`)
	runCmd.Flags().BoolVar(&runFailOnSkipped, "fail-on-skipped", false, "Convert skips to failures unless the scenario is tagged @allow-skip")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show the live run view")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Emit the run result as JSON")

	stepsCmd.Flags().StringVar(&stepsConfigPath, "config", "", "Suite config path (default .gait.yaml)")
	stepsCmd.Flags().BoolVar(&stepsJSON, "json", false, "Output as JSON")

	unusedCmd.Flags().StringVar(&unusedConfigPath, "config", "", "Suite config path (default .gait.yaml)")

	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Output as JSON")

	debugCmd.Flags().StringVar(&debugConfigPath, "config", "", "Suite config path (default .gait.yaml)")
	debugCmd.Flags().StringVar(&debugScenario, "scenario", "", "Scenario name (default: first in the file)")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(unusedCmd)
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
