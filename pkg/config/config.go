// Package config defines the Go struct types for the suite YAML config
// (.gait.yaml) and provides strict YAML parsing.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the suite config looked up in the working directory.
const DefaultFileName = ".gait.yaml"

// DefaultLedgerDir is the build-output directory holding the usage ledger
// when the config does not override it.
const DefaultLedgerDir = ".gait"

// EnvLedgerDir overrides the ledger directory when set.
const EnvLedgerDir = "GAIT_DIR"

// Suite is the top-level document configuring a test-suite run.
type Suite struct {
	Version       string            `yaml:"version"                  json:"version"                  jsonschema:"required,enum=gait/v0"`
	Features      []string          `yaml:"features,omitempty"       json:"features,omitempty"`
	Ledger        string            `yaml:"ledger,omitempty"         json:"ledger,omitempty"`
	FailOnSkipped bool              `yaml:"fail_on_skipped,omitempty" json:"fail_on_skipped,omitempty"`
	Filter        string            `yaml:"filter,omitempty"         json:"filter,omitempty"`
	Report        *ReportConfig     `yaml:"report,omitempty"         json:"report,omitempty"`
	Fixtures      map[string]string `yaml:"fixtures,omitempty"       json:"fixtures,omitempty"`
}

// ReportConfig selects the console report presentation.
type ReportConfig struct {
	Style string `yaml:"style,omitempty" json:"style,omitempty" jsonschema:"enum=pretty,enum=plain,enum=json"`
}

// Style returns the effective report style, defaulting to pretty.
func (s *Suite) Style() string {
	if s.Report == nil || s.Report.Style == "" {
		return "pretty"
	}
	return s.Report.Style
}

// LedgerDir resolves the ledger directory: GAIT_DIR env, then the config's
// ledger field, then the default.
func (s *Suite) LedgerDir() string {
	if dir := os.Getenv(EnvLedgerDir); dir != "" {
		return dir
	}
	if s.Ledger != "" {
		return s.Ledger
	}
	return DefaultLedgerDir
}

// Default returns the suite config used when no file is present.
func Default() *Suite {
	return &Suite{
		Version:  "gait/v0",
		Features: []string{"features/*.feature"},
	}
}

// LoadFile reads and parses a suite config file with strict unknown-field
// rejection (yaml.v3 KnownFields). Returns the parsed Suite or an error.
func LoadFile(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a suite config from an io.Reader with strict unknown-field
// rejection.
func Load(r io.Reader) (*Suite, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &s, nil
}
