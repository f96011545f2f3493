package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSuite = `version: gait/v0
features:
  - features/*.feature
ledger: build/gait
fail_on_skipped: true
filter: has("smoke") && !has("wip")
report:
  style: plain
fixtures:
  base_url: http://localhost:8080
`

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidSuite(t *testing.T) {
	s, err := LoadFile(writeSuite(t, validSuite))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Version != "gait/v0" {
		t.Errorf("version = %q, want gait/v0", s.Version)
	}
	if !s.FailOnSkipped {
		t.Error("fail_on_skipped not decoded")
	}
	if s.Style() != "plain" {
		t.Errorf("style = %q, want plain", s.Style())
	}
	if got := s.Fixtures["base_url"]; got != "http://localhost:8080" {
		t.Errorf("fixture base_url = %q", got)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("version: gait/v0\nbogus_field: 1\n"))
	if err == nil {
		t.Fatal("expected strict decode to reject unknown field")
	}
	if !strings.Contains(err.Error(), "bogus_field") {
		t.Errorf("error does not name the unknown field: %v", err)
	}
}

func TestStyleDefaultsToPretty(t *testing.T) {
	s := &Suite{Version: "gait/v0"}
	if s.Style() != "pretty" {
		t.Errorf("style = %q, want pretty", s.Style())
	}
}

func TestLedgerDirResolution(t *testing.T) {
	s := &Suite{Version: "gait/v0"}
	if got := s.LedgerDir(); got != DefaultLedgerDir {
		t.Errorf("default ledger dir = %q, want %q", got, DefaultLedgerDir)
	}

	s.Ledger = "build/gait"
	if got := s.LedgerDir(); got != "build/gait" {
		t.Errorf("config ledger dir = %q, want build/gait", got)
	}

	t.Setenv(EnvLedgerDir, "/tmp/override")
	if got := s.LedgerDir(); got != "/tmp/override" {
		t.Errorf("env ledger dir = %q, want /tmp/override", got)
	}
}
