package config

import (
	"strings"
	"testing"
)

func TestValidateFileValid(t *testing.T) {
	s, errs := ValidateFile(writeSuite(t, validSuite))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if s == nil {
		t.Fatal("valid config returned nil suite")
	}
}

func TestValidateFileStructuralError(t *testing.T) {
	s, errs := ValidateFile(writeSuite(t, "version: gait/v0\nnot_a_field: true\n"))
	if s != nil {
		t.Error("structural failure should not return a suite")
	}
	if len(errs) != 1 || errs[0].Phase != "structural" {
		t.Fatalf("want one structural error, got %v", errs)
	}
}

func TestValidateDomainVersion(t *testing.T) {
	errs := ValidateDomain(&Suite{Version: "gait/v9", Features: []string{"f"}})
	if len(errs) == 0 {
		t.Fatal("bad version accepted")
	}
	if errs[0].Path != "version" {
		t.Errorf("error path = %q, want version", errs[0].Path)
	}
}

func TestValidateDomainBadFilter(t *testing.T) {
	errs := ValidateDomain(&Suite{
		Version:  "gait/v0",
		Features: []string{"f"},
		Filter:   `has("smoke") &&`,
	})
	found := false
	for _, e := range errs {
		if e.Path == "filter" && e.Severity == "error" {
			found = true
		}
	}
	if !found {
		t.Errorf("broken filter not reported: %v", errs)
	}
}

func TestValidateDomainBadStyle(t *testing.T) {
	errs := ValidateDomain(&Suite{
		Version:  "gait/v0",
		Features: []string{"f"},
		Report:   &ReportConfig{Style: "fancy"},
	})
	found := false
	for _, e := range errs {
		if e.Path == "report.style" && strings.Contains(e.Message, "fancy") {
			found = true
		}
	}
	if !found {
		t.Errorf("bad style not reported: %v", errs)
	}
}

func TestValidateDomainEmptyFeaturesIsWarning(t *testing.T) {
	errs := ValidateDomain(&Suite{Version: "gait/v0"})
	for _, e := range errs {
		if e.Path == "features" && e.Severity != "warning" {
			t.Errorf("empty features should be a warning, got %s", e.Severity)
		}
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema: %v", err)
	}
	out := string(data)
	for _, want := range []string{"gait-v0.json", "fail_on_skipped", "fixtures"} {
		if !strings.Contains(out, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}
