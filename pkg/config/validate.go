package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g. "report.style")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile performs the full 3-phase validation pipeline on a suite
// config file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Suite, []*ValidationError) {
	var allErrors []*ValidationError

	s, err := LoadFile(path)
	if err != nil {
		allErrors = append(allErrors, &ValidationError{
			Phase:    "structural",
			Path:     "",
			Message:  err.Error(),
			Severity: "error",
		})
		return nil, allErrors
	}

	allErrors = append(allErrors, validateSemantic(s)...)
	allErrors = append(allErrors, ValidateDomain(s)...)

	if len(allErrors) > 0 {
		return s, allErrors
	}
	return s, nil
}

// validateSemantic validates the suite config against the JSON Schema.
func validateSemantic(s *Suite) []*ValidationError {
	data, err := json.Marshal(s)
	if err != nil {
		return semanticError(fmt.Sprintf("marshal for schema validation: %v", err))
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semanticError(fmt.Sprintf("generate schema: %v", err))
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semanticError(fmt.Sprintf("unmarshal schema: %v", err))
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("gait-v0.json", schemaDoc); err != nil {
		return semanticError(fmt.Sprintf("add schema resource: %v", err))
	}

	sch, err := c.Compile("gait-v0.json")
	if err != nil {
		return semanticError(fmt.Sprintf("compile schema: %v", err))
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return semanticError(fmt.Sprintf("unmarshal document: %v", err))
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = semanticError(err.Error())
		}
		return errs
	}
	return nil
}

func semanticError(msg string) []*ValidationError {
	return []*ValidationError{{
		Phase:    "semantic",
		Path:     "",
		Message:  msg,
		Severity: "error",
	}}
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateDomain performs Phase 3 domain-level validation.
// Returns a slice of errors; empty means valid.
func ValidateDomain(s *Suite) []*ValidationError {
	var errs []*ValidationError

	if s.Version != "gait/v0" {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     "version",
			Message:  fmt.Sprintf("unrecognized version %q, expected %q", s.Version, "gait/v0"),
			Severity: "error",
		})
	}

	if len(s.Features) == 0 {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     "features",
			Message:  "no feature globs configured; the run will select nothing",
			Severity: "warning",
		})
	}

	if s.Report != nil && s.Report.Style != "" {
		switch s.Report.Style {
		case "pretty", "plain", "json":
		default:
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     "report.style",
				Message:  fmt.Sprintf("unknown report style %q, expected pretty, plain, or json", s.Report.Style),
				Severity: "error",
			})
		}
	}

	// The filter must compile against the tag environment before a run
	// starts, not at the first scenario.
	if strings.TrimSpace(s.Filter) != "" {
		env := map[string]any{
			"tags": []string{},
			"has":  func(name string) bool { return false },
		}
		if _, err := expr.Compile(s.Filter, expr.Env(env), expr.AsBool()); err != nil {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     "filter",
				Message:  fmt.Sprintf("filter does not compile: %v", err),
				Severity: "error",
			})
		}
	}

	return errs
}
