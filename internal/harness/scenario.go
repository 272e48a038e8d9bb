package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lowerc/internal/config"
)

// Scenario defines a translation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path to a CUE or JSON program dump, or a directory of
	// CUE files. Relative paths resolve against the scenario file.
	Program string `yaml:"program"`

	// Classes lists the requested classes. Empty means every application
	// class.
	Classes []string `yaml:"classes,omitempty"`

	// Options overrides the default translator options. Keys are the
	// config file keys.
	Options yaml.Node `yaml:"options,omitempty"`

	// FailingPolicies registers restriction policies that reject every
	// class they check.
	FailingPolicies []string `yaml:"failing_policies,omitempty"`

	// Assertions validate the session outcome.
	Assertions []Assertion `yaml:"assertions"`

	// SessionID is an optional fixed session ID.
	// If empty, defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`
}

// Assertion validates one aspect of the session outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "unit_contains": unit Unit is emitted and contains Text
	// - "unit_not_contains": unit Unit is emitted and does not contain Text
	// - "unit_absent": unit Unit is not emitted
	// - "classes": emitted classes equal Classes, in order
	// - "violations": exactly Count violations were recorded
	// - "output_contains": checker output contains Text
	// - "counter": counter Name equals Count
	// - "error_code": the session aborted with internal error Code
	// - "ledger_rows": ledger table Table holds Count rows for the session
	Type string `yaml:"type"`

	Unit    string   `yaml:"unit,omitempty"`
	Text    string   `yaml:"text,omitempty"`
	Classes []string `yaml:"classes,omitempty"`
	Name    string   `yaml:"name,omitempty"`
	Code    string   `yaml:"code,omitempty"`
	Table   string   `yaml:"table,omitempty"`
	Count   int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertUnitContains    = "unit_contains"
	AssertUnitNotContains = "unit_not_contains"
	AssertUnitAbsent      = "unit_absent"
	AssertClasses         = "classes"
	AssertViolations      = "violations"
	AssertOutputContains  = "output_contains"
	AssertCounter         = "counter"
	AssertErrorCode       = "error_code"
	AssertLedgerRows      = "ledger_rows"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The program path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos)
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) {
		scenario.Program = filepath.Join(filepath.Dir(path), scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Config returns the scenario's translator options: the defaults with the
// scenario's overrides applied.
func (s *Scenario) Config() (config.Options, error) {
	opts := config.Defaults()
	if s.Options.Kind == 0 {
		return opts, nil
	}
	if err := s.Options.Decode(&opts); err != nil {
		return opts, fmt.Errorf("options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("options: %w", err)
	}
	return opts, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program not found: %s", s.Program)
	}

	if _, err := s.Config(); err != nil {
		return err
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertUnitContains, AssertUnitNotContains:
		if a.Unit == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: unit and text are required for %s", index, a.Type)
		}
	case AssertUnitAbsent:
		if a.Unit == "" {
			return fmt.Errorf("assertions[%d]: unit is required for unit_absent", index)
		}
	case AssertClasses:
		if len(a.Classes) == 0 {
			return fmt.Errorf("assertions[%d]: classes list is required for classes", index)
		}
	case AssertViolations:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for violations", index)
		}
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for output_contains", index)
		}
	case AssertCounter:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for counter", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	case AssertLedgerRows:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for ledger_rows", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
