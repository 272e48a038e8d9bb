package diag

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityViolation
	SeverityInternal
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityViolation:
		return "violation"
	case SeverityInternal:
		return "internal"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Violation is one restriction-policy finding.
type Violation struct {
	Policy  string `json:"policy"`
	Class   string `json:"class"`
	Message string `json:"message"`
}

// String renders the violation the way the batch report prints it.
func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Policy, v.Class, v.Message)
}

// Warning is an advisory diagnostic.
type Warning struct {
	Class   string `json:"class,omitempty"`
	Method  string `json:"method,omitempty"`
	Message string `json:"message"`
}

// Counter names recorded by the generator.
const (
	CounterVirtualCalls      = "virtual_calls"
	CounterDevirtSuccess     = "devirt_success"
	CounterDevirtFail        = "devirt_fail"
	CounterInferenceSuccess  = "type_inference_success"
	CounterInferenceFail     = "type_inference_fail"
	CounterMethodsEmitted    = "methods_emitted"
	CounterClassesEmitted    = "classes_emitted"
	CounterIntrinsicRewrites = "intrinsic_rewrites"
)

// Sink collects one session's violations, warnings and counters.
// Entries are appended, never removed. Not safe for concurrent use: a
// session is single-threaded.
type Sink struct {
	violations []Violation
	warnings   []Warning
	counters   map[string]int64
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{counters: make(map[string]int64)}
}

// Violate records a policy violation.
func (s *Sink) Violate(policy, class, message string) {
	s.violations = append(s.violations, Violation{Policy: policy, Class: class, Message: message})
}

// Warn records a warning.
func (s *Sink) Warn(class, method, message string) {
	s.warnings = append(s.warnings, Warning{Class: class, Method: method, Message: message})
}

// Inc adds one to the named counter.
func (s *Sink) Inc(name string) {
	s.counters[name]++
}

// Count returns the named counter's value.
func (s *Sink) Count(name string) int64 {
	return s.counters[name]
}

// Violations returns the recorded violations in order.
func (s *Sink) Violations() []Violation {
	return slices.Clone(s.violations)
}

// ViolationsFor returns the violations recorded against class.
func (s *Sink) ViolationsFor(class string) []Violation {
	var out []Violation
	for _, v := range s.violations {
		if v.Class == class {
			out = append(out, v)
		}
	}
	return out
}

// Warnings returns the recorded warnings in order.
func (s *Sink) Warnings() []Warning {
	return slices.Clone(s.warnings)
}

// Counters returns a copy of every counter.
func (s *Sink) Counters() map[string]int64 {
	return maps.Clone(s.counters)
}

// WriteReport prints the batched violation report and counters.
func (s *Sink) WriteReport(w io.Writer) {
	if len(s.violations) == 0 {
		fmt.Fprintln(w, "No restriction violations.")
	} else {
		fmt.Fprintf(w, "%d restriction violation(s):\n", len(s.violations))
		for _, v := range s.violations {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.counters)) {
		fmt.Fprintf(w, "%s: %d\n", name, s.counters[name])
	}
}
