package harness

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/lowerc/internal/store"
)

// validIdentifier matches valid SQL identifiers (table names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Units    []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Units) > 0 {
		fmt.Fprintf(&buf, "\nEmitted units:\n")
		for _, name := range e.Units {
			fmt.Fprintf(&buf, "  %s\n", name)
		}
	}

	return buf.String()
}

// AssertionContext provides ledger access for ledger_rows assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

func unitNames(result *Result) []string {
	names := make([]string, len(result.Units))
	for i, u := range result.Units {
		names[i] = u.Name
	}
	return names
}

func assertUnitText(result *Result, a Assertion, want bool) error {
	text, ok := result.Unit(a.Unit)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("unit %s", a.Unit),
			Actual:   "not emitted",
			Units:    unitNames(result),
		}
	}
	if strings.Contains(text, a.Text) != want {
		expected := fmt.Sprintf("%s contains %q", a.Unit, a.Text)
		if !want {
			expected = fmt.Sprintf("%s does not contain %q", a.Unit, a.Text)
		}
		return &AssertionError{Type: a.Type, Expected: expected, Actual: text}
	}
	return nil
}

func assertUnitAbsent(result *Result, a Assertion) error {
	if _, ok := result.Unit(a.Unit); ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("no unit %s", a.Unit),
			Actual:   "emitted",
			Units:    unitNames(result),
		}
	}
	return nil
}

func assertClasses(result *Result, a Assertion) error {
	if !slices.Equal(result.Report.Classes, a.Classes) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("classes %v", a.Classes),
			Actual:   fmt.Sprintf("classes %v", result.Report.Classes),
		}
	}
	return nil
}

func assertViolations(result *Result, a Assertion) error {
	if got := len(result.Report.Violations); got != a.Count {
		var lines []string
		for _, v := range result.Report.Violations {
			lines = append(lines, v.String())
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d violations", a.Count),
			Actual:   fmt.Sprintf("%d violations %v", got, lines),
		}
	}
	return nil
}

func assertOutputContains(result *Result, a Assertion) error {
	if !strings.Contains(result.Output, a.Text) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("output contains %q", a.Text),
			Actual:   result.Output,
		}
	}
	return nil
}

func assertCounter(result *Result, a Assertion) error {
	if got := result.Report.Counters[a.Name]; got != int64(a.Count) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %d", a.Name, a.Count),
			Actual:   fmt.Sprintf("%s = %d", a.Name, got),
		}
	}
	return nil
}

func assertErrorCode(result *Result, a Assertion) error {
	if result.Report.ErrorCode != a.Code {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("error code %s", a.Code),
			Actual:   fmt.Sprintf("error code %q (%s)", result.Report.ErrorCode, result.Report.Error),
		}
	}
	return nil
}

// assertLedgerRows counts the session's rows in a ledger table.
//
// Security: the table name is validated against a whitelist pattern
// to prevent SQL injection via identifier interpolation.
func assertLedgerRows(ctx context.Context, st *store.Store, result *Result, a Assertion) error {
	if !validIdentifier.MatchString(a.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", a.Table, validIdentifier.String())
	}

	column := "session_id"
	if a.Table == "sessions" {
		column = "id"
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", a.Table, column)

	rows, err := st.Query(ctx, query, result.Report.SessionID)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("query table %s", a.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate count: %w", err)
	}

	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d rows in %s", a.Count, a.Table),
			Actual:   fmt.Sprintf("%d rows", count),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides ledger access for ledger_rows assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertUnitContains:
			err = assertUnitText(result, a, true)
		case AssertUnitNotContains:
			err = assertUnitText(result, a, false)
		case AssertUnitAbsent:
			err = assertUnitAbsent(result, a)
		case AssertClasses:
			err = assertClasses(result, a)
		case AssertViolations:
			err = assertViolations(result, a)
		case AssertOutputContains:
			err = assertOutputContains(result, a)
		case AssertCounter:
			err = assertCounter(result, a)
		case AssertErrorCode:
			err = assertErrorCode(result, a)
		case AssertLedgerRows:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: ledger_rows requires a ledger", i)
			} else {
				err = assertLedgerRows(actx.Ctx, actx.Store, result, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
