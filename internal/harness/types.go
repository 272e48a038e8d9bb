package harness

import (
	"fmt"

	"github.com/roach88/lowerc/internal/codegen"
	"github.com/roach88/lowerc/internal/compiler"
)

// Result is what one scenario run produced and whether its assertions held.
type Result struct {
	Pass   bool             `json:"pass"`
	Errors []string         `json:"errors,omitempty"` // failed assertions, in order
	Report *compiler.Report `json:"report"`
	Output string           `json:"output"` // checker lines and the violation report

	// Units is empty when the session aborted.
	Units []codegen.Unit `json:"-"`
}

func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failed assertion.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}

func (r *Result) failf(format string, args ...any) {
	r.AddError(fmt.Sprintf(format, args...))
}

// Unit returns the text of the unit called name.
func (r *Result) Unit(name string) (string, bool) {
	for _, u := range r.Units {
		if u.Name == name {
			return u.Text, true
		}
	}
	return "", false
}
