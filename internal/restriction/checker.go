package restriction

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/semantic"
)

// Checker runs a class's restriction policies.
type Checker struct {
	registry *Registry
	model    *semantic.Model
	sink     *diag.Sink
	out      io.Writer
	logger   *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithOutput sets where pass/fail lines are printed. Default: discarded.
func WithOutput(w io.Writer) CheckerOption {
	return func(k *Checker) {
		k.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CheckerOption {
	return func(k *Checker) {
		k.logger = l
	}
}

// NewChecker creates a checker bound to one session's model and sink.
func NewChecker(r *Registry, m *semantic.Model, sink *diag.Sink, opts ...CheckerOption) *Checker {
	k := &Checker{
		registry: r,
		model:    m,
		sink:     sink,
		out:      io.Discard,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Comply runs c's policies in declaration order, printing
// "Checking R on C...pass!" or "...fail!" for each. It reports whether
// every policy passed. Failing policies never produce an error; resolution
// or invocation failures always do.
func (k *Checker) Comply(c *semantic.Class) (bool, error) {
	pass := true
	for _, name := range c.Restrictions {
		fmt.Fprintf(k.out, "Checking %s on %s...", name, c.Name)

		p, err := k.registry.Lookup(name)
		if err != nil {
			fmt.Fprintln(k.out)
			return false, err
		}

		ok, err := k.invoke(p, name, c)
		if err != nil {
			fmt.Fprintln(k.out)
			k.logger.Error("restriction policy failed", "policy", name, "class", c.Name, "error", err)
			return false, err
		}

		if ok {
			fmt.Fprintln(k.out, "pass!")
		} else {
			fmt.Fprintln(k.out, "fail!")
			pass = false
		}
		k.logger.Debug("restriction checked", "policy", name, "class", c.Name, "pass", ok)
	}
	return pass, nil
}

// invoke runs p, converting errors and panics into invocation errors.
func (k *Checker) invoke(p Policy, name string, c *semantic.Class) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = diag.Errorf(diag.ErrCodePolicyInvocation, "policy %s panicked: %v", name, r).At(c.Name, "")
		}
	}()

	ok, err = p(c, &Context{Model: k.model, Policy: name, sink: k.sink})
	if err != nil {
		if diag.IsInternal(err) {
			return false, err
		}
		return false, &diag.InternalError{
			Code:    diag.ErrCodePolicyInvocation,
			Message: fmt.Sprintf("policy %s: %v", name, err),
			Class:   c.Name,
		}
	}
	return ok, nil
}
