package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/lowerc/internal/compiler"
	"github.com/roach88/lowerc/internal/frontend"
	"github.com/roach88/lowerc/internal/restriction"
	"github.com/roach88/lowerc/internal/semantic"
	"github.com/roach88/lowerc/internal/store"
	"github.com/roach88/lowerc/internal/testutil"
)

// Harness is the scenario execution environment.
// It runs scenarios with a deterministic clock and session ID.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	ids    *testutil.FixedSessionGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory ledger for isolation.
//
// Execution flow:
// 1. Load the program dump
// 2. Compile it in one session with the scenario's options
// 3. Record the session report in the ledger
// 4. Evaluate assertions
//
// An aborted compilation is an outcome, not an error: it fails the result
// unless an error_code assertion expects it. Run returns an error only when
// the scenario cannot be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		ids:    testutil.NewFixedSessionGenerator(scenario.SessionID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	prog, err := frontend.Load(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	cfg, err := scenario.Config()
	if err != nil {
		return nil, err
	}

	registry := restriction.DefaultRegistry()
	for _, name := range scenario.FailingPolicies {
		if err := registry.Register(name, rejectAll); err != nil {
			return nil, fmt.Errorf("failing policy %s: %w", name, err)
		}
	}

	var out bytes.Buffer
	sess, err := compiler.NewSession(cfg,
		compiler.WithLogger(h.logger),
		compiler.WithOutput(&out),
		compiler.WithSessionIDGenerator(h.ids),
		compiler.WithClock(h.clock),
		compiler.WithRegistry(registry),
	)
	if err != nil {
		return nil, err
	}
	compileErr := sess.Compile(compiler.Task{Program: prog, Classes: scenario.Classes})

	result := NewResult()
	result.Report = sess.Report()
	result.Units = sess.Units()
	result.Output = out.String()

	if err := h.store.WriteReport(ctx, result.Report); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	if compileErr != nil && !expectsError(scenario.Assertions) {
		result.failf("compilation failed: %v", compileErr)
	}

	actx := &AssertionContext{Store: h.store, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// rejectAll is the policy behind a scenario's failing_policies.
func rejectAll(c *semantic.Class, ctx *restriction.Context) (bool, error) {
	ctx.Violate(c, "rejected by %s", ctx.Policy)
	return false, nil
}

func expectsError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertErrorCode {
			return true
		}
	}
	return false
}
