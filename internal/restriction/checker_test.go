package restriction

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/ir"
	"github.com/roach88/lowerc/internal/semantic"
	"github.com/roach88/lowerc/internal/testutil"
)

// restricted declares one trivial class carrying the given restrictions.
func restricted(class string, names ...string) *ir.Program {
	b := testutil.NewProgram()
	c := b.Class(class, testutil.Object).Restrict(names...)
	c.Method("run", nil, "void").
		Local("this", class).
		Units(testutil.Identity("this", testutil.This(class)), testutil.ReturnVoid())
	return b.Build()
}

func newChecker(t *testing.T, r *Registry, class string, names ...string) (*Checker, *semantic.Model, *bytes.Buffer) {
	t.Helper()
	return checkerFor(t, r, restricted(class, names...))
}

func checkerFor(t *testing.T, r *Registry, prog *ir.Program) (*Checker, *semantic.Model, *bytes.Buffer) {
	t.Helper()
	sink := diag.NewSink()
	m := semantic.NewModel(prog, semantic.WithSink(sink))
	require.NoError(t, m.Prepare())
	var out bytes.Buffer
	return NewChecker(r, m, sink, WithOutput(&out)), m, &out
}

func mustClass(t *testing.T, m *semantic.Model, name string) *semantic.Class {
	t.Helper()
	c, err := m.ResolveClass(name)
	require.NoError(t, err)
	return c
}

func TestComply_AlwaysFailingPolicy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("R", func(c *semantic.Class, ctx *Context) (bool, error) {
		ctx.Violate(c, "never acceptable")
		return false, nil
	}))

	k, m, out := newChecker(t, r, "app.C", "R")
	pass, err := k.Comply(mustClass(t, m, "app.C"))

	require.NoError(t, err)
	assert.False(t, pass)
	assert.Equal(t, "Checking R on app.C...fail!\n", out.String())
	assert.Equal(t, []diag.Violation{{Policy: "R", Class: "app.C", Message: "never acceptable"}}, k.sink.Violations())
}

func TestComply_RunsInDeclarationOrder(t *testing.T) {
	r := NewRegistry()
	var seen []string
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, r.Register(name, func(_ *semantic.Class, ctx *Context) (bool, error) {
			seen = append(seen, ctx.Policy)
			return ctx.Policy != "B", nil
		}))
	}

	k, m, out := newChecker(t, r, "app.C", "C", "A", "B")
	pass, err := k.Comply(mustClass(t, m, "app.C"))

	require.NoError(t, err)
	assert.False(t, pass)
	assert.Equal(t, []string{"C", "A", "B"}, seen)
	assert.Equal(t,
		"Checking C on app.C...pass!\nChecking A on app.C...pass!\nChecking B on app.C...fail!\n",
		out.String())
}

func TestComply_NoRestrictions(t *testing.T) {
	k, m, out := newChecker(t, NewRegistry(), "app.C")
	pass, err := k.Comply(mustClass(t, m, "app.C"))

	require.NoError(t, err)
	assert.True(t, pass)
	assert.Empty(t, out.String())
}

func TestComply_UnknownPolicyIsFatal(t *testing.T) {
	k, m, _ := newChecker(t, NewRegistry(), "app.C", "Ghost")
	_, err := k.Comply(mustClass(t, m, "app.C"))

	require.Error(t, err)
	var ie *diag.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, diag.ErrCodePolicyNotFound, ie.Code)
}

func TestComply_PolicyErrorIsFatal(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("Broken", func(*semantic.Class, *Context) (bool, error) {
		return false, errors.New("boom")
	}))

	k, m, _ := newChecker(t, r, "app.C", "Broken")
	_, err := k.Comply(mustClass(t, m, "app.C"))

	var ie *diag.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, diag.ErrCodePolicyInvocation, ie.Code)
	assert.Equal(t, "app.C", ie.Class)
	assert.Contains(t, ie.Message, "boom")
}

func TestComply_PolicyPanicIsFatal(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("Panicky", func(*semantic.Class, *Context) (bool, error) {
		panic("bad state")
	}))

	k, m, _ := newChecker(t, r, "app.C", "Panicky")
	_, err := k.Comply(mustClass(t, m, "app.C"))

	var ie *diag.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, diag.ErrCodePolicyInvocation, ie.Code)
	assert.Contains(t, ie.Message, "bad state")
}
