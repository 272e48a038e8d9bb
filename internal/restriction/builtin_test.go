package restriction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/ir"
	tu "github.com/roach88/lowerc/internal/testutil"
)

const exc = "java.lang.RuntimeException"

// guarded declares app.G with one method per rule the built-ins enforce.
func guarded(policies ...string) *ir.Program {
	b := tu.NewProgram()
	g := b.Class("app.G", tu.Object).
		Restrict(policies...).
		StaticField("count", "int").
		Field("ratio", "double")

	g.Method("fail", nil, "void").
		Local("this", "app.G").
		Local("e", exc).
		Units(
			tu.Identity("this", tu.This("app.G")),
			tu.Assign(tu.Local("e"), tu.New(exc)),
			tu.Throw(tu.Local("e"), "throw e"),
		)
	g.Method("guard", nil, "void").
		Local("this", "app.G").
		Local("e", exc).
		Units(
			tu.Identity("this", tu.This("app.G")),
			tu.EnterMonitor(tu.Local("this")),
			tu.ExitMonitor(tu.Local("this")),
			tu.ReturnVoid(),
			tu.Identity("e", tu.Caught(exc)),
			tu.ReturnVoid(),
		).
		Trap(1, 3, 4, exc)
	g.StaticMethod("bump", nil, "void").
		Units(
			tu.Assign(tu.StaticField("app.G", "count", "int"), tu.Const("1", "int")),
			tu.ReturnVoid(),
		)
	g.StaticMethod("<clinit>", nil, "void").
		Units(
			tu.Assign(tu.StaticField("app.G", "count", "int"), tu.Const("0", "int")),
			tu.ReturnVoid(),
		)
	g.StaticMethod("half", []string{"int"}, "int").
		Local("i0", "int").
		Local("d0", "double").
		Units(
			tu.Identity("i0", tu.Param(0, "int")),
			tu.Assign(tu.Local("d0"), tu.Cast("double", tu.Local("i0"))),
			tu.Return(tu.Local("i0")),
		)
	return b.Build()
}

func checkGuarded(t *testing.T, policy string) (bool, []diag.Violation, string) {
	t.Helper()
	k, m, out := checkerFor(t, DefaultRegistry(), guarded(policy))
	pass, err := k.Comply(mustClass(t, m, "app.G"))
	require.NoError(t, err)
	return pass, k.sink.Violations(), out.String()
}

func messages(vs []diag.Violation) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.Message)
	}
	return out
}

func TestNoExceptions(t *testing.T) {
	pass, vs, _ := checkGuarded(t, NoExceptions)

	assert.False(t, pass)
	assert.Equal(t, []string{
		"app.G.fail(): throw at statement 2",
		"app.G.guard(): exception handler at statement 4",
	}, messages(vs))
}

func TestNoMonitors(t *testing.T) {
	pass, vs, _ := checkGuarded(t, NoMonitors)

	assert.False(t, pass)
	assert.Equal(t, []string{
		"app.G.guard(): monitor at statement 1",
		"app.G.guard(): monitor at statement 2",
	}, messages(vs))
}

func TestNoFloatingPoint(t *testing.T) {
	pass, vs, _ := checkGuarded(t, NoFloatingPoint)

	assert.False(t, pass)
	assert.Equal(t, []string{
		"field ratio has type double",
		"app.G.half(int): floating-point value at statement 1",
	}, messages(vs))
}

func TestNoStaticMutableState(t *testing.T) {
	pass, vs, _ := checkGuarded(t, NoStaticMutableState)

	assert.False(t, pass)
	require.Len(t, vs, 1)
	assert.Equal(t, "app.G.bump(): writes static field app.G.count at statement 0", vs[0].Message)
}

func TestNoAllocationOutsideInit(t *testing.T) {
	pass, vs, _ := checkGuarded(t, NoAllocationOutsideInit)

	assert.False(t, pass)
	assert.Equal(t, []string{"app.G.fail(): allocation at statement 1"}, messages(vs))
}

func TestNoAllocationOutsideInit_ConstructorsAllowed(t *testing.T) {
	prog := tu.ZooProgram(false)
	for i := range prog.Classes {
		prog.Classes[i].Restrictions = []string{NoAllocationOutsideInit}
	}
	k, m, _ := checkerFor(t, DefaultRegistry(), prog)

	pass, err := k.Comply(mustClass(t, m, "app.Cat"))
	require.NoError(t, err)
	assert.True(t, pass)

	pass, err = k.Comply(mustClass(t, m, "app.Main"))
	require.NoError(t, err)
	assert.False(t, pass)
	assert.Len(t, k.sink.ViolationsFor("app.Main"), 2)
}

func TestRJavaCore_RunsMembersInOrder(t *testing.T) {
	pass, vs, out := checkGuarded(t, RJavaCore)

	assert.False(t, pass)
	assert.Equal(t, "Checking RJavaCore on app.G...fail!\n", out)

	var policies []string
	for _, v := range vs {
		policies = append(policies, v.Policy)
	}
	assert.Equal(t, []string{NoExceptions, NoExceptions, NoFloatingPoint, NoFloatingPoint}, policies)
}

func TestBuiltins_CleanClassPasses(t *testing.T) {
	r := DefaultRegistry()
	k, m, out := newChecker(t, r, "app.C", r.Names()...)

	pass, err := k.Comply(mustClass(t, m, "app.C"))
	require.NoError(t, err)
	assert.True(t, pass)
	assert.Empty(t, k.sink.Violations())
	assert.Contains(t, out.String(), "Checking RJavaCore on app.C...pass!\n")
}
