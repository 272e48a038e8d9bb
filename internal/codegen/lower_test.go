package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/ir"
	"github.com/roach88/lowerc/internal/testutil"
)

// opsProgram wraps units in app.Ops.f(), next to a class and an interface
// the units can refer to.
func opsProgram(locals [][2]string, units ...ir.Unit) *ir.Program {
	b := testutil.NewProgram()
	b.Interface("app.Named")
	b.Class("app.Lock", testutil.Object).Implements("app.Named")
	f := b.Class("app.Ops", testutil.Object).StaticMethod("f", nil, "void")
	for _, l := range locals {
		f.Local(l[0], l[1])
	}
	f.Units(append(units, testutil.ReturnVoid())...)
	return b.Build()
}

func TestLowering(t *testing.T) {
	local := testutil.Local
	refs := [][2]string{{"o", "app.Lock"}, {"p", "app.Lock"}, {"is", "boolean"}}
	nums := [][2]string{{"a", "double"}, {"b", "double"}, {"i", "int"}, {"l", "long"}, {"n", "int"}}
	arrays := [][2]string{{"n", "int"}, {"arr", "int[]"}, {"grid", "int[][]"}}

	tests := []struct {
		name   string
		locals [][2]string
		units  []ir.Unit
		want   string
	}{
		{
			"enter monitor", refs,
			[]ir.Unit{testutil.EnterMonitor(local("o"))},
			"  pthread_mutex_lock(&(((RJava_Common_Instance*) o) -> instance_mutex));\n",
		},
		{
			"exit monitor", refs,
			[]ir.Unit{testutil.ExitMonitor(local("o"))},
			"  pthread_mutex_unlock(&(((RJava_Common_Instance*) o) -> instance_mutex));\n",
		},
		{
			"instanceof class", refs,
			[]ir.Unit{testutil.Assign(local("is"), testutil.InstanceOf("app.Lock", local("o")))},
			"  is = rjava_instanceof((void*)o, (void*)&app_Lock_class_instance);\n",
		},
		{
			"instanceof interface", refs,
			[]ir.Unit{testutil.Assign(local("is"), testutil.InstanceOf("app.Named", local("o")))},
			"  is = rjava_implements((void*)o, \"app_Named\");\n",
		},
		{
			"reference equality", refs,
			[]ir.Unit{testutil.If(testutil.Binop("==", local("o"), local("p"), "boolean"), 1)},
			"  if ((intptr_t)o == (intptr_t)p) goto label0;\n",
		},
		{
			"reference inequality", refs,
			[]ir.Unit{testutil.If(testutil.Binop("!=", local("o"), testutil.Null(), "boolean"), 1)},
			"  if ((intptr_t)o != (intptr_t)NULL) goto label0;\n",
		},
		{
			"new array", arrays,
			[]ir.Unit{testutil.Assign(local("arr"), testutil.NewArray("int", local("n")))},
			"  arr = rjava_new_array(n, (int64_t) sizeof(int32_t));\n",
		},
		{
			"new multi array", arrays,
			[]ir.Unit{testutil.Assign(local("grid"), testutil.NewMultiArray("int", local("n"), testutil.Const("3", "int")))},
			"  grid = rjava_new_multi_array((int[]){n,3}, 2, (int64_t) sizeof(int32_t));\n",
		},
		{
			"array length", arrays,
			[]ir.Unit{testutil.Assign(local("n"), testutil.Length(local("arr")))},
			"  n = rjava_length_of_array(arr);\n",
		},
		{
			"cmp", nums,
			[]ir.Unit{testutil.Assign(local("i"), testutil.Binop("cmp", local("a"), local("b"), "int"))},
			"  i = ((a<b) ? -1 : ((a==b) ? 0 : 1));\n",
		},
		{
			"cmpg", nums,
			[]ir.Unit{testutil.Assign(local("i"), testutil.Binop("cmpg", local("a"), local("b"), "int"))},
			"  i = ((a<b) ? -1 : ((a==b) ? 0 : 1));\n",
		},
		{
			"cmpl", nums,
			[]ir.Unit{testutil.Assign(local("i"), testutil.Binop("cmpl", local("a"), local("b"), "int"))},
			"  i = ((a>b) ? 1 : ((a==b) ? 0 : -1));\n",
		},
		{
			"cast covers the whole comparison", nums,
			[]ir.Unit{testutil.Assign(local("l"), testutil.Binop("cmpl", local("a"), local("b"), "int"))},
			"  l = (int64_t)((a>b) ? 1 : ((a==b) ? 0 : -1));\n",
		},
		{
			"unsigned shift int", nums,
			[]ir.Unit{testutil.Assign(local("i"), testutil.Binop(">>>", local("i"), local("n"), "int"))},
			"  i = (int32_t)((uint32_t)(i) >> (n));\n",
		},
		{
			"unsigned shift long", nums,
			[]ir.Unit{testutil.Assign(local("l"), testutil.Binop(">>>", local("l"), local("n"), "long"))},
			"  l = (int64_t)((uint64_t)(l) >> (n));\n",
		},
		{
			"lookup switch", nums,
			[]ir.Unit{
				testutil.LookupSwitch(local("n"), []int64{10, -200}, []int{1, 2}, 3),
				testutil.Assign(local("i"), testutil.Const("1", "int")),
				testutil.Assign(local("i"), testutil.Const("2", "int")),
			},
			"  switch (n) {\n" +
				"    case 10: goto label0;\n" +
				"    case -200: goto label1;\n" +
				"    default: goto label2;\n" +
				"  }\n" +
				"  label0: i = 1;\n" +
				"  label1: i = 2;\n" +
				"  label2: return;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, m, _ := newGenerator(t, opsProgram(tt.locals, tt.units...))
			translate(t, g, m, "app.Ops")
			assert.Contains(t, unit(t, g, "app_Ops.c"), tt.want)
		})
	}
}

func TestLowering_MonitorTypesAreLive(t *testing.T) {
	g, m, _ := newGenerator(t, opsProgram(
		[][2]string{{"o", "app.Lock"}, {"is", "boolean"}},
		testutil.Assign(testutil.Local("is"), testutil.InstanceOf("app.Named", testutil.Local("o"))),
	))
	translate(t, g, m, "app.Ops")

	assert.Contains(t, g.Classes(), "app.Named")
	assert.Contains(t, unitNames(g), "app_Named.h")
}

// inheritedInterfaceProgram calls m() on an abstract class that inherits
// m from an interface without declaring it.
func inheritedInterfaceProgram() *ir.Program {
	b := testutil.NewProgram()
	b.Interface("app.I").AbstractMethod("m", nil, "int")
	b.Class("app.A", testutil.Object).Abstract().Implements("app.I")
	for _, name := range []string{"app.B", "app.C"} {
		b.Class(name, "app.A").
			Method("m", nil, "int").
			Local("this", name).
			Units(testutil.Identity("this", testutil.This(name)), testutil.Return(testutil.Const("1", "int")))
	}
	b.Class("app.Run", testutil.Object).
		StaticMethod("run", []string{"app.A"}, "int").
		Local("a", "app.A").
		Local("r", "int").
		Units(
			testutil.Identity("a", testutil.Param(0, "app.A")),
			testutil.Assign(testutil.Local("r"), testutil.Virtual(testutil.Local("a"), "app.A", "m", nil, "int")),
			testutil.Return(testutil.Local("r")),
		)
	return b.Build()
}

func TestTranslate_InheritedInterfaceMethodUsesInterfaceTable(t *testing.T) {
	g, m, sink := newGenerator(t, inheritedInterfaceProgram())
	translate(t, g, m, "app.Run")

	src := unit(t, g, "app_Run.c")
	assert.Contains(t, src,
		`  r = ((app_I_itable*) rjava_get_interface(((RJava_Common_Class*)((RJava_Common_Instance*) a) -> class_struct) -> interfaces, "app_I")) -> m(a) /* a -> ??? */;`+"\n")
	assert.NotContains(t, src, "java_lang_Object_m")

	for _, class := range []string{"app.B", "app.C"} {
		assert.True(t, g.Reached(method(t, m, class, "m()")), class)
	}
	assert.Contains(t, unit(t, g, "app_B.c"), "static app_I_itable app_B__app_I_itable = {\n  .m = app_B_m,\n};\n")
	assert.Contains(t, unit(t, g, "app_C.c"), "  .m = app_C_m,\n")
	assert.EqualValues(t, 1, sink.Count(diag.CounterDevirtFail))
}

// hashProgram calls hashCode() on app.A. With override, app.B extends
// app.A and overrides it.
func hashProgram(override bool, units ...ir.Unit) *ir.Program {
	b := testutil.NewProgram()
	b.Class("app.A", testutil.Object)
	if override {
		b.Class("app.B", "app.A").
			Method("hashCode", nil, "int").
			Local("this", "app.B").
			Units(testutil.Identity("this", testutil.This("app.B")), testutil.Return(testutil.Const("7", "int")))
	}
	b.Class("app.Run", testutil.Object).
		StaticMethod("run", []string{"app.A"}, "void").
		Local("a", "app.A").
		Local("h", "int").
		Units(append([]ir.Unit{testutil.Identity("a", testutil.Param(0, "app.A"))}, units...)...).
		ReturnVoid()
	return b.Build()
}

func TestTranslate_ObjectMethodCalls(t *testing.T) {
	hash := testutil.Virtual(testutil.Local("a"), "app.A", "hashCode", nil, "int")
	guarded := "((void*)(((RJava_Common_Instance*) a) -> class_struct) == (void*)&app_B_class_instance ? " +
		"app_B_hashCode(a) : java_lang_Object_hashCode(a))"

	t.Run("sole target is the base", func(t *testing.T) {
		g, m, sink := newGenerator(t, hashProgram(false, testutil.Invoke(hash)))
		translate(t, g, m, "app.Run")

		assert.Contains(t, unit(t, g, "app_Run.c"), "  /* java.lang.Object.hashCode() */\n")
		assert.Zero(t, sink.Count(diag.CounterVirtualCalls))
	})

	t.Run("overridden call is dispatched", func(t *testing.T) {
		g, m, sink := newGenerator(t, hashProgram(true, testutil.Invoke(hash)))
		translate(t, g, m, "app.Run")

		src := unit(t, g, "app_Run.c")
		assert.Contains(t, src, "  "+guarded+";\n")
		assert.NotContains(t, src, "/* java.lang.Object.hashCode() */")
		assert.True(t, g.Reached(method(t, m, "app.B", "hashCode()")))
		assert.Contains(t, g.Classes(), "app.B")
		assert.EqualValues(t, 1, sink.Count(diag.CounterVirtualCalls))
	})

	t.Run("overridden value is dispatched", func(t *testing.T) {
		g, m, _ := newGenerator(t, hashProgram(true, testutil.Assign(testutil.Local("h"), hash)))
		translate(t, g, m, "app.Run")

		assert.Contains(t, unit(t, g, "app_Run.c"), "  h = "+guarded+";\n")
	})

	t.Run("unique receiver is devirtualized", func(t *testing.T) {
		prog := hashProgram(true, testutil.Assign(testutil.Local("h"), hash))
		prog.PointsTo = append(prog.PointsTo, ir.PointsToFact{Method: "app.Run.run(app.A)", Local: "a", Types: []string{"app.B"}})
		g, m, sink := newGenerator(t, prog)
		translate(t, g, m, "app.Run")

		assert.Contains(t, unit(t, g, "app_Run.c"), "  h = app_B_hashCode(a) /* a -> app.B */;\n")
		assert.EqualValues(t, 1, sink.Count(diag.CounterDevirtSuccess))
	})

	t.Run("super call stays a comment", func(t *testing.T) {
		special := testutil.Special(testutil.Local("a"), testutil.Object, "hashCode", nil, "int")
		g, m, _ := newGenerator(t, hashProgram(true, testutil.Invoke(special)))
		translate(t, g, m, "app.Run")

		assert.Contains(t, unit(t, g, "app_Run.c"), "  /* java.lang.Object.hashCode() */\n")
	})
}

func TestExclude(t *testing.T) {
	newProgram := func() *ir.Program {
		b := testutil.NewProgram()
		b.Class("app.Main", testutil.Object).
			StaticMethod("run", nil, "void").
			Units(testutil.Invoke(testutil.Static("app.C", "run", nil, "void")), testutil.ReturnVoid())
		b.Class("app.C", testutil.Object).StaticMethod("run", nil, "void").ReturnVoid()
		b.Class("app.D", "app.C")
		return b.Build()
	}

	exclude := func(t *testing.T) (*Generator, func(string) error) {
		g, m, _ := newGenerator(t, newProgram())
		g.PreTranslationWork()
		c, err := m.ResolveClass("app.C")
		require.NoError(t, err)
		g.Exclude(c)
		return g, func(name string) error {
			k, err := m.ResolveClass(name)
			require.NoError(t, err)
			return g.Translate(k, "")
		}
	}

	t.Run("call into excluded class", func(t *testing.T) {
		g, translateClass := exclude(t)
		var ie *diag.InternalError
		require.ErrorAs(t, translateClass("app.Main"), &ie)
		assert.Equal(t, diag.ErrCodeSkippedReached, ie.Code)
		assert.Equal(t, "app.Main", ie.Class)
		assert.Equal(t, "run()", ie.Method)
		assert.NotContains(t, g.Classes(), "app.C")
	})

	t.Run("subclass of excluded class", func(t *testing.T) {
		_, translateClass := exclude(t)
		var ie *diag.InternalError
		require.ErrorAs(t, translateClass("app.D"), &ie)
		assert.Equal(t, diag.ErrCodeSkippedReached, ie.Code)
	})

	t.Run("excluded class itself", func(t *testing.T) {
		_, translateClass := exclude(t)
		var ie *diag.InternalError
		require.ErrorAs(t, translateClass("app.C"), &ie)
		assert.Equal(t, diag.ErrCodeSkippedReached, ie.Code)
	})

	t.Run("reset clears exclusions", func(t *testing.T) {
		g, translateClass := exclude(t)
		g.PreTranslationWork()
		require.NoError(t, translateClass("app.Main"))
		assert.Contains(t, g.Classes(), "app.C")
	})
}
