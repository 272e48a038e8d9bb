package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/ir"
	"github.com/roach88/lowerc/internal/testutil"
)

func newZoo(t *testing.T, opts ...ModelOption) *Model {
	t.Helper()
	m := NewModel(testutil.ZooProgram(false), opts...)
	require.NoError(t, m.Prepare())
	return m
}

func TestResolveType_Canonical(t *testing.T) {
	m := newZoo(t)

	a := m.ResolveType("app.Cat")
	b := m.ResolveType("app.Cat")
	assert.Same(t, a, b)

	arr := m.ResolveType("app.Cat[]")
	assert.Same(t, arr, m.ResolveType("app.Cat[]"))
	assert.Same(t, a, arr.Elem)
}

func TestResolveType_Kinds(t *testing.T) {
	m := NewModel(&ir.Program{})

	tests := []struct {
		name string
		kind TypeKind
	}{
		{"int", TypePrimitive},
		{"double", TypePrimitive},
		{"void", TypeVoid},
		{"", TypeVoid},
		{"null", TypeNull},
		{"java.lang.Integer", TypeBoxed},
		{"java.lang.String", TypeReference},
		{"app.Node", TypeReference},
		{"int[]", TypeArray},
		{"org.vmmagic.unboxed.Address", TypeMagic},
		{"org.vmmagic.unboxed.WordArray", TypeMagic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, m.ResolveType(tt.name).Kind)
		})
	}

	integer := m.ResolveType("java.lang.Integer")
	assert.True(t, integer.Wraps(m.ResolveType("int")))
	assert.False(t, integer.Wraps(m.ResolveType("long")))
	assert.True(t, m.ResolveType("app.Node").IsReference())
	assert.False(t, m.ResolveType("org.vmmagic.unboxed.Word").IsReference())
	assert.True(t, m.ResolveType("float").IsFloatingPoint())
}

func TestResolveType_HookRunsOnce(t *testing.T) {
	calls := map[string]int{}
	m := NewModel(&ir.Program{}, WithTypeHook(func(t *Type) { calls[t.Name]++ }))

	m.ResolveType("java.lang.String")
	m.ResolveType("java.lang.String")
	m.ResolveType("java.lang.String[]")

	assert.Equal(t, 1, calls["java.lang.String"])
	assert.Equal(t, 1, calls["java.lang.String[]"])
}

func TestResolveClass_Canonical(t *testing.T) {
	m := newZoo(t)

	a, err := m.ResolveClass("app.Cat")
	require.NoError(t, err)
	b, err := m.ResolveClass("app.Cat")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Same(t, a.Super(), mustClass(t, m, "app.Animal"))
}

func TestResolveClass_UnknownAndLibrary(t *testing.T) {
	m := newZoo(t)

	_, err := m.ResolveClass("app.Missing")
	require.Error(t, err)
	var ie *diag.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, diag.ErrCodeUnknownClass, ie.Code)

	obj, err := m.ResolveClass("java.lang.Object")
	require.NoError(t, err)
	assert.True(t, obj.Library)
	assert.Nil(t, obj.Super())
}

func TestPrepare_DeFactoFinal(t *testing.T) {
	m := newZoo(t)

	assert.False(t, mustClass(t, m, "app.Animal").DeFactoFinal)
	assert.True(t, mustClass(t, m, "app.Cat").DeFactoFinal)
	assert.True(t, mustClass(t, m, "app.Main").DeFactoFinal)
}

func TestResolveMethod_WalksHierarchy(t *testing.T) {
	m := newZoo(t)
	cat := mustClass(t, m, "app.Cat")

	legs, err := m.ResolveMethod(cat, "legs", nil, "int", false)
	require.NoError(t, err)
	assert.Equal(t, "app.Animal", legs.Owner.Name)

	// Object methods land on a memoized library stub.
	h1, err := m.ResolveMethod(cat, "hashCode", nil, "int", false)
	require.NoError(t, err)
	h2, err := m.ResolveMethod(cat, "hashCode", nil, "int", false)
	require.NoError(t, err)
	assert.Same(t, h1, h2)
	assert.True(t, h1.Owner.Library)
	assert.False(t, h1.Concrete)
}

// inheritedInterfaceProgram has an abstract class that implements app.I
// without declaring m, and two subclasses that do.
func inheritedInterfaceProgram() *ir.Program {
	b := testutil.NewProgram()
	b.Interface("app.I").AbstractMethod("m", nil, "int")
	b.Class("app.A", "java.lang.Object").Abstract().Implements("app.I")
	for _, name := range []string{"app.B", "app.C"} {
		b.Class(name, "app.A").
			Method("m", nil, "int").
			Units(testutil.Return(testutil.Const("1", "int")))
	}
	return b.Build()
}

func TestResolveMethod_InterfaceBeforeLibrarySuper(t *testing.T) {
	m := NewModel(inheritedInterfaceProgram())
	require.NoError(t, m.Prepare())

	meth, err := m.ResolveMethod(mustClass(t, m, "app.A"), "m", nil, "int", false)
	require.NoError(t, err)
	assert.Equal(t, "app.I", meth.Owner.Name)
	assert.Nil(t, mustClass(t, m, "java.lang.Object").MethodBySig("m()"))

	// Methods no application type declares still land on the library.
	hash, err := m.ResolveMethod(mustClass(t, m, "app.A"), "hashCode", nil, "int", false)
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Object", hash.Owner.Name)
}

func TestAppOverrides(t *testing.T) {
	m := NewModel(inheritedInterfaceProgram())
	require.NoError(t, m.Prepare())

	var got []string
	for _, o := range m.AppOverrides(mustClass(t, m, "app.A"), "m()") {
		got = append(got, o.Class.Name+"="+o.Method.String())
	}
	assert.Equal(t, []string{"app.B=app.B.m()", "app.C=app.C.m()"}, got)

	assert.Empty(t, m.AppOverrides(mustClass(t, m, "app.A"), "hashCode()"))
	assert.Len(t, m.AppOverrides(mustClass(t, m, "java.lang.Object"), "m()"), 2)
}

func TestFindImplementation(t *testing.T) {
	m := newZoo(t)
	cat := mustClass(t, m, "app.Cat")

	assert.Equal(t, "app.Cat", m.FindImplementation(cat, "speak()").Owner.Name)
	assert.Equal(t, "app.Animal", m.FindImplementation(cat, "legs()").Owner.Name)
	assert.Nil(t, m.FindImplementation(cat, "fly()"))
}

func TestVirtualSlots_InheritedFirst(t *testing.T) {
	b := testutil.NewProgram()
	b.Class("app.A", "java.lang.Object").
		Method("f", nil, "void").ReturnVoid().Done().
		Method("g", []string{"int"}, "void").ReturnVoid().Done()
	b.Class("app.B", "app.A").
		Method("h", nil, "void").ReturnVoid().Done().
		Method("f", nil, "void").ReturnVoid().Done()
	m := NewModel(b.Build())
	require.NoError(t, m.Prepare())

	var sigs []string
	for _, s := range m.VirtualSlots(mustClass(t, m, "app.B")) {
		sigs = append(sigs, s.Signature())
	}
	assert.Equal(t, []string{"f()", "g(int)", "h()"}, sigs)
}

func TestInterfaces(t *testing.T) {
	b := testutil.NewProgram()
	b.Interface("app.I").AbstractMethod("i", nil, "void")
	b.Interface("app.J", "app.I").AbstractMethod("j", nil, "void")
	b.Class("app.Base", "java.lang.Object").Implements("app.J")
	b.Class("app.Sub", "app.Base")
	m := NewModel(b.Build())
	require.NoError(t, m.Prepare())

	sub := mustClass(t, m, "app.Sub")
	var names []string
	for _, i := range m.AllInterfaces(sub) {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"app.J", "app.I"}, names)
	assert.True(t, m.IsSubtypeOf(sub, mustClass(t, m, "app.I")))
	assert.Len(t, m.InterfaceSlots(mustClass(t, m, "app.J")), 2)
	assert.Len(t, m.Subtypes(mustClass(t, m, "app.I")), 4)
}

func TestPointsTo(t *testing.T) {
	m := NewModel(testutil.ZooProgram(true))
	require.NoError(t, m.Prepare())

	talk := mustClass(t, m, "app.Main").MethodBySig("talk(app.Animal)")
	require.NotNil(t, talk)
	assert.Equal(t, []string{"app.Cat"}, m.PointsTo(talk, "a"))
	assert.Nil(t, m.PointsTo(talk, "b"))
}

func TestFieldInlinable_GatedByOption(t *testing.T) {
	prog := testutil.NewProgram().
		Class("app.Node", "java.lang.Object").InlinableField("next", "app.Node").Done().
		Build()

	off := NewModel(prog)
	require.NoError(t, off.Prepare())
	assert.False(t, mustClass(t, off, "app.Node").Field("next").Inlinable)

	on := NewModel(prog, WithOptions(Options{ObjectInlining: true}))
	require.NoError(t, on.Prepare())
	assert.True(t, mustClass(t, on, "app.Node").Field("next").Inlinable)
}

func mustClass(t *testing.T, m *Model, name string) *Class {
	t.Helper()
	c, err := m.ResolveClass(name)
	require.NoError(t, err)
	return c
}
