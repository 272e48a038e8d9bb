package semantic

import (
	"github.com/roach88/lowerc/internal/diag"
)

// objectClass is the universal base.
const objectClass = "java.lang.Object"

// ResolveMethod finds the declaration a call site naming cls and the given
// signature refers to: cls itself, then its application superclasses, then
// the application interfaces they implement. Only when none of those
// declares it does the call land on the nearest library class, which gets a
// memoized body-less stub.
func (m *Model) ResolveMethod(cls *Class, name string, params []string, ret string, static bool) (*Method, error) {
	sig := signature(name, params)

	var lib *Class
	for c := cls; c != nil; c = c.Super() {
		if c.Library {
			lib = c
			break
		}
		if meth := c.MethodBySig(sig); meth != nil {
			return meth, nil
		}
	}
	ifaces := m.AllInterfaces(cls)
	for _, iface := range ifaces {
		if meth := iface.MethodBySig(sig); meth != nil && !iface.Library {
			return meth, nil
		}
	}
	if lib != nil {
		return m.stub(lib, name, params, ret, static), nil
	}
	for _, iface := range ifaces {
		if meth := iface.MethodBySig(sig); meth != nil {
			return meth, nil
		}
	}
	if m.IsLibrary(objectClass) {
		obj, err := m.ResolveClass(objectClass)
		if err == nil && obj.Library {
			return m.stub(obj, name, params, ret, static), nil
		}
	}
	return nil, diag.Errorf(diag.ErrCodeInvalidProgram, "unresolved method %s.%s", cls.Name, sig)
}

func (m *Model) stub(c *Class, name string, params []string, ret string, static bool) *Method {
	if meth := c.MethodBySig(signature(name, params)); meth != nil {
		return meth
	}
	meth := m.newMethod(c, name, params, ret, static)
	meth.built = true
	c.addMethod(meth)
	for _, h := range m.methodHooks {
		h(meth)
	}
	return meth
}

// ResolveField finds the field a reference naming class refers to,
// searching superclasses. Library fields get memoized stubs.
func (m *Model) ResolveField(class, name, typ string, static bool) (*Field, error) {
	cls, err := m.ResolveClass(class)
	if err != nil {
		return nil, err
	}
	for c := cls; c != nil; c = c.Super() {
		if f := c.Field(name); f != nil {
			return f, nil
		}
		if c.Library {
			f := &Field{Owner: c, Name: name, Type: m.ResolveType(typ), Static: static}
			c.Fields = append(c.Fields, f)
			return f, nil
		}
	}
	return nil, diag.Errorf(diag.ErrCodeInvalidProgram, "unresolved field %s.%s", class, name)
}

// FindImplementation walks from c toward the root and returns the first
// concrete method with signature sig: the body a call dispatched on an
// instance of exactly c runs.
func (m *Model) FindImplementation(c *Class, sig string) *Method {
	for ; c != nil; c = c.Super() {
		if meth := c.MethodBySig(sig); meth != nil && meth.Concrete {
			return meth
		}
	}
	return nil
}

// Override pairs a concrete declared class with the application method a
// call dispatched on an instance of exactly that class runs.
type Override struct {
	Class  *Class
	Method *Method
}

// AppOverrides lists the concrete declared subtypes of c whose
// implementation of sig is application code, in program order. A call on a
// c-typed receiver whose declaration is a library method can only run
// library code when this is empty.
func (m *Model) AppOverrides(c *Class, sig string) []Override {
	var out []Override
	for _, sub := range m.Subtypes(c) {
		if sub.Interface || sub.Abstract {
			continue
		}
		if impl := m.FindImplementation(sub, sig); impl != nil && !impl.Owner.Library {
			out = append(out, Override{Class: sub, Method: impl})
		}
	}
	return out
}

// StaticReceiver is the class of a call's receiver as declared: the static
// type of the base, or the class the call site names when the base is not
// a class type.
func (m *Model) StaticReceiver(call *InvokeExpr) *Class {
	if call.Base != nil {
		if name := call.Base.Type().ClassName(); name != "" {
			if c, err := m.ResolveClass(name); err == nil {
				return c
			}
		}
	}
	return call.Class
}

// AllInterfaces returns every interface c implements, directly or through
// superclasses and superinterfaces, each once, nearest first.
func (m *Model) AllInterfaces(c *Class) []*Class {
	var out []*Class
	seen := make(map[string]bool)

	var visit func(names []string)
	visit = func(names []string) {
		for _, n := range names {
			if seen[n] {
				continue
			}
			seen[n] = true
			iface, err := m.ResolveClass(n)
			if err != nil {
				continue
			}
			out = append(out, iface)
			visit(iface.Interfaces)
		}
	}
	for ; c != nil; c = c.Super() {
		visit(c.Interfaces)
	}
	return out
}

// IsSubtypeOf reports whether c is anc, extends it, or implements it.
func (m *Model) IsSubtypeOf(c, anc *Class) bool {
	for s := c; s != nil; s = s.Super() {
		if s == anc {
			return true
		}
	}
	for _, iface := range m.AllInterfaces(c) {
		if iface == anc {
			return true
		}
	}
	return false
}

// Subtypes returns the declared classes that are subtypes of c, c itself
// included when declared, in program order.
func (m *Model) Subtypes(c *Class) []*Class {
	var out []*Class
	for _, k := range m.AppClasses() {
		if m.IsSubtypeOf(k, c) {
			out = append(out, k)
		}
	}
	return out
}

// VirtualSlots lists the dispatch-table slots of c: the inherited slots in
// the superclass's order, then the virtual methods c introduces. Each slot
// is represented by its first declaration. Library superclasses contribute
// no slots.
func (m *Model) VirtualSlots(c *Class) []*Method {
	if c == nil || c.Library || c.Interface {
		return nil
	}
	slots := m.VirtualSlots(c.Super())
	seen := make(map[string]bool, len(slots))
	for _, s := range slots {
		seen[s.Signature()] = true
	}
	for _, meth := range c.Methods {
		if meth.IsVirtual() && !seen[meth.Signature()] {
			seen[meth.Signature()] = true
			slots = append(slots, meth)
		}
	}
	return slots
}

// InterfaceSlots lists the interface-table slots of iface: superinterface
// slots first, then its own methods.
func (m *Model) InterfaceSlots(iface *Class) []*Method {
	var slots []*Method
	seen := make(map[string]bool)
	add := func(meth *Method) {
		if meth.IsVirtual() && !seen[meth.Signature()] {
			seen[meth.Signature()] = true
			slots = append(slots, meth)
		}
	}
	for _, sup := range m.AllInterfaces(iface) {
		for _, meth := range sup.Methods {
			add(meth)
		}
	}
	for _, meth := range iface.Methods {
		add(meth)
	}
	return slots
}
