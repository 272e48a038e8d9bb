package semantic

import (
	"strings"

	"github.com/roach88/lowerc/internal/ir"
)

// Special method names.
const (
	ConstructorName = "<init>"
	ClassInitName   = "<clinit>"
	MainName        = "main"
)

// Class is a canonical class or interface.
type Class struct {
	Name       string
	Interfaces []string
	Interface  bool
	Abstract   bool
	Final      bool

	// Library classes are trusted pre-existing code: never translated,
	// always called directly.
	Library bool

	// DeFactoFinal is set when no class in the program extends this one.
	DeFactoFinal bool

	// Restrictions lists policy names in declaration order.
	Restrictions []string

	Fields  []*Field
	Methods []*Method
	Source  string

	// Type is the reference type naming this class.
	Type *Type

	superName string
	model     *Model
	bySig     map[string]*Method
}

// SuperName returns the declared superclass name, or "" for a root.
func (c *Class) SuperName() string {
	return c.superName
}

// Super resolves the superclass. The reference is weak: a super that cannot
// be resolved yields nil.
func (c *Class) Super() *Class {
	if c.superName == "" {
		return nil
	}
	s, err := c.model.ResolveClass(c.superName)
	if err != nil {
		return nil
	}
	return s
}

// MethodBySig returns the method declared in c with signature sig.
func (c *Class) MethodBySig(sig string) *Method {
	return c.bySig[sig]
}

// Field returns the field declared in c named name.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InstanceFields returns the non-static fields declared in c.
func (c *Class) InstanceFields() []*Field {
	var out []*Field
	for _, f := range c.Fields {
		if !f.Static {
			out = append(out, f)
		}
	}
	return out
}

// StaticFields returns the static fields declared in c.
func (c *Class) StaticFields() []*Field {
	var out []*Field
	for _, f := range c.Fields {
		if f.Static {
			out = append(out, f)
		}
	}
	return out
}

// ClassInit returns the static initializer, or nil.
func (c *Class) ClassInit() *Method {
	return c.bySig[ClassInitName+"()"]
}

func (c *Class) addMethod(m *Method) {
	c.Methods = append(c.Methods, m)
	c.bySig[m.Signature()] = m
}

func (c *Class) String() string {
	return c.Name
}

// Method is a canonical method.
type Method struct {
	Owner  *Class
	Name   string
	Params []*Type
	Return *Type

	Static      bool
	Concrete    bool
	Constructor bool
	ClassInit   bool

	// Main, Inline and the body are filled by BuildBody.
	Main   bool
	Inline bool

	// Intrinsic methods are never emitted.
	Intrinsic bool

	Body   []Stmt
	Locals []*Local

	decl  *ir.MethodDecl
	built bool
}

// Signature is "name(p1,p2)", the key overriding methods share.
func (m *Method) Signature() string {
	return signature(m.Name, typeNames(m.Params))
}

// Key is the program-wide method key used by points-to facts.
func (m *Method) Key() string {
	return ir.MethodKey(m.Owner.Name, m.Name, typeNames(m.Params))
}

// IsVirtual reports whether the method can appear in a dispatch table.
func (m *Method) IsVirtual() bool {
	return !m.Static && !m.Constructor && !m.ClassInit
}

// Built reports whether BuildBody has run.
func (m *Method) Built() bool {
	return m.built
}

// Local returns the local named name, or nil.
func (m *Method) Local(name string) *Local {
	for _, l := range m.Locals {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func (m *Method) String() string {
	return m.Owner.Name + "." + m.Signature()
}

// Field is a canonical field.
type Field struct {
	Owner  *Class
	Name   string
	Type   *Type
	Static bool

	// Inlinable fields may be embedded by value in the owner's layout.
	Inlinable bool
}

// Local is a method local.
type Local struct {
	Method *Method
	Name   string
	Type   *Type

	// ByValue locals hold an object inline rather than a pointer to it.
	ByValue bool
}

func signature(name string, params []string) string {
	return name + "(" + strings.Join(params, ",") + ")"
}

func typeNames(ts []*Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}
