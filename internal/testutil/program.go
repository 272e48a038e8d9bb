package testutil

import "github.com/roach88/lowerc/internal/ir"

// ProgramBuilder assembles an ir.Program fluently.
//
//	prog := testutil.NewProgram().
//		Class("app.Main", "java.lang.Object").
//		StaticMethod("run", nil, "void").
//		ReturnVoid().
//		Done().
//		Done().
//		Build()
type ProgramBuilder struct {
	prog ir.Program
}

// NewProgram starts an empty program.
func NewProgram() *ProgramBuilder {
	return &ProgramBuilder{}
}

// Class appends a class and returns its builder.
func (b *ProgramBuilder) Class(name, super string) *ClassBuilder {
	b.prog.Classes = append(b.prog.Classes, ir.ClassDecl{Name: name, Super: super})
	return &ClassBuilder{p: b, idx: len(b.prog.Classes) - 1}
}

// Interface appends an interface and returns its builder.
func (b *ProgramBuilder) Interface(name string, supers ...string) *ClassBuilder {
	b.prog.Classes = append(b.prog.Classes, ir.ClassDecl{
		Name:       name,
		Super:      "java.lang.Object",
		Interface:  true,
		Abstract:   true,
		Interfaces: supers,
	})
	return &ClassBuilder{p: b, idx: len(b.prog.Classes) - 1}
}

// PointsTo records that local in method may only hold the given types.
func (b *ProgramBuilder) PointsTo(method, local string, types ...string) *ProgramBuilder {
	b.prog.PointsTo = append(b.prog.PointsTo, ir.PointsToFact{Method: method, Local: local, Types: types})
	return b
}

// Build returns the program.
func (b *ProgramBuilder) Build() *ir.Program {
	p := b.prog
	return &p
}

// ClassBuilder edits one class declaration.
type ClassBuilder struct {
	p   *ProgramBuilder
	idx int
}

func (c *ClassBuilder) decl() *ir.ClassDecl {
	return &c.p.prog.Classes[c.idx]
}

// Implements adds interfaces.
func (c *ClassBuilder) Implements(ifaces ...string) *ClassBuilder {
	c.decl().Interfaces = append(c.decl().Interfaces, ifaces...)
	return c
}

// Abstract marks the class abstract.
func (c *ClassBuilder) Abstract() *ClassBuilder {
	c.decl().Abstract = true
	return c
}

// Final marks the class final.
func (c *ClassBuilder) Final() *ClassBuilder {
	c.decl().Final = true
	return c
}

// Restrict appends restriction policy names.
func (c *ClassBuilder) Restrict(policies ...string) *ClassBuilder {
	c.decl().Restrictions = append(c.decl().Restrictions, policies...)
	return c
}

// Source sets the originating source file.
func (c *ClassBuilder) Source(path string) *ClassBuilder {
	c.decl().Source = path
	return c
}

// Field adds an instance field.
func (c *ClassBuilder) Field(name, typ string) *ClassBuilder {
	c.decl().Fields = append(c.decl().Fields, ir.FieldDecl{Name: name, Type: typ})
	return c
}

// InlinableField adds an instance field that may be embedded by value.
func (c *ClassBuilder) InlinableField(name, typ string) *ClassBuilder {
	c.decl().Fields = append(c.decl().Fields, ir.FieldDecl{Name: name, Type: typ, Inlinable: true})
	return c
}

// StaticField adds a static field.
func (c *ClassBuilder) StaticField(name, typ string) *ClassBuilder {
	c.decl().Fields = append(c.decl().Fields, ir.FieldDecl{Name: name, Type: typ, Static: true})
	return c
}

// Method adds a concrete instance method.
func (c *ClassBuilder) Method(name string, params []string, ret string) *MethodBuilder {
	return c.addMethod(ir.MethodDecl{Name: name, Params: params, Return: ret, Concrete: true})
}

// StaticMethod adds a concrete static method.
func (c *ClassBuilder) StaticMethod(name string, params []string, ret string) *MethodBuilder {
	return c.addMethod(ir.MethodDecl{Name: name, Params: params, Return: ret, Static: true, Concrete: true})
}

// AbstractMethod adds a body-less instance method.
func (c *ClassBuilder) AbstractMethod(name string, params []string, ret string) *ClassBuilder {
	c.addMethod(ir.MethodDecl{Name: name, Params: params, Return: ret})
	return c
}

func (c *ClassBuilder) addMethod(md ir.MethodDecl) *MethodBuilder {
	c.decl().Methods = append(c.decl().Methods, md)
	return &MethodBuilder{c: c, idx: len(c.decl().Methods) - 1}
}

// Done returns to the program builder.
func (c *ClassBuilder) Done() *ProgramBuilder {
	return c.p
}

// MethodBuilder edits one method declaration.
type MethodBuilder struct {
	c   *ClassBuilder
	idx int
}

func (m *MethodBuilder) decl() *ir.MethodDecl {
	return &m.c.decl().Methods[m.idx]
}

// Local declares a local.
func (m *MethodBuilder) Local(name, typ string) *MethodBuilder {
	m.decl().Locals = append(m.decl().Locals, ir.LocalDecl{Name: name, Type: typ})
	return m
}

// ByValueLocal declares a local the front end proved may live inline.
func (m *MethodBuilder) ByValueLocal(name, typ string) *MethodBuilder {
	m.decl().Locals = append(m.decl().Locals, ir.LocalDecl{Name: name, Type: typ, ByValue: true})
	return m
}

// Units appends units.
func (m *MethodBuilder) Units(units ...ir.Unit) *MethodBuilder {
	m.decl().Units = append(m.decl().Units, units...)
	return m
}

// ReturnVoid appends a return-void unit.
func (m *MethodBuilder) ReturnVoid() *MethodBuilder {
	return m.Units(ReturnVoid())
}

// Trap marks unit handler as an exception handler.
func (m *MethodBuilder) Trap(begin, end, handler int, exception string) *MethodBuilder {
	m.decl().Traps = append(m.decl().Traps, ir.Trap{Begin: begin, End: end, Handler: handler, Exception: exception})
	return m
}

// Done returns to the class builder.
func (m *MethodBuilder) Done() *ClassBuilder {
	return m.c
}
