package codegen

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/roach88/lowerc/internal/semantic"
)

// Program-wide unit names.
const (
	programHeader = "lowerc_program.h"
	programSource = "lowerc_program.c"
	runtimeHeader = "rjava_crt.h"
	runtimeSource = "rjava_crt.c"
)

//go:embed runtime/rjava_crt.h
var runtimeHeaderText string

//go:embed runtime/rjava_crt.c
var runtimeSourceText string

// Units renders the session's output: one header per emitted interface, a
// header and a source unit per emitted class, in emission order. After
// PostTranslationWork the program units and the runtime unit follow.
func (g *Generator) Units() []Unit {
	var units []Unit
	for _, c := range g.order {
		out := g.classes[c]
		name := className(c.Name)
		if c.Interface {
			units = append(units, Unit{Name: name + ".h", Text: g.interfaceHeader(out)})
			continue
		}
		units = append(units,
			Unit{Name: name + ".h", Text: g.classHeader(out)},
			Unit{Name: name + ".c", Text: g.classSource(out)},
		)
	}
	if !g.finished {
		return units
	}
	return append(units,
		Unit{Name: programHeader, Text: g.programHeaderText()},
		Unit{Name: programSource, Text: g.programSourceText()},
		Unit{Name: runtimeHeader, Text: runtimeHeaderText},
		Unit{Name: runtimeSource, Text: runtimeSourceText},
	)
}

// includeOrder sorts emitted classes so that every class follows its
// superclass, its interfaces and the classes it embeds by value.
func (g *Generator) includeOrder() []*semantic.Class {
	var order []*semantic.Class
	done := make(map[*semantic.Class]bool)

	var visit func(c *semantic.Class)
	visit = func(c *semantic.Class) {
		if done[c] {
			return
		}
		done[c] = true
		for _, dep := range g.dependencies(c) {
			if _, ok := g.classes[dep]; ok {
				visit(dep)
			}
		}
		order = append(order, c)
	}
	for _, c := range g.order {
		visit(c)
	}
	return order
}

func (g *Generator) dependencies(c *semantic.Class) []*semantic.Class {
	var deps []*semantic.Class
	if s := c.Super(); s != nil && !s.Library {
		deps = append(deps, s)
	}
	for _, name := range c.Interfaces {
		if iface, err := g.model.ResolveClass(name); err == nil && !iface.Library {
			deps = append(deps, iface)
		}
	}
	for _, f := range c.InstanceFields() {
		if !inlined(f) {
			continue
		}
		if fc, err := g.model.ResolveClass(f.Type.Name); err == nil && !fc.Library {
			deps = append(deps, fc)
		}
	}
	return deps
}

// programHeaderText renders the single header every class source includes:
// runtime and library headers, forward declarations of every application
// type, then the class headers in dependency order.
func (g *Generator) programHeaderText() string {
	order := g.includeOrder()

	var b strings.Builder
	b.WriteString("/* Generated by lowerc. */\n")
	b.WriteString("#ifndef LOWERC_PROGRAM_H\n#define LOWERC_PROGRAM_H\n\n")
	fmt.Fprintf(&b, "#include \"%s\"\n", runtimeHeader)
	for _, lib := range g.libraries {
		fmt.Fprintf(&b, "#include \"%s.h\"\n", className(lib))
	}
	b.WriteString("\n")

	for _, c := range g.model.AppClasses() {
		name := className(c.Name)
		if c.Interface {
			fmt.Fprintf(&b, "typedef struct %s %s;\n", name, name)
			fmt.Fprintf(&b, "typedef struct %s%s %s%s;\n", name, itableSuffix, name, itableSuffix)
			continue
		}
		fmt.Fprintf(&b, "typedef struct %s %s;\n", name, name)
		fmt.Fprintf(&b, "typedef struct %s%s %s%s;\n", name, classSuffix, name, classSuffix)
	}
	fmt.Fprintf(&b, "\nvoid %s(void);\n\n", classInitFunction)

	for _, c := range order {
		fmt.Fprintf(&b, "#include \"%s.h\"\n", className(c.Name))
	}

	var inline []string
	for _, c := range order {
		if !c.Interface && g.hasInline(c) {
			inline = append(inline, fmt.Sprintf("#include \"%s.h\"\n", className(c.Name)))
		}
	}
	if len(inline) > 0 {
		fmt.Fprintf(&b, "\n#define %s\n", inlineGuard)
		b.WriteString(strings.Join(inline, ""))
	}
	b.WriteString("\n#endif\n")
	return b.String()
}

// programSourceText renders the class-initialization entry called at the top
// of main: every emitted static initializer, in dependency order.
func (g *Generator) programSourceText() string {
	var b strings.Builder
	b.WriteString("/* Generated by lowerc. */\n")
	fmt.Fprintf(&b, "#include \"%s\"\n\n", programHeader)
	fmt.Fprintf(&b, "void %s(void) {\n", classInitFunction)
	for _, c := range g.includeOrder() {
		if ci := c.ClassInit(); g.emitted(ci) {
			fmt.Fprintf(&b, "%s%s();\n", indent, funcName(ci))
		}
	}
	b.WriteString("}\n")
	return b.String()
}
