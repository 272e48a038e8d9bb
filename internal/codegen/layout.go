package codegen

import (
	"fmt"
	"strings"

	"github.com/roach88/lowerc/internal/intrinsic"
	"github.com/roach88/lowerc/internal/semantic"
)

// inlineGuard is defined by the program header before it includes the
// class headers a second time for their inline bodies.
const inlineGuard = "LOWERC_INLINE_BODIES"

func banner(out *classOut) string {
	if out.source != "" {
		return "/* " + out.class.Name + " (" + out.source + ") */\n"
	}
	return "/* " + out.class.Name + " */\n"
}

// layoutFields lists the instance fields of c's layout: inherited fields
// first, root-most class first.
func layoutFields(c *semantic.Class) []*semantic.Field {
	var chain []*semantic.Class
	for k := c; k != nil && !k.Library; k = k.Super() {
		chain = append(chain, k)
	}
	var out []*semantic.Field
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].InstanceFields()...)
	}
	return out
}

// headerBase is the type of the layout's first member.
func (g *Generator) headerBase(c *semantic.Class) string {
	root := c
	for root.Super() != nil && !root.Super().Library {
		root = root.Super()
	}
	if s := root.Super(); s != nil && s.Name != intrinsic.ObjectClass {
		return className(s.Name)
	}
	return commonInstance
}

// slotDecl declares a function-pointer field for m.
func (g *Generator) slotDecl(m *semantic.Method) string {
	params := []string{"void*"}
	for _, p := range m.Params {
		params = append(params, g.ctype(p))
	}
	return g.ctype(m.Return) + " (*" + slotName(m) + ") (" + strings.Join(params, ", ") + ");"
}

// emitted reports whether m has a definition in this session's output.
func (g *Generator) emitted(m *semantic.Method) bool {
	return m != nil && g.work.Reached(m)
}

// interfaceHeader renders an interface: only its interface-table layout.
func (g *Generator) interfaceHeader(out *classOut) string {
	c := out.class
	name := className(c.Name)

	var b strings.Builder
	b.WriteString(banner(out))
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guardName(c.Name), guardName(c.Name))
	fmt.Fprintf(&b, "struct %s%s {\n", name, itableSuffix)
	slots := g.model.InterfaceSlots(c)
	for _, m := range slots {
		b.WriteString(indent + g.slotDecl(m) + "\n")
	}
	if len(slots) == 0 {
		b.WriteString(indent + "char empty;\n")
	}
	b.WriteString("};\n\n#endif\n")
	return b.String()
}

// classHeader renders a class's layout, descriptor type, extern
// declarations and prototypes. Inline-eligible methods get their bodies in
// a second section the program header includes last.
func (g *Generator) classHeader(out *classOut) string {
	c := out.class
	name := className(c.Name)
	guard := guardName(c.Name)

	var b strings.Builder
	b.WriteString(banner(out))
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)

	fmt.Fprintf(&b, "struct %s {\n", name)
	fmt.Fprintf(&b, "%s%s %s;\n", indent, g.headerBase(c), instanceHeader)
	for _, f := range layoutFields(c) {
		typ := g.ctype(f.Type)
		if inlined(f) {
			typ = cBase(f.Type)
		}
		fmt.Fprintf(&b, "%s%s %s;\n", indent, typ, memberName(f.Name))
	}
	b.WriteString("};\n\n")

	fmt.Fprintf(&b, "struct %s%s {\n", name, classSuffix)
	fmt.Fprintf(&b, "%s%s %s;\n", indent, commonClass, classHeader)
	for _, m := range g.model.VirtualSlots(c) {
		b.WriteString(indent + g.slotDecl(m) + "\n")
	}
	b.WriteString("};\n\n")

	fmt.Fprintf(&b, "extern %s%s %s%s;\n", name, classSuffix, name, classInstance)
	for _, f := range c.StaticFields() {
		fmt.Fprintf(&b, "extern %s %s;\n", g.ctype(f.Type), staticFieldName(f))
	}

	var protos, inline []string
	for _, m := range c.Methods {
		if !g.emitted(m) || m.Main {
			continue
		}
		if m.Inline {
			protos = append(protos, "static inline "+g.signature(m)+";")
			inline = append(inline, "static inline "+out.funcs[m])
			continue
		}
		protos = append(protos, g.signature(m)+";")
	}
	if len(protos) > 0 {
		b.WriteString("\n" + strings.Join(protos, "\n") + "\n")
	}
	b.WriteString("\n#endif\n")

	if len(inline) > 0 {
		inlineMacro := strings.TrimSuffix(guard, "_H") + "_INLINE"
		fmt.Fprintf(&b, "\n#if defined(%s) && !defined(%s)\n#define %s\n\n", inlineGuard, inlineMacro, inlineMacro)
		b.WriteString(strings.Join(inline, "\n"))
		b.WriteString("\n#endif\n")
	}
	return b.String()
}

// hasInline reports whether c's header carries inline bodies.
func (g *Generator) hasInline(c *semantic.Class) bool {
	for _, m := range c.Methods {
		if m.Inline && g.emitted(m) && !m.Main {
			return true
		}
	}
	return false
}

// classSource renders static storage, interface tables, the descriptor
// literal and the out-of-line method definitions.
func (g *Generator) classSource(out *classOut) string {
	c := out.class
	name := className(c.Name)

	var b strings.Builder
	b.WriteString(banner(out))
	b.WriteString("#include \"" + programHeader + "\"\n\n")

	if statics := c.StaticFields(); len(statics) > 0 {
		for _, f := range statics {
			fmt.Fprintf(&b, "%s %s;\n", g.ctype(f.Type), staticFieldName(f))
		}
		b.WriteString("\n")
	}

	ifaces := g.model.AllInterfaces(c)
	interfaces := "NULL"
	if len(ifaces) > 0 && !c.Abstract {
		var names, tables []string
		for _, iface := range ifaces {
			iname := className(iface.Name)
			table := name + "__" + iname + itableSuffix
			fmt.Fprintf(&b, "static %s%s %s = {\n", iname, itableSuffix, table)
			for _, slot := range g.model.InterfaceSlots(iface) {
				if impl := g.model.FindImplementation(c, slot.Signature()); g.emitted(impl) {
					fmt.Fprintf(&b, "%s.%s = %s,\n", indent, slotName(slot), funcName(impl))
				}
			}
			b.WriteString("};\n\n")
			names = append(names, "\""+iname+"\"")
			tables = append(tables, "&"+table)
		}
		fmt.Fprintf(&b, "static const char* %s_interface_names[] = {%s};\n", name, strings.Join(names, ", "))
		fmt.Fprintf(&b, "static void* %s_interface_tables[] = {%s};\n", name, strings.Join(tables, ", "))
		fmt.Fprintf(&b, "static %s %s_interfaces = {%d, %s_interface_names, %s_interface_tables};\n\n",
			interfaceList, name, len(ifaces), name, name)
		interfaces = "&" + name + "_interfaces"
	}

	super := "NULL"
	if s := c.Super(); s != nil && s.Name != intrinsic.ObjectClass {
		super = "(" + commonClass + "*) &" + className(s.Name) + classInstance
	}
	fmt.Fprintf(&b, "%s%s %s%s = {\n", name, classSuffix, name, classInstance)
	fmt.Fprintf(&b, "%s.%s = {\n", indent, classHeader)
	fmt.Fprintf(&b, "%s%s.name = %s,\n", indent, indent, cString(c.Name))
	fmt.Fprintf(&b, "%s%s.super = %s,\n", indent, indent, super)
	fmt.Fprintf(&b, "%s%s.interfaces = %s,\n", indent, indent, interfaces)
	fmt.Fprintf(&b, "%s%s.instance_size = sizeof(%s),\n", indent, indent, name)
	fmt.Fprintf(&b, "%s},\n", indent)
	for _, slot := range g.model.VirtualSlots(c) {
		if impl := g.model.FindImplementation(c, slot.Signature()); g.emitted(impl) {
			fmt.Fprintf(&b, "%s.%s = %s,\n", indent, slotName(slot), funcName(impl))
		}
	}
	b.WriteString("};\n")

	for _, m := range c.Methods {
		if g.emitted(m) && (!m.Inline || m.Main) {
			b.WriteString("\n" + out.funcs[m])
		}
	}
	return b.String()
}
