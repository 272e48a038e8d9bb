package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/intrinsic"
	"github.com/roach88/lowerc/internal/semantic"
)

// Runtime helpers every allocation and array operation goes through.
const (
	helperNewInstance      = "rjava_new_instance"
	helperInitInstance     = "rjava_init_instance"
	helperNewArray         = "rjava_new_array"
	helperNewMultiArray    = "rjava_new_multi_array"
	helperLength           = "rjava_length_of_array"
	helperInstanceOf       = "rjava_instanceof"
	helperImplements       = "rjava_implements"
	helperGetInterface     = "rjava_get_interface"
	helperArrayElem        = "RJAVA_ARRAY_ELEM"
	helperNewStringLiteral = "newStringConstant"
)

// arithmetic lists the binary operators that lower to themselves.
var arithmetic = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
}

// expr lowers a value in rvalue or lvalue position.
func (g *Generator) expr(v semantic.Value) (string, error) {
	switch v := v.(type) {
	case *semantic.LocalRef:
		return g.LocalName(v.Local), nil

	case *semantic.FieldRef:
		return g.field(v)

	case *semantic.StaticFieldRef:
		g.live(v.Field.Owner)
		return staticFieldName(v.Field), nil

	case *semantic.ArrayRef:
		base, err := g.expr(v.Base)
		if err != nil {
			return "", err
		}
		idx, err := g.expr(v.Index)
		if err != nil {
			return "", err
		}
		return helperArrayElem + "(" + base + ", " + g.ctype(v.Elem) + ", " + idx + ")", nil

	case *semantic.InvokeExpr:
		return g.invoke(v)

	case *semantic.BinopExpr:
		return g.binop(v)

	case *semantic.Const:
		return g.constant(v)

	case *semantic.NewExpr:
		return g.newInstance(v.T)

	case *semantic.NewArrayExpr:
		size, err := g.expr(v.Size)
		if err != nil {
			return "", err
		}
		return helperNewArray + "(" + size + ", (int64_t) sizeof(" + g.ctype(v.Elem) + "))", nil

	case *semantic.NewMultiArrayExpr:
		sizes := make([]string, len(v.Sizes))
		for i, s := range v.Sizes {
			x, err := g.expr(s)
			if err != nil {
				return "", err
			}
			sizes[i] = x
		}
		return fmt.Sprintf("%s((int[]){%s}, %d, (int64_t) sizeof(%s))",
			helperNewMultiArray, strings.Join(sizes, ","), len(sizes), g.ctype(v.Base)), nil

	case *semantic.CastExpr:
		x, err := g.pointer(v.Op)
		if err != nil {
			return "", err
		}
		return "(" + g.ctype(v.To) + ")" + x, nil

	case *semantic.InstanceOfExpr:
		return g.instanceOf(v)

	case *semantic.LengthExpr:
		x, err := g.expr(v.Op)
		if err != nil {
			return "", err
		}
		return helperLength + "(" + x + ")", nil

	case *semantic.NegExpr:
		x, err := g.expr(v.Op)
		if err != nil {
			return "", err
		}
		return "-(" + x + ")", nil

	case *semantic.ThisRef, *semantic.ParamRef, *semantic.CaughtExceptionRef:
		return "", diag.Incomplete(fmt.Sprintf("%T outside an identity statement", v), "")
	}
	return "", diag.Incomplete(fmt.Sprintf("value %T", v), "")
}

// pointer lowers v where a pointer is required: by-value locals are
// passed by address.
func (g *Generator) pointer(v semantic.Value) (string, error) {
	if isByValueLocal(v) {
		return "(&" + g.LocalName(v.(*semantic.LocalRef).Local) + ")", nil
	}
	return g.expr(v)
}

// field lowers an instance field access. Fields of by-value locals are
// reached with '.', everything else through a pointer to the owner's
// layout.
func (g *Generator) field(v *semantic.FieldRef) (string, error) {
	f := v.Field
	if isByValueLocal(v.Base) {
		return g.LocalName(v.Base.(*semantic.LocalRef).Local) + "." + memberName(f.Name), nil
	}
	base, err := g.expr(v.Base)
	if err != nil {
		return "", err
	}
	g.live(f.Owner)
	return "((" + className(f.Owner.Name) + "*) " + base + ") -> " + memberName(f.Name), nil
}

// binop lowers binary, comparison and shift expressions.
//
//	a cmp b, a cmpg b   ((a<b) ? -1 : ((a==b) ? 0 : 1))
//	a cmpl b            ((a>b) ? 1 : ((a==b) ? 0 : -1))
//	a >>> b             unsigned shift of a's width
//	ref == ref          (intptr_t)a == (intptr_t)b
func (g *Generator) binop(v *semantic.BinopExpr) (string, error) {
	l, err := g.expr(v.Left)
	if err != nil {
		return "", err
	}
	r, err := g.expr(v.Right)
	if err != nil {
		return "", err
	}

	switch v.Op {
	case "cmp", "cmpg":
		return "((" + l + "<" + r + ") ? -1 : ((" + l + "==" + r + ") ? 0 : 1))", nil
	case "cmpl":
		return "((" + l + ">" + r + ") ? 1 : ((" + l + "==" + r + ") ? 0 : -1))", nil
	case ">>>":
		if v.Left.Type().Name == "long" {
			return "(int64_t)((uint64_t)(" + l + ") >> (" + r + "))", nil
		}
		return "(int32_t)((uint32_t)(" + l + ") >> (" + r + "))", nil
	case "==", "!=":
		if v.Left.Type().IsReference() && v.Right.Type().IsReference() {
			return "(intptr_t)" + l + " " + v.Op + " (intptr_t)" + r, nil
		}
	}
	if !arithmetic[v.Op] {
		return "", diag.Incomplete(fmt.Sprintf("operator %q", v.Op), "")
	}
	return l + " " + v.Op + " " + r, nil
}

// constant lowers a literal. String literals become runtime string
// constants; the literal text is the raw string content.
func (g *Generator) constant(c *semantic.Const) (string, error) {
	switch {
	case c.T.Kind == semantic.TypeNull:
		return "NULL", nil
	case c.T.Name == intrinsic.StringClass:
		g.useLibrary(intrinsic.StringClass)
		return helperNewStringLiteral + "(" + cString(c.Text) + ")", nil
	case c.Text == "":
		return "", diag.Incomplete("empty constant of type "+c.T.Name, "")
	}
	return c.Text, nil
}

// newInstance allocates an instance of t and binds its class descriptor.
// Intrinsic primitive-like types start out zero.
func (g *Generator) newInstance(t *semantic.Type) (string, error) {
	if t.IsPrimitive() {
		return "0", nil
	}
	c, err := g.model.ResolveClass(t.ClassName())
	if err != nil {
		return "", err
	}
	g.live(c)
	name := className(c.Name)
	return "(" + name + "*) " + helperNewInstance + "(sizeof(" + name + "), " + descriptorRef(c) + ")", nil
}

// initInPlace initializes a by-value local's common header instead of
// allocating.
func (g *Generator) initInPlace(local string, t *semantic.Type) (string, error) {
	c, err := g.model.ResolveClass(t.ClassName())
	if err != nil {
		return "", err
	}
	g.live(c)
	name := className(c.Name)
	return helperInitInstance + "(&" + local + ", sizeof(" + name + "), " + descriptorRef(c) + ");", nil
}

// descriptorRef is a pointer to c's class descriptor as the runtime sees it.
func descriptorRef(c *semantic.Class) string {
	return "(" + commonClass + "*) &" + className(c.Name) + classInstance
}

// instanceOf tests class membership through the runtime. Interfaces are
// matched by name against the interface list.
func (g *Generator) instanceOf(v *semantic.InstanceOfExpr) (string, error) {
	name := v.Check.ClassName()
	if name == "" {
		return "", diag.Incomplete("instanceof "+v.Check.Name, "")
	}
	x, err := g.pointer(v.Op)
	if err != nil {
		return "", err
	}
	c, err := g.model.ResolveClass(name)
	if err != nil {
		return "", err
	}
	g.live(c)
	if c.Interface {
		return helperImplements + "((void*)" + x + ", " + strconv.Quote(className(c.Name)) + ")", nil
	}
	return helperInstanceOf + "((void*)" + x + ", (void*)&" + className(c.Name) + classInstance + ")", nil
}
