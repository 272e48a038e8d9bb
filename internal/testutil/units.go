package testutil

import "github.com/roach88/lowerc/internal/ir"

// Operand constructors.

func Local(name string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindLocal, Name: name}
}

func This(typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindThis, Type: typ}
}

func Param(i int, typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindParam, Param: i, Type: typ}
}

func Caught(typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindCaughtException, Type: typ}
}

func Const(value, typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindConst, Value: value, Type: typ}
}

func Null() *ir.Operand {
	return &ir.Operand{Kind: ir.KindConst, Value: "null", Type: "null"}
}

func Field(base *ir.Operand, class, name, typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindField, Base: base, Class: class, Name: name, Type: typ}
}

func StaticField(class, name, typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindStaticField, Class: class, Name: name, Type: typ}
}

func Elem(base, index *ir.Operand, typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindArray, Base: base, Index: index, Type: typ}
}

func Binop(op string, l, r *ir.Operand, typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindBinop, Op: op, Left: l, Right: r, Type: typ}
}

func New(typ string) *ir.Operand {
	return &ir.Operand{Kind: ir.KindNew, Type: typ}
}

func NewArray(elem string, size *ir.Operand) *ir.Operand {
	return &ir.Operand{Kind: ir.KindNewArray, Type: elem, Size: size}
}

func NewMultiArray(elem string, sizes ...*ir.Operand) *ir.Operand {
	return &ir.Operand{Kind: ir.KindNewMultiArray, Type: elem, Sizes: deref(sizes)}
}

func Cast(typ string, v *ir.Operand) *ir.Operand {
	return &ir.Operand{Kind: ir.KindCast, Type: typ, Operand: v}
}

func InstanceOf(typ string, v *ir.Operand) *ir.Operand {
	return &ir.Operand{Kind: ir.KindInstanceOf, Type: typ, Operand: v}
}

func Length(v *ir.Operand) *ir.Operand {
	return &ir.Operand{Kind: ir.KindLength, Operand: v}
}

func Neg(v *ir.Operand) *ir.Operand {
	return &ir.Operand{Kind: ir.KindNeg, Operand: v}
}

// Call builds an invoke operand. base is nil for static calls.
func Call(flavor string, base *ir.Operand, class, method string, params []string, ret string, args ...*ir.Operand) *ir.Operand {
	return &ir.Operand{
		Kind:   ir.KindInvoke,
		Invoke: flavor,
		Base:   base,
		Class:  class,
		Method: method,
		Params: params,
		Return: ret,
		Args:   deref(args),
	}
}

func Virtual(base *ir.Operand, class, method string, params []string, ret string, args ...*ir.Operand) *ir.Operand {
	return Call(ir.InvokeVirtual, base, class, method, params, ret, args...)
}

func Special(base *ir.Operand, class, method string, params []string, ret string, args ...*ir.Operand) *ir.Operand {
	return Call(ir.InvokeSpecial, base, class, method, params, ret, args...)
}

func Interface(base *ir.Operand, class, method string, params []string, ret string, args ...*ir.Operand) *ir.Operand {
	return Call(ir.InvokeInterface, base, class, method, params, ret, args...)
}

func Static(class, method string, params []string, ret string, args ...*ir.Operand) *ir.Operand {
	return Call(ir.InvokeStatic, nil, class, method, params, ret, args...)
}

func deref(ops []*ir.Operand) []ir.Operand {
	out := make([]ir.Operand, len(ops))
	for i, o := range ops {
		out[i] = *o
	}
	return out
}

// Unit constructors.

func Assign(lhs, rhs *ir.Operand) ir.Unit {
	return ir.Unit{Op: ir.OpAssign, LHS: lhs, RHS: rhs}
}

func Identity(local string, rhs *ir.Operand) ir.Unit {
	return ir.Unit{Op: ir.OpIdentity, LHS: Local(local), RHS: rhs}
}

func Invoke(call *ir.Operand) ir.Unit {
	return ir.Unit{Op: ir.OpInvoke, Value: call}
}

func If(cond *ir.Operand, target int) ir.Unit {
	return ir.Unit{Op: ir.OpIf, Value: cond, Target: target}
}

func Goto(target int) ir.Unit {
	return ir.Unit{Op: ir.OpGoto, Target: target}
}

func TableSwitch(key *ir.Operand, low, high int, targets []int, def int) ir.Unit {
	return ir.Unit{Op: ir.OpTableSwitch, Value: key, Low: low, High: high, Targets: targets, Default: def}
}

func LookupSwitch(key *ir.Operand, values []int64, targets []int, def int) ir.Unit {
	return ir.Unit{Op: ir.OpLookupSwitch, Value: key, Lookup: values, Targets: targets, Default: def}
}

func Return(v *ir.Operand) ir.Unit {
	return ir.Unit{Op: ir.OpReturn, Value: v}
}

func ReturnVoid() ir.Unit {
	return ir.Unit{Op: ir.OpReturnVoid}
}

func Ret(local string) ir.Unit {
	return ir.Unit{Op: ir.OpRet, Value: Local(local)}
}

func EnterMonitor(v *ir.Operand) ir.Unit {
	return ir.Unit{Op: ir.OpEnterMonitor, Value: v}
}

func ExitMonitor(v *ir.Operand) ir.Unit {
	return ir.Unit{Op: ir.OpExitMonitor, Value: v}
}

func Breakpoint() ir.Unit {
	return ir.Unit{Op: ir.OpBreakpoint}
}

func Nop() ir.Unit {
	return ir.Unit{Op: ir.OpNop}
}

func Throw(v *ir.Operand, text string) ir.Unit {
	return ir.Unit{Op: ir.OpThrow, Value: v, Text: text}
}
