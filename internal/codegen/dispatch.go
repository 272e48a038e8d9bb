package codegen

import (
	"strings"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/intrinsic"
	"github.com/roach88/lowerc/internal/semantic"
)

// invoke lowers a call. Static and special calls are direct, and so are
// library calls no application class can override. Other virtual and
// interface calls are devirtualized when the receiver's concrete type is
// provably unique and dispatched at run time otherwise.
func (g *Generator) invoke(call *semantic.InvokeExpr) (string, error) {
	m := call.Method
	if len(call.Args) != len(m.Params) {
		return "", diag.Errorf(diag.ErrCodeInvalidProgram, "call to %s passes %d arguments", m, len(call.Args))
	}
	args := make([]string, 0, len(call.Args)+1)
	if call.Kind != semantic.InvokeStatic {
		base, err := g.pointer(call.Base)
		if err != nil {
			return "", err
		}
		args = append(args, base)
	}
	for i, a := range call.Args {
		x, err := g.pointer(a)
		if err != nil {
			return "", err
		}
		args = append(args, g.castTo(m.Params[i], a.Type(), x))
	}

	dynamic := call.Kind == semantic.InvokeVirtual || call.Kind == semantic.InvokeInterface
	switch {
	case m.Owner.Library || m.Intrinsic:
		if dynamic {
			recv := g.model.StaticReceiver(call)
			if overrides := g.model.AppOverrides(recv, m.Signature()); len(overrides) > 0 {
				return g.guardedDispatch(call, recv, overrides, args), nil
			}
		}
		g.useLibrary(m.Owner.Name)
		return direct(m, args), nil
	case !dynamic:
		g.reach(m)
		return direct(m, args), nil
	}
	return g.dispatch(call, args)
}

// direct calls m's function by name.
func direct(m *semantic.Method, args []string) string {
	return funcName(m) + "(" + strings.Join(args, ", ") + ")"
}

// dispatch lowers an application virtual or interface call. args[0] is
// the receiver.
func (g *Generator) dispatch(call *semantic.InvokeExpr, args []string) (string, error) {
	m := call.Method
	recv := g.receiverClass(call)
	g.sink.Inc(diag.CounterVirtualCalls)

	note := ""
	if g.devirtualize {
		inferred, info := g.inferReceiver(call, recv)
		note = " " + intrinsic.Comment(info)
		if inferred != nil {
			g.sink.Inc(diag.CounterInferenceSuccess)
			if impl := g.model.FindImplementation(inferred, m.Signature()); impl != nil {
				g.sink.Inc(diag.CounterDevirtSuccess)
				g.reach(impl)
				g.logger.Debug("devirtualized call", "method", m.String(), "target", impl.String())
				return direct(impl, args) + note, nil
			}
		} else {
			g.sink.Inc(diag.CounterInferenceFail)
		}
		g.sink.Inc(diag.CounterDevirtFail)
	}

	g.reachOverrides(recv, m)

	if recv.Interface || m.Owner.Interface {
		iface := recv
		if !iface.Interface {
			iface = m.Owner
		}
		g.live(iface)
		name := className(iface.Name)
		table := helperGetInterface + "(((" + commonClass + "*)((" + commonInstance + "*) " + args[0] + ") -> " +
			classStructField + ") -> " + interfacesField + ", \"" + name + "\")"
		return "((" + name + itableSuffix + "*) " + table + ") -> " + slotName(m) +
			"(" + strings.Join(args, ", ") + ")" + note, nil
	}

	decl := g.slotOwner(recv, m)
	if decl == nil {
		return "", diag.Incomplete("dispatch slot for "+m.String()+" on "+recv.Name, "")
	}
	g.live(decl)
	return "((" + className(decl.Name) + classSuffix + "*)(((" + commonInstance + "*) " + args[0] + ") -> " +
		classStructField + ")) -> " + slotName(m) + "(" + strings.Join(args, ", ") + ")" + note, nil
}

// receiverClass is the static class of the call's receiver, falling back
// to the class the call site names.
func (g *Generator) receiverClass(call *semantic.InvokeExpr) *semantic.Class {
	if name := call.Base.Type().ClassName(); name != "" {
		if c, err := g.model.ResolveClass(name); err == nil && !c.Library {
			return c
		}
	}
	return call.Class
}

// inferReceiver proves the receiver's concrete class unique, either because
// nothing extends its static class or because the points-to facts name
// exactly one type. The second result describes the inference for a
// comment at the call site.
func (g *Generator) inferReceiver(call *semantic.InvokeExpr, recv *semantic.Class) (*semantic.Class, string) {
	name := "receiver"
	local, isLocal := call.Base.(*semantic.LocalRef)
	if isLocal {
		name = local.Local.Name
	}

	if recv.DeFactoFinal {
		return recv, name + "(final) -> " + recv.Name
	}
	if !isLocal {
		return nil, name + " -> ???"
	}

	types := g.model.PointsTo(local.Local.Method, local.Local.Name)
	if len(types) != 1 {
		if len(types) == 0 {
			return nil, name + " -> ???"
		}
		return nil, name + " -> " + strings.Join(types, "|") + " -> ???"
	}
	c, err := g.model.ResolveClass(types[0])
	if err != nil || c.Library || !g.model.IsSubtypeOf(c, recv) {
		return nil, name + " -> " + types[0] + " -> ???"
	}
	return c, name + " -> " + c.Name
}

// reachOverrides registers every implementation a table-dispatched call
// on recv may run: one per concrete subtype.
func (g *Generator) reachOverrides(recv *semantic.Class, m *semantic.Method) {
	sig := m.Signature()
	for _, sub := range g.model.Subtypes(recv) {
		if sub.Interface || sub.Abstract {
			continue
		}
		g.reach(g.model.FindImplementation(sub, sig))
	}
}

// slotOwner is the class whose descriptor first declares m's slot, seen
// from recv.
func (g *Generator) slotOwner(recv *semantic.Class, m *semantic.Method) *semantic.Class {
	sig := m.Signature()
	for _, s := range g.model.VirtualSlots(recv) {
		if s.Signature() == sig {
			return s.Owner
		}
	}
	return nil
}

// guardedDispatch lowers a call to a library method that application
// subtypes of recv override. Library classes have no dispatch table, so
// the receiver's descriptor is compared against each overriding class,
// falling back to the library function:
//
//	(desc(x) == &A_class_instance ? A_m(x) : (desc(x) == ... : lib_m(x)))
func (g *Generator) guardedDispatch(call *semantic.InvokeExpr, recv *semantic.Class, overrides []semantic.Override, args []string) string {
	m := call.Method
	g.sink.Inc(diag.CounterVirtualCalls)

	if g.devirtualize {
		inferred, info := g.inferReceiver(call, recv)
		if inferred != nil {
			g.sink.Inc(diag.CounterInferenceSuccess)
			g.sink.Inc(diag.CounterDevirtSuccess)
			if impl := g.model.FindImplementation(inferred, m.Signature()); impl != nil && !impl.Owner.Library {
				g.reach(impl)
				return direct(impl, args) + " " + intrinsic.Comment(info)
			}
			g.useLibrary(m.Owner.Name)
			return direct(m, args) + " " + intrinsic.Comment(info)
		}
		g.sink.Inc(diag.CounterInferenceFail)
		g.sink.Inc(diag.CounterDevirtFail)
	}

	g.useLibrary(m.Owner.Name)
	desc := "(void*)(((" + commonInstance + "*) " + args[0] + ") -> " + classStructField + ")"
	code := direct(m, args)
	for i := len(overrides) - 1; i >= 0; i-- {
		o := overrides[i]
		g.live(o.Class)
		g.reach(o.Method)
		code = "(" + desc + " == (void*)&" + className(o.Class.Name) + classInstance + " ? " +
			direct(o.Method, args) + " : " + code + ")"
	}
	return code
}
