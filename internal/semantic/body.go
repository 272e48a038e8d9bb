package semantic

import (
	"errors"
	"fmt"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/ir"
)

// BuildBody lowers meth's IR units into statements, builds its locals, and
// computes the main and inlining flags. It is idempotent once it succeeds.
// A failed build leaves no locals or body behind, and the next call fails
// the same way.
//
// A concrete method the front end supplied no units for gets an empty body
// and a warning rather than an error.
func (m *Model) BuildBody(meth *Method) error {
	if meth.built {
		return nil
	}
	if err := m.buildBody(meth); err != nil {
		meth.Locals = nil
		meth.Body = nil
		return err
	}
	meth.built = true
	return nil
}

func (m *Model) buildBody(meth *Method) error {
	meth.Main = meth.Name == MainName &&
		meth.Return.IsVoid() &&
		len(meth.Params) == 1 &&
		meth.Params[0].Name == "java.lang.String"+ArraySuffix

	decl := meth.decl
	if decl == nil || !meth.Concrete {
		return nil
	}

	for _, ld := range decl.Locals {
		t := m.ResolveType(ld.Type)
		meth.Locals = append(meth.Locals, &Local{
			Method:  meth,
			Name:    ld.Name,
			Type:    t,
			ByValue: ld.ByValue && m.opts.ObjectInlining && t.Kind == TypeReference,
		})
	}

	if len(decl.Units) == 0 {
		m.logger.Warn("concrete method has no body", "method", meth.String())
		m.sink.Warn(meth.Owner.Name, meth.Signature(), "concrete method has no body; emitted empty")
		meth.Body = []Stmt{}
		return nil
	}

	body := make([]Stmt, len(decl.Units))
	for i := range decl.Units {
		s, err := m.lowerUnit(meth, &decl.Units[i])
		if err != nil {
			return m.annotate(err, meth, i)
		}
		info := s.Info()
		info.Method = meth
		info.Index = i
		info.Text = decl.Units[i].Text
		body[i] = s
	}

	for i := range decl.Units {
		if err := link(body, body[i], &decl.Units[i]); err != nil {
			return m.annotate(err, meth, i)
		}
	}
	for _, t := range decl.Traps {
		if t.Handler < 0 || t.Handler >= len(body) {
			return diag.Errorf(diag.ErrCodeInvalidProgram, "trap handler %d out of range", t.Handler).
				At(meth.Owner.Name, meth.Signature())
		}
		info := body[t.Handler].Info()
		info.Target = true
		info.Handler = true
	}

	meth.Body = body
	meth.Inline = m.opts.AllowInline &&
		len(body) <= m.opts.InlineThreshold &&
		!meth.Main && !meth.ClassInit

	m.logger.Debug("built body",
		"method", meth.String(),
		"stmts", len(body),
		"locals", len(meth.Locals),
		"inline", meth.Inline)
	return nil
}

func (m *Model) annotate(err error, meth *Method, idx int) error {
	var ie *diag.InternalError
	if errors.As(err, &ie) {
		return ie.At(meth.Owner.Name, meth.Signature())
	}
	return fmt.Errorf("%s unit %d: %w", meth, idx, err)
}

func (m *Model) lowerUnit(meth *Method, u *ir.Unit) (Stmt, error) {
	switch u.Op {
	case ir.OpAssign:
		lhs, err := m.operand(meth, u.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := m.operand(meth, u.RHS)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{LHS: lhs, RHS: rhs}, nil

	case ir.OpIdentity:
		if u.LHS == nil || u.LHS.Kind != ir.KindLocal {
			return nil, diag.Incomplete("identity without a local on the left", u.Text)
		}
		l, err := m.local(meth, u.LHS.Name)
		if err != nil {
			return nil, err
		}
		rhs, err := m.operand(meth, u.RHS)
		if err != nil {
			return nil, err
		}
		return &IdentityStmt{Local: l, RHS: rhs}, nil

	case ir.OpInvoke:
		v, err := m.operand(meth, u.Value)
		if err != nil {
			return nil, err
		}
		call, ok := v.(*InvokeExpr)
		if !ok {
			return nil, diag.Incomplete("invoke statement without a call", u.Text)
		}
		return &InvokeStmt{Call: call}, nil

	case ir.OpIf:
		v, err := m.operand(meth, u.Value)
		if err != nil {
			return nil, err
		}
		cond, ok := v.(*BinopExpr)
		if !ok {
			return nil, diag.Incomplete("if without a condition expression", u.Text)
		}
		return &IfStmt{Cond: cond}, nil

	case ir.OpGoto:
		return &GotoStmt{}, nil

	case ir.OpTableSwitch:
		key, err := m.operand(meth, u.Value)
		if err != nil {
			return nil, err
		}
		return &TableSwitchStmt{Key: key, Low: u.Low, High: u.High}, nil

	case ir.OpLookupSwitch:
		key, err := m.operand(meth, u.Value)
		if err != nil {
			return nil, err
		}
		return &LookupSwitchStmt{Key: key, Values: u.Lookup}, nil

	case ir.OpReturn:
		v, err := m.operand(meth, u.Value)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: v}, nil

	case ir.OpReturnVoid:
		return &ReturnVoidStmt{}, nil

	case ir.OpRet:
		var l *Local
		if u.Value != nil {
			var err error
			if l, err = m.local(meth, u.Value.Name); err != nil {
				return nil, err
			}
		}
		return &RetStmt{Local: l}, nil

	case ir.OpEnterMonitor, ir.OpExitMonitor:
		v, err := m.operand(meth, u.Value)
		if err != nil {
			return nil, err
		}
		if u.Op == ir.OpEnterMonitor {
			return &EnterMonitorStmt{Value: v}, nil
		}
		return &ExitMonitorStmt{Value: v}, nil

	case ir.OpBreakpoint:
		return &BreakpointStmt{}, nil

	case ir.OpNop:
		return &NopStmt{}, nil

	case ir.OpThrow:
		v, err := m.operand(meth, u.Value)
		if err != nil {
			return nil, err
		}
		return &ThrowStmt{Value: v}, nil
	}
	return nil, diag.Incomplete(fmt.Sprintf("statement op %q", u.Op), u.Text)
}

// link resolves jump target indices to statements.
func link(body []Stmt, s Stmt, u *ir.Unit) error {
	at := func(i int) (Stmt, error) {
		if i < 0 || i >= len(body) {
			return nil, diag.Errorf(diag.ErrCodeInvalidProgram, "jump target %d out of range [0,%d)", i, len(body))
		}
		t := body[i]
		t.Info().Target = true
		return t, nil
	}
	many := func(idx []int) ([]Stmt, error) {
		out := make([]Stmt, len(idx))
		for i, n := range idx {
			t, err := at(n)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}

	var err error
	switch s := s.(type) {
	case *IfStmt:
		s.Target, err = at(u.Target)
	case *GotoStmt:
		s.Target, err = at(u.Target)
	case *TableSwitchStmt:
		if len(u.Targets) != u.High-u.Low+1 {
			return diag.Errorf(diag.ErrCodeInvalidProgram, "table switch has %d targets for range [%d,%d]", len(u.Targets), u.Low, u.High)
		}
		if s.Targets, err = many(u.Targets); err != nil {
			return err
		}
		s.Default, err = at(u.Default)
	case *LookupSwitchStmt:
		if len(u.Targets) != len(u.Lookup) {
			return diag.Errorf(diag.ErrCodeInvalidProgram, "lookup switch has %d targets for %d values", len(u.Targets), len(u.Lookup))
		}
		if s.Targets, err = many(u.Targets); err != nil {
			return err
		}
		s.Default, err = at(u.Default)
	}
	return err
}

func (m *Model) local(meth *Method, name string) (*Local, error) {
	if l := meth.Local(name); l != nil {
		return l, nil
	}
	return nil, diag.Errorf(diag.ErrCodeInvalidProgram, "unknown local %q", name)
}

func (m *Model) operand(meth *Method, op *ir.Operand) (Value, error) {
	if op == nil {
		return nil, diag.Incomplete("missing operand", "")
	}

	switch op.Kind {
	case ir.KindLocal:
		l, err := m.local(meth, op.Name)
		if err != nil {
			return nil, err
		}
		return &LocalRef{Local: l}, nil

	case ir.KindField:
		base, err := m.operand(meth, op.Base)
		if err != nil {
			return nil, err
		}
		f, err := m.ResolveField(op.Class, op.Name, op.Type, false)
		if err != nil {
			return nil, err
		}
		return &FieldRef{Base: base, Field: f}, nil

	case ir.KindStaticField:
		f, err := m.ResolveField(op.Class, op.Name, op.Type, true)
		if err != nil {
			return nil, err
		}
		return &StaticFieldRef{Field: f}, nil

	case ir.KindArray:
		base, err := m.operand(meth, op.Base)
		if err != nil {
			return nil, err
		}
		idx, err := m.operand(meth, op.Index)
		if err != nil {
			return nil, err
		}
		return &ArrayRef{Base: base, Index: idx, Elem: m.ResolveType(op.Type)}, nil

	case ir.KindInvoke:
		return m.invoke(meth, op)

	case ir.KindBinop:
		l, err := m.operand(meth, op.Left)
		if err != nil {
			return nil, err
		}
		r, err := m.operand(meth, op.Right)
		if err != nil {
			return nil, err
		}
		return &BinopExpr{Op: op.Op, Left: l, Right: r, T: m.ResolveType(op.Type)}, nil

	case ir.KindConst:
		return &Const{Text: op.Value, T: m.ResolveType(op.Type)}, nil

	case ir.KindNew:
		return &NewExpr{T: m.ResolveType(op.Type)}, nil

	case ir.KindNewArray:
		size, err := m.operand(meth, op.Size)
		if err != nil {
			return nil, err
		}
		elem := m.ResolveType(op.Type)
		return &NewArrayExpr{Elem: elem, Size: size, T: m.ResolveType(elem.Name + ArraySuffix)}, nil

	case ir.KindNewMultiArray:
		base := m.ResolveType(op.Type)
		sizes := make([]Value, len(op.Sizes))
		name := base.Name
		for i := range op.Sizes {
			s, err := m.operand(meth, &op.Sizes[i])
			if err != nil {
				return nil, err
			}
			sizes[i] = s
			name += ArraySuffix
		}
		return &NewMultiArrayExpr{Base: base, Sizes: sizes, T: m.ResolveType(name)}, nil

	case ir.KindCast:
		v, err := m.operand(meth, op.Operand)
		if err != nil {
			return nil, err
		}
		return &CastExpr{To: m.ResolveType(op.Type), Op: v}, nil

	case ir.KindInstanceOf:
		v, err := m.operand(meth, op.Operand)
		if err != nil {
			return nil, err
		}
		return &InstanceOfExpr{Check: m.ResolveType(op.Type), Op: v, T: m.ResolveType("boolean")}, nil

	case ir.KindLength:
		v, err := m.operand(meth, op.Operand)
		if err != nil {
			return nil, err
		}
		return &LengthExpr{Op: v, T: m.ResolveType("int")}, nil

	case ir.KindNeg:
		v, err := m.operand(meth, op.Operand)
		if err != nil {
			return nil, err
		}
		return &NegExpr{Op: v}, nil

	case ir.KindThis:
		return &ThisRef{T: m.ResolveType(op.Type)}, nil

	case ir.KindParam:
		return &ParamRef{Index: op.Param, T: m.ResolveType(op.Type)}, nil

	case ir.KindCaughtException:
		return &CaughtExceptionRef{T: m.ResolveType(op.Type)}, nil
	}
	return nil, diag.Incomplete(fmt.Sprintf("operand kind %q", op.Kind), "")
}

func (m *Model) invoke(meth *Method, op *ir.Operand) (*InvokeExpr, error) {
	var kind InvokeKind
	switch op.Invoke {
	case ir.InvokeVirtual:
		kind = InvokeVirtual
	case ir.InvokeSpecial:
		kind = InvokeSpecial
	case ir.InvokeInterface:
		kind = InvokeInterface
	case ir.InvokeStatic:
		kind = InvokeStatic
	default:
		return nil, diag.Incomplete(fmt.Sprintf("invoke flavor %q", op.Invoke), "")
	}

	cls, err := m.ResolveClass(op.Class)
	if err != nil {
		return nil, err
	}
	target, err := m.ResolveMethod(cls, op.Method, op.Params, op.Return, kind == InvokeStatic)
	if err != nil {
		return nil, err
	}

	call := &InvokeExpr{Kind: kind, Class: cls, Method: target}
	if kind != InvokeStatic {
		if op.Base == nil {
			return nil, diag.Errorf(diag.ErrCodeInvalidProgram, "%s call to %s has no receiver", kind, target)
		}
		if call.Base, err = m.operand(meth, op.Base); err != nil {
			return nil, err
		}
	}
	for i := range op.Args {
		a, err := m.operand(meth, &op.Args[i])
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, a)
	}
	return call, nil
}
