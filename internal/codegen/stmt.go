package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/intrinsic"
	"github.com/roach88/lowerc/internal/semantic"
)

const indent = "  "

// lowerStmt renders one statement as indented C lines. Statements other
// code jumps to are prefixed with their label.
func (g *Generator) lowerStmt(s semantic.Stmt) (string, error) {
	var code string
	if r := intrinsic.SubstituteStmt(s, g.model, g); !r.Generic {
		g.sink.Inc(diag.CounterIntrinsicRewrites)
		code = r.Code
	} else {
		var err error
		if code, err = g.stmtCode(s); err != nil {
			return "", err
		}
	}

	prefix := ""
	if s.Info().Target && !isHandlerBinding(s) {
		prefix = g.labels.label(s) + ": "
	}
	return indent + prefix + code + "\n", nil
}

// isHandlerBinding reports whether s binds a caught exception. Such
// statements render their own label.
func isHandlerBinding(s semantic.Stmt) bool {
	id, ok := s.(*semantic.IdentityStmt)
	if !ok {
		return false
	}
	_, caught := id.RHS.(*semantic.CaughtExceptionRef)
	return caught
}

func (g *Generator) stmtCode(s semantic.Stmt) (string, error) {
	switch s := s.(type) {
	case *semantic.AssignStmt:
		return g.assign(s)

	case *semantic.IdentityStmt:
		name := g.LocalName(s.Local)
		switch rhs := s.RHS.(type) {
		case *semantic.ParamRef:
			return name + " = " + paramName(rhs.Index) + ";", nil
		case *semantic.ThisRef:
			return name + " = " + thisParameter + ";", nil
		case *semantic.CaughtExceptionRef:
			return g.labels.label(s) + ": " + intrinsic.Comment("exception handler") + ";", nil
		}
		return "", diag.Incomplete(fmt.Sprintf("identity binding of %T", s.RHS), s.Text)

	case *semantic.InvokeStmt:
		call, err := g.invoke(s.Call)
		if err != nil {
			return "", err
		}
		return call + ";", nil

	case *semantic.IfStmt:
		cond, err := g.binop(s.Cond)
		if err != nil {
			return "", err
		}
		return "if (" + cond + ") goto " + g.labels.label(s.Target) + ";", nil

	case *semantic.GotoStmt:
		return "goto " + g.labels.label(s.Target) + ";", nil

	case *semantic.TableSwitchStmt:
		cases := make([]string, len(s.Targets))
		for i := range s.Targets {
			cases[i] = strconv.Itoa(s.Low + i)
		}
		return g.switchCode(s.Key, cases, s.Targets, s.Default)

	case *semantic.LookupSwitchStmt:
		cases := make([]string, len(s.Values))
		for i, v := range s.Values {
			cases[i] = strconv.FormatInt(v, 10)
		}
		return g.switchCode(s.Key, cases, s.Targets, s.Default)

	case *semantic.ReturnStmt:
		v, err := g.pointer(s.Value)
		if err != nil {
			return "", err
		}
		return "return " + g.castTo(s.Method.Return, s.Value.Type(), v) + ";", nil

	case *semantic.ReturnVoidStmt:
		if s.Method.Main {
			return "return 0;", nil
		}
		return "return;", nil

	case *semantic.EnterMonitorStmt:
		return g.monitor("pthread_mutex_lock", s.Value)

	case *semantic.ExitMonitorStmt:
		return g.monitor("pthread_mutex_unlock", s.Value)

	case *semantic.NopStmt:
		return "; " + intrinsic.Comment("nop"), nil

	case *semantic.ThrowStmt:
		text := s.Text
		if text == "" {
			v, err := g.expr(s.Value)
			if err != nil {
				return "", err
			}
			text = "throw " + v
		}
		return intrinsic.Comment(text), nil

	case *semantic.RetStmt:
		return "", diag.Incomplete("ret statement", s.Text)

	case *semantic.BreakpointStmt:
		return "", diag.Incomplete("breakpoint statement", s.Text)
	}
	return "", diag.Incomplete(fmt.Sprintf("statement %T", s), s.Info().Text)
}

// switchCode renders a jump table:
//
//	switch (k) {
//	    case 1: goto label0;
//	    default: goto label1;
//	  }
func (g *Generator) switchCode(key semantic.Value, cases []string, targets []semantic.Stmt, def semantic.Stmt) (string, error) {
	k, err := g.expr(key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("switch (" + k + ") {\n")
	for i, c := range cases {
		b.WriteString(indent + indent + "case " + c + ": goto " + g.labels.label(targets[i]) + ";\n")
	}
	b.WriteString(indent + indent + "default: goto " + g.labels.label(def) + ";\n")
	b.WriteString(indent + "}")
	return b.String(), nil
}

// monitor locks or unlocks the mutex in v's common header. There is no
// reentrancy tracking: a thread entering a monitor it holds deadlocks.
func (g *Generator) monitor(fn string, v semantic.Value) (string, error) {
	x, err := g.pointer(v)
	if err != nil {
		return "", err
	}
	return fn + "(&(((" + commonInstance + "*) " + x + ") -> " + instanceMutex + "));", nil
}

// assign lowers a store. With object inlining, by-value locals and
// inlinable fields hold structs, so the store copies through them:
//
//	by-value <- by-value   lhs = rhs
//	by-value <- pointer    lhs = *(rhs)
//	pointer  <- field      lhs = &(rhs)
//	pointer  <- by-value   lhs = &rhs
func (g *Generator) assign(s *semantic.AssignStmt) (string, error) {
	lhs, err := g.expr(s.LHS)
	if err != nil {
		return "", err
	}
	lt, rt := s.LHS.Type(), s.RHS.Type()

	lval := isByValueLocal(s.LHS) || isInlinedField(s.LHS)
	rlocal := isByValueLocal(s.RHS)
	rval := rlocal || isInlinedField(s.RHS)

	if n, ok := s.RHS.(*semantic.NewExpr); ok && isByValueLocal(s.LHS) {
		return g.initInPlace(lhs, n.T)
	}

	rhs, err := g.expr(s.RHS)
	if err != nil {
		return "", err
	}
	switch {
	case lval && rval:
		return lhs + " = " + castByValue(lt, rt, rhs) + ";", nil
	case lval:
		return lhs + " = *(" + g.castTo(lt, rt, rhs) + ");", nil
	case rlocal:
		return lhs + " = " + g.castTo(lt, rt, "&"+rhs) + ";", nil
	case rval:
		return lhs + " = &(" + rhs + ");", nil
	}
	return lhs + " = " + g.castTo(lt, rt, rhs) + ";", nil
}

func isByValueLocal(v semantic.Value) bool {
	l, ok := v.(*semantic.LocalRef)
	return ok && l.Local.ByValue
}

func isInlinedField(v semantic.Value) bool {
	f, ok := v.(*semantic.FieldRef)
	return ok && inlined(f.Field)
}

// inlined reports whether f is embedded by value in its owner's layout.
func inlined(f *semantic.Field) bool {
	return f.Inlinable && !f.Static && f.Type.Kind == semantic.TypeReference && !f.Type.NativePrimitive
}
