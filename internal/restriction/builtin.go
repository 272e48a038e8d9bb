package restriction

import (
	"github.com/roach88/lowerc/internal/semantic"
)

// Built-in restriction names.
const (
	NoExceptions            = "NoExceptions"
	NoMonitors              = "NoMonitors"
	NoFloatingPoint         = "NoFloatingPoint"
	NoStaticMutableState    = "NoStaticMutableState"
	NoAllocationOutsideInit = "NoAllocationOutsideInit"

	// RJavaCore is NoExceptions then NoFloatingPoint.
	RJavaCore = "RJavaCore"
)

// DefaultRegistry returns a registry holding the built-in policies.
// Callers may register more.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(NoExceptions, checkNoExceptions)
	r.MustRegister(NoMonitors, checkNoMonitors)
	r.MustRegister(NoFloatingPoint, checkNoFloatingPoint)
	r.MustRegister(NoStaticMutableState, checkNoStaticMutableState)
	r.MustRegister(NoAllocationOutsideInit, checkNoAllocationOutsideInit)
	r.MustRegister(RJavaCore, Ruleset(r, NoExceptions, NoFloatingPoint))
	return r
}

// eachStmt builds every translatable body in c and calls fn per statement.
func eachStmt(c *semantic.Class, ctx *Context, fn func(*semantic.Method, semantic.Stmt)) error {
	for _, meth := range c.Methods {
		if !meth.Concrete || meth.Intrinsic {
			continue
		}
		if err := ctx.Model.BuildBody(meth); err != nil {
			return err
		}
		for _, s := range meth.Body {
			fn(meth, s)
		}
	}
	return nil
}

func checkNoExceptions(c *semantic.Class, ctx *Context) (bool, error) {
	pass := true
	err := eachStmt(c, ctx, func(meth *semantic.Method, s semantic.Stmt) {
		switch {
		case s.Info().Handler:
			ctx.Violate(c, "%s: exception handler at statement %d", meth, s.Info().Index)
			pass = false
		default:
			if _, ok := s.(*semantic.ThrowStmt); ok {
				ctx.Violate(c, "%s: throw at statement %d", meth, s.Info().Index)
				pass = false
			}
		}
	})
	return pass, err
}

func checkNoMonitors(c *semantic.Class, ctx *Context) (bool, error) {
	pass := true
	err := eachStmt(c, ctx, func(meth *semantic.Method, s semantic.Stmt) {
		switch s.(type) {
		case *semantic.EnterMonitorStmt, *semantic.ExitMonitorStmt:
			ctx.Violate(c, "%s: monitor at statement %d", meth, s.Info().Index)
			pass = false
		}
	})
	return pass, err
}

func checkNoFloatingPoint(c *semantic.Class, ctx *Context) (bool, error) {
	pass := true
	for _, f := range c.Fields {
		if f.Type.IsFloatingPoint() {
			ctx.Violate(c, "field %s has type %s", f.Name, f.Type)
			pass = false
		}
	}
	for _, meth := range c.Methods {
		if meth.Return.IsFloatingPoint() {
			ctx.Violate(c, "%s returns %s", meth, meth.Return)
			pass = false
		}
		for i, p := range meth.Params {
			if p.IsFloatingPoint() {
				ctx.Violate(c, "%s parameter %d has type %s", meth, i, p)
				pass = false
			}
		}
	}
	err := eachStmt(c, ctx, func(meth *semantic.Method, s semantic.Stmt) {
		found := false
		semantic.WalkValues(s, func(v semantic.Value) {
			if t := v.Type(); t != nil && t.IsFloatingPoint() {
				found = true
			}
		})
		if found {
			ctx.Violate(c, "%s: floating-point value at statement %d", meth, s.Info().Index)
			pass = false
		}
	})
	return pass, err
}

func checkNoStaticMutableState(c *semantic.Class, ctx *Context) (bool, error) {
	pass := true
	err := eachStmt(c, ctx, func(meth *semantic.Method, s semantic.Stmt) {
		if meth.ClassInit {
			return
		}
		a, ok := s.(*semantic.AssignStmt)
		if !ok {
			return
		}
		if ref, ok := a.LHS.(*semantic.StaticFieldRef); ok {
			ctx.Violate(c, "%s: writes static field %s.%s at statement %d",
				meth, ref.Field.Owner.Name, ref.Field.Name, s.Info().Index)
			pass = false
		}
	})
	return pass, err
}

func checkNoAllocationOutsideInit(c *semantic.Class, ctx *Context) (bool, error) {
	pass := true
	err := eachStmt(c, ctx, func(meth *semantic.Method, s semantic.Stmt) {
		if meth.Constructor || meth.ClassInit {
			return
		}
		allocates := false
		semantic.WalkValues(s, func(v semantic.Value) {
			switch v.(type) {
			case *semantic.NewExpr, *semantic.NewArrayExpr, *semantic.NewMultiArrayExpr:
				allocates = true
			}
		})
		if allocates {
			ctx.Violate(c, "%s: allocation at statement %d", meth, s.Info().Index)
			pass = false
		}
	})
	return pass, err
}
