package semantic

// WalkValues calls fn on every value s mentions, outermost first.
func WalkValues(s Stmt, fn func(Value)) {
	var visit func(v Value)
	visit = func(v Value) {
		if v == nil {
			return
		}
		fn(v)
		switch v := v.(type) {
		case *FieldRef:
			visit(v.Base)
		case *ArrayRef:
			visit(v.Base)
			visit(v.Index)
		case *InvokeExpr:
			visit(v.Base)
			for _, a := range v.Args {
				visit(a)
			}
		case *BinopExpr:
			visit(v.Left)
			visit(v.Right)
		case *NewArrayExpr:
			visit(v.Size)
		case *NewMultiArrayExpr:
			for _, sz := range v.Sizes {
				visit(sz)
			}
		case *CastExpr:
			visit(v.Op)
		case *InstanceOfExpr:
			visit(v.Op)
		case *LengthExpr:
			visit(v.Op)
		case *NegExpr:
			visit(v.Op)
		}
	}

	switch s := s.(type) {
	case *AssignStmt:
		visit(s.LHS)
		visit(s.RHS)
	case *IdentityStmt:
		visit(s.RHS)
	case *InvokeStmt:
		visit(s.Call)
	case *IfStmt:
		visit(s.Cond)
	case *TableSwitchStmt:
		visit(s.Key)
	case *LookupSwitchStmt:
		visit(s.Key)
	case *ReturnStmt:
		visit(s.Value)
	case *EnterMonitorStmt:
		visit(s.Value)
	case *ExitMonitorStmt:
		visit(s.Value)
	case *ThrowStmt:
		visit(s.Value)
	}
}
