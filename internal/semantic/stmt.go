package semantic

// Stmt is a sealed interface over the statement variants.
//
// Implementations: *AssignStmt, *IdentityStmt, *InvokeStmt, *IfStmt,
// *GotoStmt, *TableSwitchStmt, *LookupSwitchStmt, *ReturnStmt,
// *ReturnVoidStmt, *RetStmt, *EnterMonitorStmt, *ExitMonitorStmt,
// *BreakpointStmt, *NopStmt, *ThrowStmt.
type Stmt interface {
	Info() *StmtInfo
	stmt() // sealed marker
}

// StmtInfo is the payload every statement carries.
type StmtInfo struct {
	// Method owns the statement.
	Method *Method

	// Index is the position in the method body.
	Index int

	// Text is the front-end rendering, used in comments.
	Text string

	// Target is set when another statement jumps here or a trap handler
	// starts here.
	Target bool

	// Handler is set when a trap handler starts here.
	Handler bool
}

func (i *StmtInfo) Info() *StmtInfo { return i }

// AssignStmt stores RHS into LHS.
type AssignStmt struct {
	StmtInfo
	LHS Value
	RHS Value
}

// IdentityStmt binds a local to this, a parameter, or a caught exception.
type IdentityStmt struct {
	StmtInfo
	Local *Local
	RHS   Value
}

// InvokeStmt is a call whose result is discarded.
type InvokeStmt struct {
	StmtInfo
	Call *InvokeExpr
}

// IfStmt jumps to Target when Cond holds.
type IfStmt struct {
	StmtInfo
	Cond   *BinopExpr
	Target Stmt
}

// GotoStmt jumps unconditionally.
type GotoStmt struct {
	StmtInfo
	Target Stmt
}

// TableSwitchStmt jumps to Targets[key-Low] for Low <= key <= High.
type TableSwitchStmt struct {
	StmtInfo
	Key     Value
	Low     int
	High    int
	Targets []Stmt
	Default Stmt
}

// LookupSwitchStmt jumps to Targets[i] when key == Values[i].
type LookupSwitchStmt struct {
	StmtInfo
	Key     Value
	Values  []int64
	Targets []Stmt
	Default Stmt
}

// ReturnStmt returns a value.
type ReturnStmt struct {
	StmtInfo
	Value Value
}

// ReturnVoidStmt returns nothing.
type ReturnVoidStmt struct {
	StmtInfo
}

// RetStmt returns from a subroutine. Never lowered.
type RetStmt struct {
	StmtInfo
	Local *Local
}

// EnterMonitorStmt acquires the instance mutex of Value.
type EnterMonitorStmt struct {
	StmtInfo
	Value Value
}

// ExitMonitorStmt releases the instance mutex of Value.
type ExitMonitorStmt struct {
	StmtInfo
	Value Value
}

// BreakpointStmt is a debugger trap. Never lowered.
type BreakpointStmt struct {
	StmtInfo
}

// NopStmt does nothing.
type NopStmt struct {
	StmtInfo
}

// ThrowStmt raises Value. Exception propagation is unsupported.
type ThrowStmt struct {
	StmtInfo
	Value Value
}

func (*AssignStmt) stmt()       {}
func (*IdentityStmt) stmt()     {}
func (*InvokeStmt) stmt()       {}
func (*IfStmt) stmt()           {}
func (*GotoStmt) stmt()         {}
func (*TableSwitchStmt) stmt()  {}
func (*LookupSwitchStmt) stmt() {}
func (*ReturnStmt) stmt()       {}
func (*ReturnVoidStmt) stmt()   {}
func (*RetStmt) stmt()          {}
func (*EnterMonitorStmt) stmt() {}
func (*ExitMonitorStmt) stmt()  {}
func (*BreakpointStmt) stmt()   {}
func (*NopStmt) stmt()          {}
func (*ThrowStmt) stmt()        {}

// JumpTargets returns the statements s may jump to, in reference order.
func JumpTargets(s Stmt) []Stmt {
	switch s := s.(type) {
	case *IfStmt:
		return []Stmt{s.Target}
	case *GotoStmt:
		return []Stmt{s.Target}
	case *TableSwitchStmt:
		return append(append([]Stmt{}, s.Targets...), s.Default)
	case *LookupSwitchStmt:
		return append(append([]Stmt{}, s.Targets...), s.Default)
	}
	return nil
}
