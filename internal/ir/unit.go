package ir

// Unit ops as emitted by the front end.
const (
	OpAssign       = "assign"
	OpIdentity     = "identity"
	OpInvoke       = "invoke"
	OpIf           = "if"
	OpGoto         = "goto"
	OpTableSwitch  = "table_switch"
	OpLookupSwitch = "lookup_switch"
	OpReturn       = "return"
	OpReturnVoid   = "return_void"
	OpRet          = "ret"
	OpEnterMonitor = "enter_monitor"
	OpExitMonitor  = "exit_monitor"
	OpBreakpoint   = "breakpoint"
	OpNop          = "nop"
	OpThrow        = "throw"
)

// Operand kinds.
const (
	KindLocal           = "local"
	KindField           = "field"
	KindStaticField     = "static_field"
	KindArray           = "array"
	KindInvoke          = "invoke"
	KindBinop           = "binop"
	KindConst           = "const"
	KindNew             = "new"
	KindNewArray        = "new_array"
	KindNewMultiArray   = "new_multi_array"
	KindCast            = "cast"
	KindInstanceOf      = "instanceof"
	KindLength          = "length"
	KindNeg             = "neg"
	KindThis            = "this"
	KindParam           = "param"
	KindCaughtException = "caught_exception"
)

// Invoke flavors.
const (
	InvokeVirtual   = "virtual"
	InvokeSpecial   = "special"
	InvokeInterface = "interface"
	InvokeStatic    = "static"
)

// Unit is one three-address instruction.
//
// Which fields are meaningful depends on Op:
//
//	assign          LHS = RHS
//	identity        LHS (a local) = RHS (this | param | caught_exception)
//	invoke          Value (an invoke operand)
//	if              Value (a binop condition), Target
//	goto            Target
//	table_switch    Value (key), Low, High, Targets, Default
//	lookup_switch   Value (key), Lookup, Targets, Default
//	return          Value
//	ret             Value (a local)
//	enter_monitor   Value
//	exit_monitor    Value
//	throw           Value
type Unit struct {
	Op      string   `json:"op"`
	LHS     *Operand `json:"lhs,omitempty"`
	RHS     *Operand `json:"rhs,omitempty"`
	Value   *Operand `json:"value,omitempty"`
	Target  int      `json:"target,omitempty"`
	Targets []int    `json:"targets,omitempty"`
	Default int      `json:"default,omitempty"`
	Low     int      `json:"low,omitempty"`
	High    int      `json:"high,omitempty"`
	Lookup  []int64  `json:"lookup,omitempty"`
	Text    string   `json:"text,omitempty"` // front-end rendering, used in comments
}

// Operand is a flat encoding of every value shape the front end produces.
//
//	local            Name, Type
//	field            Base (local), Class, Name, Type
//	static_field     Class, Name, Type
//	array            Base, Index, Type (element)
//	invoke           Invoke, Class, Method, Params, Return, Base (absent for static), Args
//	binop            Op, Left, Right, Type
//	const            Value, Type ("null" type for null)
//	new              Type
//	new_array        Type (element), Size
//	new_multi_array  Type (base element), Sizes
//	cast             Type (target), Operand
//	instanceof       Type (checked), Operand
//	length           Operand
//	neg              Operand
//	this             Type
//	param            Param, Type
//	caught_exception Type
type Operand struct {
	Kind    string    `json:"kind"`
	Name    string    `json:"name,omitempty"`
	Type    string    `json:"type,omitempty"`
	Class   string    `json:"class,omitempty"`
	Base    *Operand  `json:"base,omitempty"`
	Index   *Operand  `json:"index,omitempty"`
	Invoke  string    `json:"invoke,omitempty"`
	Method  string    `json:"method,omitempty"`
	Params  []string  `json:"params,omitempty"`
	Return  string    `json:"return,omitempty"`
	Args    []Operand `json:"args,omitempty"`
	Op      string    `json:"op,omitempty"`
	Left    *Operand  `json:"left,omitempty"`
	Right   *Operand  `json:"right,omitempty"`
	Value   string    `json:"value,omitempty"`
	Size    *Operand  `json:"size,omitempty"`
	Sizes   []Operand `json:"sizes,omitempty"`
	Operand *Operand  `json:"operand,omitempty"`
	Param   int       `json:"param,omitempty"`
}
