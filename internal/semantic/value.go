package semantic

// Value is a sealed interface over the expression variants.
//
// Implementations: *LocalRef, *FieldRef, *StaticFieldRef, *ArrayRef,
// *InvokeExpr, *BinopExpr, *Const, *NewExpr, *NewArrayExpr,
// *NewMultiArrayExpr, *CastExpr, *InstanceOfExpr, *LengthExpr, *NegExpr,
// *ThisRef, *ParamRef, *CaughtExceptionRef.
type Value interface {
	Type() *Type
	value() // sealed marker
}

// InvokeKind is the dispatch flavor of a call.
type InvokeKind int

const (
	InvokeVirtual InvokeKind = iota + 1
	InvokeSpecial
	InvokeInterface
	InvokeStatic
)

func (k InvokeKind) String() string {
	switch k {
	case InvokeVirtual:
		return "virtual"
	case InvokeSpecial:
		return "special"
	case InvokeInterface:
		return "interface"
	case InvokeStatic:
		return "static"
	}
	return "unknown"
}

// LocalRef reads or writes a local.
type LocalRef struct {
	Local *Local
}

// FieldRef accesses an instance field through Base.
type FieldRef struct {
	Base  Value
	Field *Field
}

// StaticFieldRef accesses a static field.
type StaticFieldRef struct {
	Field *Field
}

// ArrayRef accesses an array element.
type ArrayRef struct {
	Base  Value
	Index Value
	Elem  *Type
}

// InvokeExpr is a call. Class is the class the call site names; Method is
// the declaration the name resolves to, possibly in a superclass.
type InvokeExpr struct {
	Kind   InvokeKind
	Class  *Class
	Method *Method
	Base   Value // nil for static calls
	Args   []Value
}

// BinopExpr is a binary, comparison or shift expression. Op is the IR
// operator spelling ("+", "<", "cmpl", ">>>", ...).
type BinopExpr struct {
	Op    string
	Left  Value
	Right Value
	T     *Type
}

// Const is a literal. Text is its target spelling.
type Const struct {
	Text string
	T    *Type
}

// NewExpr allocates an instance.
type NewExpr struct {
	T *Type
}

// NewArrayExpr allocates a one-dimensional array.
type NewArrayExpr struct {
	Elem *Type
	Size Value
	T    *Type
}

// NewMultiArrayExpr allocates a multi-dimensional array.
type NewMultiArrayExpr struct {
	Base  *Type
	Sizes []Value
	T     *Type
}

// CastExpr converts Op to To.
type CastExpr struct {
	To *Type
	Op Value
}

// InstanceOfExpr tests whether Op is an instance of Check.
type InstanceOfExpr struct {
	Check *Type
	Op    Value
	T     *Type
}

// LengthExpr is the length of an array.
type LengthExpr struct {
	Op Value
	T  *Type
}

// NegExpr negates Op.
type NegExpr struct {
	Op Value
}

// ThisRef is the receiver, valid only on the right of an identity statement.
type ThisRef struct {
	T *Type
}

// ParamRef is the Index-th formal parameter, valid only on the right of an
// identity statement.
type ParamRef struct {
	Index int
	T     *Type
}

// CaughtExceptionRef is the exception a handler receives.
type CaughtExceptionRef struct {
	T *Type
}

func (v *LocalRef) Type() *Type           { return v.Local.Type }
func (v *FieldRef) Type() *Type           { return v.Field.Type }
func (v *StaticFieldRef) Type() *Type     { return v.Field.Type }
func (v *ArrayRef) Type() *Type           { return v.Elem }
func (v *InvokeExpr) Type() *Type         { return v.Method.Return }
func (v *BinopExpr) Type() *Type          { return v.T }
func (v *Const) Type() *Type              { return v.T }
func (v *NewExpr) Type() *Type            { return v.T }
func (v *NewArrayExpr) Type() *Type       { return v.T }
func (v *NewMultiArrayExpr) Type() *Type  { return v.T }
func (v *CastExpr) Type() *Type           { return v.To }
func (v *InstanceOfExpr) Type() *Type     { return v.T }
func (v *LengthExpr) Type() *Type         { return v.T }
func (v *NegExpr) Type() *Type            { return v.Op.Type() }
func (v *ThisRef) Type() *Type            { return v.T }
func (v *ParamRef) Type() *Type           { return v.T }
func (v *CaughtExceptionRef) Type() *Type { return v.T }

func (*LocalRef) value()           {}
func (*FieldRef) value()           {}
func (*StaticFieldRef) value()     {}
func (*ArrayRef) value()           {}
func (*InvokeExpr) value()         {}
func (*BinopExpr) value()          {}
func (*Const) value()              {}
func (*NewExpr) value()            {}
func (*NewArrayExpr) value()       {}
func (*NewMultiArrayExpr) value()  {}
func (*CastExpr) value()           {}
func (*InstanceOfExpr) value()     {}
func (*LengthExpr) value()         {}
func (*NegExpr) value()            {}
func (*ThisRef) value()            {}
func (*ParamRef) value()           {}
func (*CaughtExceptionRef) value() {}
