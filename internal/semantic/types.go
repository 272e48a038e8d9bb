package semantic

import "strings"

// TypeKind is the variant of a Type.
type TypeKind int

const (
	TypeVoid TypeKind = iota + 1
	TypePrimitive
	TypeBoxed
	TypeReference
	TypeArray
	TypeMagic
	TypeNull
)

// String returns the kind name.
func (k TypeKind) String() string {
	switch k {
	case TypeVoid:
		return "void"
	case TypePrimitive:
		return "primitive"
	case TypeBoxed:
		return "boxed"
	case TypeReference:
		return "reference"
	case TypeArray:
		return "array"
	case TypeMagic:
		return "magic"
	case TypeNull:
		return "null"
	}
	return "unknown"
}

// ArraySuffix is appended to an element type's name to name its array type.
const ArraySuffix = "[]"

// MagicArraySuffix names the magic array types.
const MagicArraySuffix = "Array"

// Magic types are exempt from the common object header.
var magicTypes = []string{
	"org.vmmagic.unboxed.Address",
	"org.vmmagic.unboxed.Extent",
	"org.vmmagic.unboxed.ObjectReference",
	"org.vmmagic.unboxed.Offset",
	"org.vmmagic.unboxed.Word",
}

var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"char":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
}

// boxed maps wrapper class names to the primitive they wrap.
var boxed = map[string]string{
	"java.lang.Boolean":   "boolean",
	"java.lang.Byte":      "byte",
	"java.lang.Character": "char",
	"java.lang.Short":     "short",
	"java.lang.Integer":   "int",
	"java.lang.Long":      "long",
	"java.lang.Float":     "float",
	"java.lang.Double":    "double",
}

// Type is a canonical type. Compare types by pointer.
type Type struct {
	// Name is the IR spelling: "int", "app.Node", "app.Node[]".
	Name string

	Kind TypeKind

	// Elem is the element type of an array.
	Elem *Type

	// Primitive names the wrapped primitive of a boxed type.
	Primitive string

	// Intrinsic is set by substitution when the type has a native
	// equivalent. Native is then its spelling in the target language.
	Intrinsic bool
	Native    string

	// NativePrimitive marks an intrinsic type represented without a pointer.
	NativePrimitive bool
}

// IsPrimitive reports whether values of t are represented by value.
func (t *Type) IsPrimitive() bool {
	return t.Kind == TypePrimitive || t.NativePrimitive
}

// IsMagic reports whether t is a magic low-level type.
func (t *Type) IsMagic() bool {
	return t.Kind == TypeMagic
}

// IsVoid reports whether t is void.
func (t *Type) IsVoid() bool {
	return t.Kind == TypeVoid
}

// IsReference reports whether values of t are pointer-represented.
func (t *Type) IsReference() bool {
	switch t.Kind {
	case TypeReference, TypeBoxed, TypeArray, TypeNull:
		return !t.NativePrimitive
	}
	return false
}

// IsFloatingPoint reports whether t is float or double.
func (t *Type) IsFloatingPoint() bool {
	return t.Kind == TypePrimitive && (t.Name == "float" || t.Name == "double")
}

// Wraps reports whether t is the boxed wrapper of primitive p.
func (t *Type) Wraps(p *Type) bool {
	return t.Kind == TypeBoxed && p.Kind == TypePrimitive && t.Primitive == p.Name
}

// ClassName returns the class a reference or boxed type names, or "".
func (t *Type) ClassName() string {
	switch t.Kind {
	case TypeReference, TypeBoxed:
		return t.Name
	}
	return ""
}

// ShortName is the last dotted segment of the name.
func (t *Type) ShortName() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

func (t *Type) String() string {
	return t.Name
}

// classifyType decides the kind of a non-array type name.
func classifyType(name string) (TypeKind, string) {
	switch {
	case name == "" || name == "void":
		return TypeVoid, ""
	case name == "null":
		return TypeNull, ""
	case primitives[name]:
		return TypePrimitive, ""
	}
	if p, ok := boxed[name]; ok {
		return TypeBoxed, p
	}
	if isMagicName(name) {
		return TypeMagic, ""
	}
	return TypeReference, ""
}

func isMagicName(name string) bool {
	for _, m := range magicTypes {
		if name == m || name == m+MagicArraySuffix {
			return true
		}
	}
	return false
}
