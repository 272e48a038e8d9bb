package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/lowerc/internal/semantic"
)

// Fixed C spellings shared with the runtime unit.
const (
	commonInstance = "RJava_Common_Instance"
	commonClass    = "RJava_Common_Class"
	interfaceList  = "RJava_Interface_List"
	arrayType      = "RJava_Array"

	classStructField  = "class_struct"
	instanceMutex     = "instance_mutex"
	instanceHeader    = "instance_header"
	classHeader       = "class_header"
	interfacesField   = "interfaces"
	classSuffix       = "_class"
	classInstance     = "_class_instance"
	itableSuffix      = "_itable"
	thisParameter     = "this_parameter"
	formalParameter   = "parameter"
	constructorCName  = "rjinit"
	classInitCName    = "rjclinit"
	arrayTokenSuffix  = "_array"
	classInitFunction = "rjava_class_init"
)

// primitiveC maps primitive IR types to their C spelling.
var primitiveC = map[string]string{
	"boolean": "bool",
	"byte":    "int8_t",
	"char":    "char",
	"short":   "int16_t",
	"int":     "int32_t",
	"long":    "int64_t",
	"float":   "float",
	"double":  "double",
}

var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true, "bool": true, "main": true,
	"argc": true,
}

// cIdent mangles a dotted name into a C identifier, reversibly, after NFC
// normalization:
//
//	[A-Za-z0-9]               kept
//	'.'                       '_'
//	'_'                       "_1"
//	anything else, or a digit
//	starting a segment        "_0" + four hex digits per UTF-16 unit
//
// An underscore in the output is therefore a separator or starts an
// escape, so distinct names never share a spelling.
func cIdent(s string) string {
	s = norm.NFC.String(s)
	if s == "" {
		return "_0"
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := '.'
	for _, r := range s {
		digitStart := prev == '.' && r >= '0' && r <= '9'
		prev = r
		switch {
		case r == '.':
			b.WriteByte('_')
		case r == '_':
			b.WriteString("_1")
		case isAlnum(r) && !digitStart:
			b.WriteRune(r)
		default:
			for _, u := range utf16.Encode([]rune{r}) {
				fmt.Fprintf(&b, "_0%04x", u)
			}
		}
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// memberName spells a field or local, avoiding C keywords and the names the
// generator reserves.
func memberName(s string) string {
	id := cIdent(s)
	if cKeywords[id] || strings.HasPrefix(id, formalParameter) {
		return id + "_"
	}
	return id
}

// className is the C struct name of a class: "app.Cat" -> "app_Cat".
func className(name string) string {
	return cIdent(name)
}

// guardName is the include guard of a header.
func guardName(name string) string {
	return strings.ToUpper(className(name)) + "_H"
}

// typeToken spells a parameter type inside a function name.
func typeToken(t *semantic.Type) string {
	switch {
	case t.Kind == semantic.TypePrimitive:
		return primitiveC[t.Name]
	case t.Kind == semantic.TypeArray:
		return typeToken(t.Elem) + arrayTokenSuffix
	}
	return className(t.Name)
}

// slotName names a method's function-pointer field: the method name
// followed by one token per parameter type.
func slotName(m *semantic.Method) string {
	var b strings.Builder
	switch {
	case m.Constructor:
		b.WriteString(constructorCName)
	case m.ClassInit:
		b.WriteString(classInitCName)
	default:
		b.WriteString(cIdent(m.Name))
	}
	for _, p := range m.Params {
		b.WriteByte('_')
		b.WriteString(typeToken(p))
	}
	return b.String()
}

// funcName is the C function implementing m.
func funcName(m *semantic.Method) string {
	if m.Main {
		return "main"
	}
	return className(m.Owner.Name) + "_" + slotName(m)
}

// staticFieldName is the C global holding a static field.
func staticFieldName(f *semantic.Field) string {
	return className(f.Owner.Name) + "_" + cIdent(f.Name)
}

func paramName(i int) string {
	return formalParameter + strconv.Itoa(i)
}

// cType spells t as a C declaration type. Reference types are pointers;
// primitives, intrinsic natives and magic types are by value.
func cType(t *semantic.Type) string {
	switch {
	case t.Native != "":
		return t.Native
	case t.Kind == semantic.TypeVoid:
		return "void"
	case t.Kind == semantic.TypePrimitive:
		return primitiveC[t.Name]
	case t.Kind == semantic.TypeMagic:
		return className(t.Name)
	case t.Kind == semantic.TypeArray:
		return arrayType + "*"
	case t.Kind == semantic.TypeNull:
		return "void*"
	}
	return className(t.Name) + "*"
}

// cBase spells t without the pointer: the struct an instance occupies.
func cBase(t *semantic.Type) string {
	return strings.TrimSuffix(cType(t), "*")
}

// cString renders text as a C string literal.
func cString(text string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range text {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, "\\%03o", r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
