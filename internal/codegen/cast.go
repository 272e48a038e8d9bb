package codegen

import (
	"github.com/roach88/lowerc/internal/semantic"
)

// boxedInternal is the field of a boxed wrapper holding its primitive.
const boxedInternal = "internal"

// castTo converts value, of type current, to expect. It runs at every
// assignment, return and call-argument boundary.
//
//	expect == current           value
//	primitive P <- box of P     (value) -> internal
//	box of P <- primitive P     new<Box>Constant(value)
//	otherwise                   (expect)value
func (g *Generator) castTo(expect, current *semantic.Type, value string) string {
	if expect == current {
		return value
	}
	if expect.Kind == semantic.TypePrimitive && current.Wraps(expect) {
		return "(" + value + ") -> " + boxedInternal
	}
	if expect.Wraps(current) {
		g.useLibrary(expect.Name)
		return "new" + expect.ShortName() + "Constant(" + value + ")"
	}
	return "(" + cType(expect) + ")" + value
}

// castByValue converts between by-value representations: no pointer is
// involved on either side.
func castByValue(expect, current *semantic.Type, value string) string {
	if expect == current {
		return value
	}
	return "(" + cBase(expect) + ")" + value
}
