// Package intrinsic rewrites a fixed set of standard-library shapes into
// native equivalents before generic lowering.
//
// Types and methods are rewritten in place through model hooks, once, when
// the model first creates them. Statements are never mutated: SubstituteStmt
// answers either "lower generically" or "emit this code".
package intrinsic

import (
	"fmt"
	"strings"

	"github.com/roach88/lowerc/internal/semantic"
)

// Well-known names.
const (
	ObjectClass   = "java.lang.Object"
	StringClass   = "java.lang.String"
	StringNative  = "RJAVA_STR"
	BooleanType   = "boolean"
	BooleanNative = "bool"

	// ArgvHelper converts the platform argument vector into a runtime array.
	ArgvHelper = "rjava_c_array_to_rjava_array"
)

// Namer spells locals in the target language.
type Namer interface {
	LocalName(l *semantic.Local) string
}

// Result is the outcome of statement substitution. When Generic is set the
// generator lowers the statement itself; otherwise it emits Code verbatim.
type Result struct {
	Code    string
	Generic bool
}

// generic is the result for statements substitution leaves alone.
var generic = Result{Generic: true}

// ModelOptions returns the hooks that apply type and method substitution.
func ModelOptions() []semantic.ModelOption {
	return []semantic.ModelOption{
		semantic.WithTypeHook(SubstituteType),
		semantic.WithMethodHook(SubstituteMethod),
	}
}

// SubstituteType rewrites the string type into a primitive-like native
// handle and the boolean type into the native boolean. Idempotent.
func SubstituteType(t *semantic.Type) {
	if t.Intrinsic {
		return
	}
	switch t.Name {
	case StringClass:
		t.Intrinsic = true
		t.Native = StringNative
		t.NativePrimitive = true
	case BooleanType:
		t.Intrinsic = true
		t.Native = BooleanNative
	}
}

// SubstituteMethod marks methods of the universal base and the string class
// intrinsic: calls into them are rewritten or routed to the runtime, so
// they never get a body. Idempotent.
func SubstituteMethod(m *semantic.Method) {
	switch m.Owner.Name {
	case ObjectClass, StringClass:
		m.Intrinsic = true
	}
}

// SubstituteStmt decides whether s has a native replacement.
//
// Constructor chaining into the universal base becomes a comment, and so
// does a virtual call on the base's methods whose sole possible target is
// the base itself: no application subtype of the receiver overrides it.
// The entry point's argument-vector binding becomes a runtime conversion
// of argc/argv.
func SubstituteStmt(s semantic.Stmt, m *semantic.Model, names Namer) Result {
	switch s := s.(type) {
	case *semantic.InvokeStmt:
		call := s.Call
		if call.Method.Owner.Name != ObjectClass {
			break
		}
		switch call.Kind {
		case semantic.InvokeVirtual:
			if len(m.AppOverrides(m.StaticReceiver(call), call.Method.Signature())) > 0 {
				break
			}
			fallthrough
		case semantic.InvokeSpecial:
			text := s.Text
			if text == "" {
				text = call.Method.String()
			}
			return Result{Code: Comment(text)}
		}

	case *semantic.IdentityStmt:
		p, ok := s.RHS.(*semantic.ParamRef)
		if ok && p.Index == 0 && s.Method != nil && s.Method.Main {
			return Result{Code: fmt.Sprintf(
				"%s = %s(argc - 1, (int64_t)sizeof(char*), parameter0 + 1);",
				names.LocalName(s.Local), ArgvHelper)}
		}
	}
	return generic
}

// Comment wraps text in a C block comment, defusing any terminator inside.
func Comment(text string) string {
	return "/* " + strings.ReplaceAll(text, "*/", "* /") + " */"
}
