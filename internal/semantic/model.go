package semantic

import (
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/ir"
)

// DefaultInlineThreshold is the largest body, in statements, eligible for
// call-site inlining.
const DefaultInlineThreshold = 25

// DefaultLibraryPrefixes name trusted pre-existing code.
var DefaultLibraryPrefixes = []string{"java.", "javax.", "org.vmmagic."}

// Options gates model flags.
type Options struct {
	AllowInline     bool
	ObjectInlining  bool
	InlineThreshold int
	LibraryPrefixes []string
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithOptions sets the option gates.
func WithOptions(o Options) ModelOption {
	return func(m *Model) {
		m.opts = o
	}
}

// WithTypeHook registers a hook run once on every type when it is created.
func WithTypeHook(h func(*Type)) ModelOption {
	return func(m *Model) {
		m.typeHooks = append(m.typeHooks, h)
	}
}

// WithMethodHook registers a hook run once on every method when it is created.
func WithMethodHook(h func(*Method)) ModelOption {
	return func(m *Model) {
		m.methodHooks = append(m.methodHooks, h)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = l
	}
}

// WithSink sets where warnings go.
func WithSink(s *diag.Sink) ModelOption {
	return func(m *Model) {
		m.sink = s
	}
}

// Model is the session's canonical entity table.
type Model struct {
	prog  *ir.Program
	decls map[string]*ir.ClassDecl
	order []string

	classes map[string]*Class
	types   map[string]*Type

	pointsTo map[string]map[string][]string

	opts        Options
	typeHooks   []func(*Type)
	methodHooks []func(*Method)
	logger      *slog.Logger
	sink        *diag.Sink
}

// NewModel creates a model over prog. Nothing is resolved until asked for.
func NewModel(prog *ir.Program, opts ...ModelOption) *Model {
	m := &Model{
		prog:     prog,
		decls:    make(map[string]*ir.ClassDecl, len(prog.Classes)),
		classes:  make(map[string]*Class),
		types:    make(map[string]*Type),
		pointsTo: make(map[string]map[string][]string),
		opts: Options{
			InlineThreshold: DefaultInlineThreshold,
			LibraryPrefixes: DefaultLibraryPrefixes,
		},
	}
	for i := range prog.Classes {
		d := &prog.Classes[i]
		if _, dup := m.decls[d.Name]; dup {
			continue
		}
		m.decls[d.Name] = d
		m.order = append(m.order, d.Name)
	}
	for _, f := range prog.PointsTo {
		byLocal := m.pointsTo[f.Method]
		if byLocal == nil {
			byLocal = make(map[string][]string)
			m.pointsTo[f.Method] = byLocal
		}
		byLocal[f.Local] = f.Types
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.opts.InlineThreshold == 0 {
		m.opts.InlineThreshold = DefaultInlineThreshold
	}
	if m.opts.LibraryPrefixes == nil {
		m.opts.LibraryPrefixes = DefaultLibraryPrefixes
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.sink == nil {
		m.sink = diag.NewSink()
	}
	return m
}

// Program returns the program the model was built from.
func (m *Model) Program() *ir.Program {
	return m.prog
}

// Options returns the option gates in effect.
func (m *Model) Options() Options {
	return m.opts
}

// IsLibrary reports whether name belongs to trusted pre-existing code.
func (m *Model) IsLibrary(name string) bool {
	for _, p := range m.opts.LibraryPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// ResolveType returns the canonical type for an IR type name, creating it
// on first access.
func (m *Model) ResolveType(name string) *Type {
	if name == "" {
		name = "void"
	}
	if t, ok := m.types[name]; ok {
		return t
	}

	var t *Type
	if elem, ok := strings.CutSuffix(name, ArraySuffix); ok {
		t = &Type{Name: name, Kind: TypeArray, Elem: m.ResolveType(elem)}
	} else {
		kind, prim := classifyType(name)
		t = &Type{Name: name, Kind: kind, Primitive: prim}
	}
	m.types[name] = t
	for _, h := range m.typeHooks {
		h(t)
	}
	return t
}

// ResolveClass returns the canonical class named name, building its fields,
// methods and restriction tags from the program on first access. Undeclared
// library classes resolve to empty library stubs; any other undeclared name
// is an error.
func (m *Model) ResolveClass(name string) (*Class, error) {
	if c, ok := m.classes[name]; ok {
		return c, nil
	}

	decl := m.decls[name]
	if decl == nil {
		if !m.IsLibrary(name) {
			return nil, diag.Errorf(diag.ErrCodeUnknownClass, "class %q is not declared", name)
		}
		c := m.newClass(name)
		c.Library = true
		m.classes[name] = c
		return c, nil
	}

	c := m.newClass(name)
	c.superName = decl.Super
	c.Interfaces = decl.Interfaces
	c.Interface = decl.Interface
	c.Abstract = decl.Abstract
	c.Final = decl.Final
	c.Library = m.IsLibrary(name)
	c.Restrictions = decl.Restrictions
	c.Source = decl.Source
	// Memoize before building members so self-referencing signatures resolve.
	m.classes[name] = c

	for _, fd := range decl.Fields {
		c.Fields = append(c.Fields, &Field{
			Owner:     c,
			Name:      fd.Name,
			Type:      m.ResolveType(fd.Type),
			Static:    fd.Static,
			Inlinable: fd.Inlinable && m.opts.ObjectInlining && !fd.Static,
		})
	}
	for i := range decl.Methods {
		md := &decl.Methods[i]
		meth := m.newMethod(c, md.Name, md.Params, md.Return, md.Static)
		meth.Concrete = md.Concrete
		meth.decl = md
		c.addMethod(meth)
		for _, h := range m.methodHooks {
			h(meth)
		}
	}

	m.logger.Debug("resolved class",
		"class", name,
		"fields", len(c.Fields),
		"methods", len(c.Methods),
		"library", c.Library)
	return c, nil
}

func (m *Model) newClass(name string) *Class {
	return &Class{
		Name:  name,
		Type:  m.ResolveType(name),
		model: m,
		bySig: make(map[string]*Method),
	}
}

func (m *Model) newMethod(owner *Class, name string, params []string, ret string, static bool) *Method {
	meth := &Method{
		Owner:       owner,
		Name:        name,
		Return:      m.ResolveType(ret),
		Static:      static,
		Constructor: name == ConstructorName,
		ClassInit:   name == ClassInitName,
	}
	for _, p := range params {
		meth.Params = append(meth.Params, m.ResolveType(p))
	}
	return meth
}

// Prepare is the fixed pre-pass: it resolves every declared class and sets
// the de-facto-final flags. It must run before any body is lowered.
func (m *Model) Prepare() error {
	for _, name := range m.order {
		if _, err := m.ResolveClass(name); err != nil {
			return err
		}
	}

	extended := make(map[string]bool)
	for _, name := range m.order {
		if s := m.decls[name].Super; s != "" {
			extended[s] = true
		}
	}
	for _, name := range m.order {
		c := m.classes[name]
		c.DeFactoFinal = !c.Interface && !c.Abstract && (c.Final || !extended[name])
	}
	return nil
}

// AppClasses returns the declared non-library classes in program order.
func (m *Model) AppClasses() []*Class {
	var out []*Class
	for _, name := range m.order {
		c, err := m.ResolveClass(name)
		if err != nil || c.Library {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Declared reports whether the program declares name.
func (m *Model) Declared(name string) bool {
	_, ok := m.decls[name]
	return ok
}

// PointsTo returns the concrete type names the front end inferred for a
// local of meth, or nil when it inferred nothing.
func (m *Model) PointsTo(meth *Method, local string) []string {
	return m.pointsTo[meth.Key()][local]
}
