package codegen

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/intrinsic"
	"github.com/roach88/lowerc/internal/semantic"
)

// Unit is one emitted target source file.
type Unit struct {
	Name string
	Text string
}

// Option configures a Generator.
type Option func(*Generator)

// WithDevirtualization toggles points-to based call specialization.
// Enabled by default.
func WithDevirtualization(on bool) Option {
	return func(g *Generator) {
		g.devirtualize = on
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// Generator lowers one session's classes. It is not safe for concurrent
// use and must not be reused across sessions.
type Generator struct {
	model        *semantic.Model
	sink         *diag.Sink
	logger       *slog.Logger
	devirtualize bool

	labels    *labeler
	work      *worklist
	classes   map[*semantic.Class]*classOut
	order     []*semantic.Class
	libraries []string
	libSeen   map[string]bool
	entry     *semantic.Method
	excluded  map[*semantic.Class]bool
	err       *diag.InternalError // first reach into an excluded class

	started  bool
	finished bool
}

// classOut is everything emitted for one application class.
type classOut struct {
	class     *semantic.Class
	source    string
	requested bool

	// funcs holds lowered definitions, keyed by method.
	funcs map[*semantic.Method]string
}

// New creates a generator for m. Violations, warnings and counters go to
// sink.
func New(m *semantic.Model, sink *diag.Sink, opts ...Option) *Generator {
	g := &Generator{
		model:        m,
		sink:         sink,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		devirtualize: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.reset()
	return g
}

func (g *Generator) reset() {
	g.labels = newLabeler()
	g.work = newWorklist()
	g.classes = make(map[*semantic.Class]*classOut)
	g.order = nil
	g.libraries = nil
	g.libSeen = make(map[string]bool)
	g.entry = nil
	g.excluded = make(map[*semantic.Class]bool)
	g.err = nil
	g.finished = false
}

// Exclude keeps c out of the output. Lowering code that needs c, by calling
// into it, allocating it or extending it, fails with ErrCodeSkippedReached.
// Exclusions last until the next PreTranslationWork.
func (g *Generator) Exclude(c *semantic.Class) {
	if !g.started {
		g.PreTranslationWork()
	}
	g.excluded[c] = true
}

// refuse records the first attempt to emit an excluded class.
func (g *Generator) refuse(c *semantic.Class) {
	if g.err == nil {
		g.err = diag.Errorf(diag.ErrCodeSkippedReached,
			"class %s was skipped for restriction violations but emitted code needs it", c.Name)
	}
}

// PreTranslationWork starts a fresh translation: all session state is
// cleared.
func (g *Generator) PreTranslationWork() {
	g.reset()
	g.started = true
	g.logger.Debug("pre-translation work done")
}

// Translate requests c: every concrete method of c is a reachability root.
// The worklist is drained before Translate returns, so any internal error
// surfaces here.
func (g *Generator) Translate(c *semantic.Class, source string) error {
	if !g.started {
		g.PreTranslationWork()
	}
	if c.Library {
		return diag.Errorf(diag.ErrCodeInvalidProgram, "library class %s cannot be translated", c.Name)
	}
	if g.excluded[c] {
		return diag.Errorf(diag.ErrCodeSkippedReached, "class %s is excluded from translation", c.Name)
	}
	g.logger.Info("translating class", "class", c.Name, "source", source)

	out := g.live(c)
	out.requested = true
	if source != "" {
		out.source = source
	}
	for _, m := range c.Methods {
		g.reach(m)
	}
	return g.drain()
}

// PostTranslationWork finishes the session: the program units and the
// runtime unit become part of Units. Internal bootstrap compiles skip it.
func (g *Generator) PostTranslationWork() error {
	if err := g.drain(); err != nil {
		return err
	}
	g.finished = true
	g.logger.Debug("post-translation work done", "classes", len(g.order), "labels", g.labels.assigned())
	return nil
}

// Classes returns the emitted class names in emission order.
func (g *Generator) Classes() []string {
	out := make([]string, len(g.order))
	for i, c := range g.order {
		out[i] = c.Name
	}
	return out
}

// Reached reports whether m was proven reachable.
func (g *Generator) Reached(m *semantic.Method) bool {
	return g.work.Reached(m)
}

// LocalName spells a local in C.
func (g *Generator) LocalName(l *semantic.Local) string {
	return memberName(l.Name)
}

// drain lowers pending methods until the worklist is empty.
func (g *Generator) drain() error {
	for {
		if g.err != nil {
			return g.err
		}
		m, ok := g.work.Next()
		if !ok {
			return nil
		}
		if err := g.lowerMethod(m); err != nil {
			g.logger.Error("lowering failed", "method", m.String(), "error", err)
			return err
		}
	}
}

// reach registers m as needed. Library, intrinsic and body-less methods
// are never emitted.
func (g *Generator) reach(m *semantic.Method) {
	if m == nil || m.Owner.Library || m.Intrinsic || !m.Concrete {
		return
	}
	if g.live(m.Owner) == nil {
		return
	}
	if g.work.Add(m) {
		g.logger.Debug("method reachable", "method", m.String())
	}
}

// live marks an application class as emitted, together with its
// superclasses, its interfaces and its static initializer.
func (g *Generator) live(c *semantic.Class) *classOut {
	if c.Library {
		g.useLibrary(c.Name)
		return nil
	}
	if out, ok := g.classes[c]; ok {
		return out
	}
	if g.excluded[c] {
		g.refuse(c)
		return nil
	}
	out := &classOut{class: c, source: c.Source, funcs: make(map[*semantic.Method]string)}
	g.classes[c] = out
	g.order = append(g.order, c)
	g.sink.Inc(diag.CounterClassesEmitted)

	if s := c.Super(); s != nil {
		if s.Library {
			if s.Name != intrinsic.ObjectClass {
				g.useLibrary(s.Name)
			}
		} else {
			g.live(s)
		}
	}
	for _, iface := range g.model.AllInterfaces(c) {
		g.live(iface)
	}
	g.reach(c.ClassInit())
	return out
}

// useLibrary records a library class whose header the program includes.
func (g *Generator) useLibrary(name string) {
	if g.libSeen[name] {
		return
	}
	g.libSeen[name] = true
	g.libraries = append(g.libraries, name)
}

// ctype is cType that also records library types the output depends on.
func (g *Generator) ctype(t *semantic.Type) string {
	switch {
	case t.Native == intrinsic.StringNative:
		g.useLibrary(intrinsic.StringClass)
	case t.Kind == semantic.TypeArray:
		g.ctype(t.Elem)
	case t.Kind == semantic.TypeReference || t.Kind == semantic.TypeBoxed:
		if g.model.IsLibrary(t.Name) && t.Name != intrinsic.ObjectClass {
			g.useLibrary(t.Name)
		}
	}
	return cType(t)
}

// signature is the C declarator of m's function.
func (g *Generator) signature(m *semantic.Method) string {
	if m.Main {
		return "int main(int argc, char** " + paramName(0) + ")"
	}
	var params []string
	if !m.Static {
		params = append(params, "void* "+thisParameter)
	}
	for i, p := range m.Params {
		params = append(params, g.ctype(p)+" "+paramName(i))
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	return g.ctype(m.Return) + " " + funcName(m) + "(" + strings.Join(params, ", ") + ")"
}

// lowerMethod builds m's body and renders its definition.
func (g *Generator) lowerMethod(m *semantic.Method) error {
	if err := g.model.BuildBody(m); err != nil {
		return err
	}
	if m.Main {
		if g.entry != nil && g.entry != m {
			return diag.Errorf(diag.ErrCodeDuplicateEntry, "entry point %s conflicts with %s", m, g.entry).
				At(m.Owner.Name, m.Signature())
		}
		g.entry = m
	}

	var b strings.Builder
	b.WriteString(g.signature(m))
	b.WriteString(" {\n")
	for _, l := range m.Locals {
		b.WriteString("  ")
		if l.ByValue {
			b.WriteString(cBase(l.Type))
		} else {
			b.WriteString(g.ctype(l.Type))
		}
		b.WriteString(" ")
		b.WriteString(g.LocalName(l))
		b.WriteString(";\n")
	}
	if len(m.Locals) > 0 {
		b.WriteString("\n")
	}
	if m.Main {
		b.WriteString("  " + classInitFunction + "();\n")
	}

	for _, s := range m.Body {
		code, err := g.lowerStmt(s)
		if err != nil {
			var ie *diag.InternalError
			if errors.As(err, &ie) {
				ie = ie.At(m.Owner.Name, m.Signature())
				if ie.Stmt == "" {
					ie.Stmt = s.Info().Text
				}
				return ie
			}
			return err
		}
		b.WriteString(code)
		if g.err != nil {
			return g.err.At(m.Owner.Name, m.Signature())
		}
	}
	b.WriteString("}\n")

	g.classes[m.Owner].funcs[m] = b.String()
	g.sink.Inc(diag.CounterMethodsEmitted)
	g.logger.Debug("lowered method", "method", m.String(), "statements", len(m.Body), "inline", m.Inline)
	return nil
}
