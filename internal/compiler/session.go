package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/lowerc/internal/codegen"
	"github.com/roach88/lowerc/internal/config"
	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/intrinsic"
	"github.com/roach88/lowerc/internal/ir"
	"github.com/roach88/lowerc/internal/restriction"
	"github.com/roach88/lowerc/internal/semantic"
)

// ErrSessionUsed is returned when Compile is called on a session that
// already ran.
var ErrSessionUsed = errors.New("session already compiled")

// SessionIDGenerator generates unique session identifiers.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock supplies ledger timestamps.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithOutput sets where checker lines and the violation report go.
// Default: discarded.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithSessionIDGenerator overrides the UUIDv7 session IDs.
func WithSessionIDGenerator(g SessionIDGenerator) Option {
	return func(s *Session) {
		s.ids = g
	}
}

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithRegistry sets the restriction policy registry. Default:
// restriction.DefaultRegistry().
func WithRegistry(r *restriction.Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// Task names what to compile. An empty Classes list requests every
// application class in program order.
type Task struct {
	Program *ir.Program
	Classes []string
}

// Session is one compilation. It is not safe for concurrent use and
// compiles at most once.
type Session struct {
	cfg      config.Options
	logger   *slog.Logger
	out      io.Writer
	ids      SessionIDGenerator
	clock    Clock
	registry *restriction.Registry

	id   string
	used bool

	sink    *diag.Sink
	model   *semantic.Model
	checker *restriction.Checker
	gen     *codegen.Generator

	startedAt   time.Time
	finishedAt  time.Time
	programHash string
	configHash  string
	sources     map[string]string
	skipped     []string
	validation  []semantic.ValidationError
	units       []codegen.Unit
	err         error
}

// NewSession creates a session with the given options.
func NewSession(cfg config.Options, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	s := &Session{
		cfg:      cfg,
		logger:   slog.Default(),
		out:      io.Discard,
		ids:      UUIDv7Generator{},
		clock:    wallClock{},
		registry: restriction.DefaultRegistry(),
		sink:     diag.NewSink(),
		sources:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = s.ids.Generate()
	s.logger = s.logger.With("session", s.id)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Sink returns the session's diagnostics.
func (s *Session) Sink() *diag.Sink {
	return s.sink
}

// Units returns the emitted units, or nil when the session failed.
func (s *Session) Units() []codegen.Unit {
	if s.err != nil {
		return nil
	}
	return s.units
}

// Sources maps class names to their originating source files.
func (s *Session) Sources() map[string]string {
	return s.sources
}

// Err returns the error that aborted the session, if any.
func (s *Session) Err() error {
	return s.err
}

// Compile runs the session. Restriction violations are not errors; they
// are collected and reported. The returned error is a *CompileError.
func (s *Session) Compile(task Task) error {
	if s.used {
		return ErrSessionUsed
	}
	s.used = true
	s.startedAt = s.clock.Now()
	defer func() { s.finishedAt = s.clock.Now() }()

	if err := s.compile(task); err != nil {
		s.err = err
		s.units = nil
		s.logger.Error("compilation failed", "error", err)
		return err
	}
	return nil
}

func (s *Session) compile(task Task) error {
	prog := task.Program
	if prog == nil {
		return &CompileError{Stage: StageValidate, Err: diag.Errorf(diag.ErrCodeInvalidProgram, "no program")}
	}

	var err error
	if s.programHash, err = ir.ProgramFingerprint(prog); err != nil {
		return &CompileError{Stage: StageValidate, Err: diag.Errorf(diag.ErrCodeInvalidProgram, "fingerprint: %v", err)}
	}
	if s.configHash, err = ir.ConfigFingerprint(s.cfg.Map()); err != nil {
		return &CompileError{Stage: StageValidate, Err: fmt.Errorf("config fingerprint: %w", err)}
	}
	for _, c := range prog.Classes {
		if c.Source != "" {
			s.sources[c.Name] = c.Source
		}
	}

	if errs := semantic.Validate(prog, s.cfg.LibraryPrefixes); len(errs) > 0 {
		s.validation = errs
		return &CompileError{
			Stage: StageValidate,
			Err:   diag.Errorf(diag.ErrCodeInvalidProgram, "%d validation error(s), first: %s", len(errs), errs[0]),
		}
	}

	opts := append(intrinsic.ModelOptions(),
		semantic.WithOptions(s.cfg.Model()),
		semantic.WithSink(s.sink),
		semantic.WithLogger(s.logger),
	)
	s.model = semantic.NewModel(prog, opts...)
	if err := s.model.Prepare(); err != nil {
		return &CompileError{Stage: StagePrepare, Err: err}
	}

	checkOut := s.out
	if s.cfg.Mute {
		checkOut = io.Discard
	}
	s.checker = restriction.NewChecker(s.registry, s.model, s.sink,
		restriction.WithOutput(checkOut),
		restriction.WithLogger(s.logger),
	)
	s.gen = codegen.New(s.model, s.sink,
		codegen.WithDevirtualization(s.cfg.Devirtualize),
		codegen.WithLogger(s.logger),
	)

	classes, err := s.requested(task.Classes)
	if err != nil {
		return &CompileError{Stage: StagePrepare, Err: err}
	}
	s.dumpModel(classes)

	// Every class is checked before any is translated, so a skipped class
	// is known to the generator before other code can reach it.
	s.gen.PreTranslationWork()
	var translate []*semantic.Class
	for _, c := range classes {
		ok, err := s.checker.Comply(c)
		if err != nil {
			return &CompileError{Stage: StageCheck, Class: c.Name, Err: err}
		}
		if !ok && !s.cfg.TranslateOnViolation {
			s.logger.Warn("skipping class with violations", "class", c.Name)
			s.skipped = append(s.skipped, c.Name)
			s.gen.Exclude(c)
			continue
		}
		translate = append(translate, c)
	}
	for _, c := range translate {
		if err := s.gen.Translate(c, c.Source); err != nil {
			return &CompileError{Stage: StageTranslate, Class: c.Name, Err: err}
		}
	}

	if s.cfg.Internal == config.InternalNone {
		if err := s.gen.PostTranslationWork(); err != nil {
			return &CompileError{Stage: StagePostTranslate, Err: err}
		}
	} else {
		s.logger.Info("internal compile, skipping post-translation work", "mode", s.cfg.Internal)
	}

	if !s.cfg.Mute {
		s.sink.WriteReport(s.out)
	}
	s.units = s.gen.Units()
	s.logger.Info("compilation finished",
		"classes", len(s.gen.Classes()),
		"units", len(s.units),
		"violations", len(s.sink.Violations()),
	)
	return nil
}

// requested resolves the task's class list.
func (s *Session) requested(names []string) ([]*semantic.Class, error) {
	if len(names) == 0 {
		return s.model.AppClasses(), nil
	}
	out := make([]*semantic.Class, 0, len(names))
	for _, name := range names {
		if !s.model.Declared(name) {
			return nil, diag.Errorf(diag.ErrCodeUnknownClass, "requested class %s is not declared", name)
		}
		c, err := s.model.ResolveClass(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// dumpModel logs the resolved classes at debug level.
func (s *Session) dumpModel(classes []*semantic.Class) {
	if !s.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, c := range classes {
		s.logger.Debug("resolved class",
			"class", c.Name,
			"super", c.SuperName(),
			"interfaces", c.Interfaces,
			"final", c.DeFactoFinal,
			"methods", len(c.Methods),
			"restrictions", c.Restrictions,
		)
	}
}
