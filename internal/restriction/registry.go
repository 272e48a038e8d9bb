package restriction

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/semantic"
)

// CheckSuffix is appended to a restriction name to find its policy.
const CheckSuffix = "_CHECK"

// Context is what a policy sees besides the class.
type Context struct {
	Model *semantic.Model

	// Policy is the restriction name being checked.
	Policy string

	sink *diag.Sink
}

// Violate records a violation of the current policy by c.
func (ctx *Context) Violate(c *semantic.Class, format string, args ...any) {
	ctx.sink.Violate(ctx.Policy, c.Name, fmt.Sprintf(format, args...))
}

// Policy checks one class. It reports false after recording at least one
// violation through ctx. A returned error means the policy itself failed.
type Policy func(c *semantic.Class, ctx *Context) (bool, error)

// Registry maps restriction names to policies.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// Register adds p under name. Registering a name twice is an error.
func (r *Registry) Register(name string, p Policy) error {
	key := name + CheckSuffix
	if _, dup := r.policies[key]; dup {
		return fmt.Errorf("policy %q already registered", name)
	}
	r.policies[key] = p
	return nil
}

// MustRegister is Register that panics on error. For init-time wiring.
func (r *Registry) MustRegister(name string, p Policy) {
	if err := r.Register(name, p); err != nil {
		panic(err)
	}
}

// Lookup resolves a restriction name to its policy.
func (r *Registry) Lookup(name string) (Policy, error) {
	p, ok := r.policies[name+CheckSuffix]
	if !ok {
		return nil, diag.Errorf(diag.ErrCodePolicyNotFound, "no policy %s for restriction %q", name+CheckSuffix, name)
	}
	return p, nil
}

// Names lists the registered restriction names, sorted.
func (r *Registry) Names() []string {
	var out []string
	for _, k := range slices.Sorted(maps.Keys(r.policies)) {
		out = append(out, strings.TrimSuffix(k, CheckSuffix))
	}
	return out
}

// Ruleset composes policies run in order. The class passes only if every
// member passes; every member runs regardless so all violations are
// recorded. Member names resolve at check time.
func Ruleset(r *Registry, names ...string) Policy {
	return func(c *semantic.Class, ctx *Context) (bool, error) {
		pass := true
		for _, n := range names {
			p, err := r.Lookup(n)
			if err != nil {
				return false, err
			}
			member := &Context{Model: ctx.Model, Policy: n, sink: ctx.sink}
			ok, err := p(c, member)
			if err != nil {
				return false, err
			}
			pass = pass && ok
		}
		return pass, nil
	}
}
