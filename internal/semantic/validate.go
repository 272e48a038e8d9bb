package semantic

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/lowerc/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownSuper    = "E201" // super or interface not declared and not library
	ErrHierarchyCycle  = "E202" // class extends or implements itself
	ErrDuplicateClass  = "E203" // class declared twice
	ErrJumpOutOfRange  = "E204" // jump or trap target outside the body
	ErrUnknownLocal    = "E205" // operand names an undeclared local
	ErrDuplicateMethod = "E206" // two methods with one signature
)

// ValidationError represents a program validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a front-end program before any class is resolved.
// Returns all errors found (does not fail-fast).
func Validate(prog *ir.Program, libraryPrefixes []string) []ValidationError {
	var errs []ValidationError

	if libraryPrefixes == nil {
		libraryPrefixes = DefaultLibraryPrefixes
	}
	isLib := func(name string) bool {
		for _, p := range libraryPrefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}

	declared := make(map[string]bool)
	for i, c := range prog.Classes {
		// E203: duplicate class
		if declared[c.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("classes[%d].name", i),
				Message: fmt.Sprintf("duplicate class: %q", c.Name),
				Code:    ErrDuplicateClass,
			})
		}
		declared[c.Name] = true
	}

	for i, c := range prog.Classes {
		// E201: unknown super or interface
		refs := append([]string{}, c.Interfaces...)
		if c.Super != "" {
			refs = append([]string{c.Super}, refs...)
		}
		for _, r := range refs {
			if !declared[r] && !isLib(r) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("classes[%d]", i),
					Message: fmt.Sprintf("%s references undeclared type %q", c.Name, r),
					Code:    ErrUnknownSuper,
				})
			}
		}

		sigs := make(map[string]bool)
		for j, md := range c.Methods {
			field := fmt.Sprintf("classes[%d].methods[%d]", i, j)

			// E206: duplicate method signature
			sig := signature(md.Name, md.Params)
			if sigs[sig] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("duplicate method %s.%s", c.Name, sig),
					Code:    ErrDuplicateMethod,
				})
			}
			sigs[sig] = true

			errs = append(errs, validateBody(field, &md)...)
		}
	}

	// E202: hierarchy cycles
	graph := hierarchyGraph(prog)
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			slices.Sort(scc)
			errs = append(errs, ValidationError{
				Field:   "classes",
				Message: fmt.Sprintf("hierarchy cycle: %s", strings.Join(scc, " → ")),
				Code:    ErrHierarchyCycle,
			})
		}
	}

	return errs
}

func validateBody(field string, md *ir.MethodDecl) []ValidationError {
	var errs []ValidationError
	n := len(md.Units)

	inRange := func(what string, i int) {
		if i < 0 || i >= n {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s target %d outside body of %d units", what, i, n),
				Code:    ErrJumpOutOfRange,
			})
		}
	}

	locals := make(map[string]bool, len(md.Locals))
	for _, l := range md.Locals {
		locals[l.Name] = true
	}
	var checkOperand func(op *ir.Operand)
	checkOperand = func(op *ir.Operand) {
		if op == nil {
			return
		}
		if op.Kind == ir.KindLocal && !locals[op.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown local %q", op.Name),
				Code:    ErrUnknownLocal,
			})
		}
		checkOperand(op.Base)
		checkOperand(op.Index)
		checkOperand(op.Left)
		checkOperand(op.Right)
		checkOperand(op.Size)
		checkOperand(op.Operand)
		for i := range op.Args {
			checkOperand(&op.Args[i])
		}
		for i := range op.Sizes {
			checkOperand(&op.Sizes[i])
		}
	}

	for _, u := range md.Units {
		switch u.Op {
		case ir.OpIf, ir.OpGoto:
			inRange(u.Op, u.Target)
		case ir.OpTableSwitch, ir.OpLookupSwitch:
			for _, t := range u.Targets {
				inRange(u.Op, t)
			}
			inRange(u.Op+" default", u.Default)
		}
		checkOperand(u.LHS)
		checkOperand(u.RHS)
		checkOperand(u.Value)
	}
	for _, t := range md.Traps {
		inRange("trap handler", t.Handler)
	}
	return errs
}

// classGraph maps a class name to the declared types it extends or
// implements.
type classGraph map[string][]string

func hierarchyGraph(prog *ir.Program) classGraph {
	graph := make(classGraph)
	declared := make(map[string]bool, len(prog.Classes))
	for _, c := range prog.Classes {
		declared[c.Name] = true
	}
	for _, c := range prog.Classes {
		if graph[c.Name] == nil {
			graph[c.Name] = []string{}
		}
		if c.Super != "" && declared[c.Super] {
			graph[c.Name] = append(graph[c.Name], c.Super)
		}
		for _, i := range c.Interfaces {
			if declared[i] {
				graph[c.Name] = append(graph[c.Name], i)
			}
		}
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph classGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the result is deterministic.
func tarjanSCC(graph classGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}
