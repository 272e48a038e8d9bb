package codegen

import (
	"github.com/roach88/lowerc/internal/semantic"
)

// worklist is the FIFO of methods proven reachable but not yet lowered.
// Each method is admitted once per session.
type worklist struct {
	pending []*semantic.Method
	seen    map[*semantic.Method]bool
}

func newWorklist() *worklist {
	return &worklist{
		pending: make([]*semantic.Method, 0, 64),
		seen:    make(map[*semantic.Method]bool),
	}
}

// Add admits m. It reports false when m was admitted before.
func (w *worklist) Add(m *semantic.Method) bool {
	if w.seen[m] {
		return false
	}
	w.seen[m] = true
	w.pending = append(w.pending, m)
	return true
}

// Next removes and returns the oldest pending method.
func (w *worklist) Next() (*semantic.Method, bool) {
	if len(w.pending) == 0 {
		return nil, false
	}
	m := w.pending[0]

	// Drop the reference so the backing array does not pin lowered methods.
	w.pending[0] = nil
	if len(w.pending) == 1 {
		w.pending = w.pending[:0]
	} else {
		w.pending = w.pending[1:]
	}
	return m, true
}

// Reached reports whether m was ever admitted.
func (w *worklist) Reached(m *semantic.Method) bool {
	return w.seen[m]
}

// Len returns the number of pending methods.
func (w *worklist) Len() int {
	return len(w.pending)
}
