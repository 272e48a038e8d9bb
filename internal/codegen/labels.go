package codegen

import (
	"strconv"

	"github.com/roach88/lowerc/internal/semantic"
)

// labeler assigns jump labels. Numbers increase monotonically across the
// session; a statement keeps the label it was first given.
type labeler struct {
	seq    int
	labels map[semantic.Stmt]int
}

func newLabeler() *labeler {
	return &labeler{labels: make(map[semantic.Stmt]int)}
}

// label returns the label of target, assigning the next number the first
// time target is seen.
func (l *labeler) label(target semantic.Stmt) string {
	n, ok := l.labels[target]
	if !ok {
		n = l.seq
		l.labels[target] = n
		l.seq++
	}
	return "label" + strconv.Itoa(n)
}

// assigned returns how many labels have been handed out.
func (l *labeler) assigned() int {
	return l.seq
}
