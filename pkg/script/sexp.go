package script

import (
	"io"
	"strings"
)

// Sexp is a node of a stimulus script: an atom or a parenthesized list.
type Sexp interface {
	IsLeaf() bool
	// Line is the 1-based source line the node starts on.
	Line() int
	String() string
}

// Atom is a bare or quoted word: an operation name, a register name or a
// number.
type Atom struct {
	Value string
	line  int
}

func (a Atom) IsLeaf() bool   { return true }
func (a Atom) Line() int      { return a.line }
func (a Atom) String() string { return a.Value }

// List is a parenthesized sequence of nodes.
type List struct {
	elements []Sexp
	line     int
}

func (l *List) IsLeaf() bool { return false }
func (l *List) Line() int    { return l.line }

// Head returns the first element, or nil for ().
func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// ParseSexp reads every top-level expression from r.
func ParseSexp(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}
