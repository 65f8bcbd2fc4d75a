// Package lit implements the literal encoding shared by the DIMACS reader
// and the solver core.
package lit

import "fmt"

// Undef denotes an unknown literal.
const Undef = Lit(-1)

// Lit is a literal represented by an integer. The sign lives in the least
// significant bit and the 0-based variable index in the remaining bits, so a
// literal and its negation are adjacent when sorted and negation is a single
// bit flip.
type Lit int32

// New returns a new literal given a 0-based variable index, v, and whether
// the literal is negative.
func New(v int, neg bool) Lit {
	if neg {
		return Lit(v + v + 1)
	}
	return Lit(v + v)
}

// NewFromInt returns the literal for a signed DIMACS value.
func NewFromInt(i int) Lit {
	if i < 0 {
		return New(-i-1, true)
	}
	return New(i-1, false)
}

// Not negates a literal.
func (l Lit) Not() Lit {
	return l ^ 1
}

// Sign returns true if the literal is negative.
func (l Lit) Sign() bool {
	return l&1 == 1
}

// Index returns the 0-based index of the literal's variable.
func (l Lit) Index() int {
	return int(l >> 1)
}

// Var returns the literal's variable as a 1-based DIMACS value.
func (l Lit) Var() int {
	return int(l>>1) + 1
}

// Int returns the literal as a signed DIMACS value.
func (l Lit) Int() int {
	if l.Sign() {
		return -l.Var()
	}
	return l.Var()
}

// String implements the Stringer interface.
func (l Lit) String() string {
	if l.Sign() {
		return fmt.Sprintf("~%d", l.Var())
	}
	return fmt.Sprintf("%d", l.Var())
}
