package solver

import (
	"fmt"
	"strings"

	"github.com/pulsat/pulsat/lit"
)

// A Clause is a list of at least two Lits plus two watch positions.
// lw and rw index into the clause's own literal slice; they are always
// distinct and point to distinct literals.
type Clause struct {
	lits   []lit.Lit
	lw, rw int
}

// NewClause returns a clause watching the given positions.
func NewClause(lits []lit.Lit, lw, rw int) *Clause {
	if len(lits) < 2 {
		panic("clause must contain at least two literals")
	}
	if lw == rw || lits[lw] == lits[rw] {
		panic("watch positions must point to distinct literals")
	}
	return &Clause{lits: lits, lw: lw, rw: rw}
}

// Len returns the nb of lits in the clause.
func (c *Clause) Len() int {
	return len(c.lits)
}

// Get returns the ith literal from the clause.
func (c *Clause) Get(i int) lit.Lit {
	return c.lits[i]
}

// lwLit returns the literal at the left watch position.
func (c *Clause) lwLit() lit.Lit {
	return c.lits[c.lw]
}

// rwLit returns the literal at the right watch position.
func (c *Clause) rwLit() lit.Lit {
	return c.lits[c.rw]
}

// find returns the position of l in the clause, or -1.
func (c *Clause) find(l lit.Lit) int {
	for i, l2 := range c.lits {
		if l2 == l {
			return i
		}
	}
	return -1
}

// CNF returns a DIMACS CNF representation of the clause.
func (c *Clause) CNF() string {
	return litsCNF(c.lits)
}

func litsCNF(lits []lit.Lit) string {
	var sb strings.Builder
	for _, l := range lits {
		fmt.Fprintf(&sb, "%d ", l.Int())
	}
	sb.WriteString("0")
	return sb.String()
}
