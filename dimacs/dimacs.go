// Package dimacs reads propositional formulas in the DIMACS CNF format.
// It delivers clauses as deduplicated literal sets; all solving-related
// interpretation (unit handling, watch registration) is left to the solver.
package dimacs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pulsat/pulsat/lit"
)

// A Problem is a parsed CNF formula: a number of variables and a list of
// non-empty clauses. NbClauses is the clause count declared in the header;
// it is a capacity hint and may differ from len(Clauses).
type Problem struct {
	NbVars    int
	NbClauses int
	Clauses   [][]lit.Lit
}

// DIMACS whitespace is ASCII 9-13 plus the blank.
func isSpace(b byte) bool {
	return b == ' ' || (b >= '\t' && b <= '\r')
}

// scanTokens returns a bufio.SplitFunc producing the token stream of a
// DIMACS file: the header line as a single token and every integer as its
// own token, with comment lines dropped entirely. Comments and the header
// are only recognized at the start of a line, which the closure tracks
// across calls.
func scanTokens() bufio.SplitFunc {
	lineStart := true
	return func(data []byte, atEOF bool) (int, []byte, error) {
		i := 0
		for {
			for i < len(data) && isSpace(data[i]) {
				if data[i] == '\n' {
					lineStart = true
				}
				i++
			}
			if i == len(data) {
				return i, nil, nil
			}
			if lineStart && (data[i] == 'c' || data[i] == 'p') {
				nl := bytes.IndexByte(data[i:], '\n')
				if nl < 0 {
					if !atEOF {
						// The line is not complete yet; drop the leading
						// whitespace and wait for more data.
						return i, nil, nil
					}
					nl = len(data) - i
				}
				if data[i] == 'p' {
					return i + nl, data[i : i+nl], nil
				}
				i += nl // comment line
				continue
			}
			lineStart = false
			end := i
			for end < len(data) && !isSpace(data[end]) {
				end++
			}
			if end == len(data) && !atEOF {
				return i, nil, nil
			}
			return end, data[i:end], nil
		}
	}
}

func parseHeader(line string) (*Problem, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
		return nil, errors.Errorf("invalid header %q", line)
	}
	nbVars, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, errors.Errorf("nbvars not an int: %q", fields[2])
	}
	nbClauses, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, errors.Errorf("nbclauses not an int: %q", fields[3])
	}
	if nbVars <= 0 || nbClauses <= 0 {
		return nil, errors.Errorf("expecting non-zero variables and clauses, got %d and %d", nbVars, nbClauses)
	}
	return &Problem{
		NbVars:    nbVars,
		NbClauses: nbClauses,
		Clauses:   make([][]lit.Lit, 0, nbClauses),
	}, nil
}

// Parse reads a DIMACS CNF formula from f and returns the corresponding
// Problem. Literals are deduplicated within each clause and emitted in a
// deterministic order. An empty clause, a literal whose magnitude exceeds
// the declared number of variables, and a malformed header are all reported
// as errors.
func Parse(f io.Reader) (*Problem, error) {
	scanner := bufio.NewScanner(f)
	scanner.Split(scanTokens())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var (
		pb   *Problem
		lits []lit.Lit
		seen = make(map[lit.Lit]struct{})
	)
	for scanner.Scan() {
		tok := scanner.Text()
		if tok[0] == 'p' {
			if pb != nil {
				return nil, errors.New("duplicate header")
			}
			var err error
			if pb, err = parseHeader(tok); err != nil {
				return nil, err
			}
			continue
		}
		if pb == nil {
			return nil, errors.Errorf("unexpected token %q before header", tok)
		}
		val, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.Errorf("unexpected token %q in clause", tok)
		}
		if val == 0 {
			if len(lits) == 0 {
				return nil, errors.Errorf("empty clause (clause %d)", len(pb.Clauses)+1)
			}
			sort.Slice(lits, func(i, j int) bool { return lits[i] < lits[j] })
			pb.Clauses = append(pb.Clauses, lits)
			lits = nil
			seen = make(map[lit.Lit]struct{})
			continue
		}
		if val > pb.NbVars || -val > pb.NbVars {
			return nil, errors.Errorf("invalid literal %d for problem with %d vars only", val, pb.NbVars)
		}
		l := lit.NewFromInt(val)
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			lits = append(lits, l)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read input")
	}
	if pb == nil {
		return nil, errors.New("no header found")
	}
	if len(lits) != 0 {
		return nil, errors.New("unfinished clause at end of input")
	}
	return pb, nil
}

// CNF returns a DIMACS CNF representation of the problem.
func (pb *Problem) CNF() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %d %d\n", pb.NbVars, len(pb.Clauses))
	for _, clause := range pb.Clauses {
		for _, l := range clause {
			fmt.Fprintf(&sb, "%d ", l.Int())
		}
		sb.WriteString("0\n")
	}
	return sb.String()
}
