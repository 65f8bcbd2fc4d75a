package solver

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pulsat/pulsat/config"
	"github.com/pulsat/pulsat/dimacs"
	"github.com/pulsat/pulsat/lit"
)

// A Solver holds every data structure of the CDCL search. It is the main
// data structure; a single instance owns the clause store, the watch index,
// the trail and the heuristic state, and is not safe for concurrent use.
type Solver struct {
	cfg *config.Config
	log *logrus.Logger

	nbVars int

	state      []VarState // Assignment state of each var.
	prevState  []VarState // Saved phase: last non-unassigned state of each var.
	dlevel     []int      // Decision level each var was bound at.
	antecedent []int      // Clause that forced each var, or noAntecedent.
	marked     []bool     // Transient marks used by analyze.

	clauses    []*Clause // Original clauses first, then learned ones. Indices are stable.
	nbOriginal int
	unaries    []lit.Lit // Unit clauses, kept apart for validation only.
	watches    [][]int   // For each literal, the clauses where it occupies a watch position.

	trail         []lit.Lit
	qhead         int
	separators    []int     // separators[d] is the trail index at which level d began.
	conflictsAtDl []int     // Learned-clause count when each level was entered.
	decisionLits  []lit.Lit // Decision literal of each level; index 0 unused.
	dl            int
	conflictIdx   int // Conflicting clause found by BCP, or noAntecedent.

	activity     []float64
	litScore     []int
	scores       *scoreMap
	varInc       float64
	currActivity float64 // Score of the last decision, raised to the highest activity among variables unassigned since; 0 after a restart.
	resetCursors bool

	restartThreshold int
	restartUpper     int

	assertedLit  lit.Lit // Asserting literal of the last learned clause.
	assertedAnte int     // Its antecedent: the learned clause index, or noAntecedent for a unary.

	status Status
	Stats  Stats // Statistics about the solving process.
}

// New makes a solver from a parsed problem. Unit clauses are asserted at
// level 0 immediately; two conflicting unit clauses make the solver
// trivially Unsat. cfg may be nil, in which case defaults are used.
func New(pb *dimacs.Problem, cfg *config.Config) *Solver {
	if cfg == nil {
		cfg = config.New()
	}
	nbVars := pb.NbVars
	s := &Solver{
		cfg:              cfg,
		log:              cfg.Logger,
		nbVars:           nbVars,
		state:            make([]VarState, nbVars),
		prevState:        make([]VarState, nbVars),
		dlevel:           make([]int, nbVars),
		antecedent:       make([]int, nbVars),
		marked:           make([]bool, nbVars),
		clauses:          make([]*Clause, 0, len(pb.Clauses)),
		watches:          make([][]int, 2*nbVars),
		trail:            make([]lit.Lit, 0, nbVars),
		activity:         make([]float64, nbVars),
		litScore:         make([]int, 2*nbVars),
		scores:           &scoreMap{},
		varInc:           1.0,
		restartThreshold: cfg.RestartLower,
		restartUpper:     cfg.RestartUpper,
		status:           Indet,
	}
	for i := range s.antecedent {
		s.antecedent[i] = noAntecedent
	}
	s.reset()
	for _, clause := range pb.Clauses {
		for _, l := range clause {
			if cfg.VarDec == config.Minisat {
				s.bumpVarScore(l.Index())
			}
			if cfg.ValDec == config.LitScore {
				s.bumpLitScore(l)
			}
		}
		if len(clause) == 1 {
			l := clause[0]
			v := l.Index()
			if st := s.state[v]; st != Unassigned {
				if (st == True) == l.Sign() {
					s.log.Warnf("conflicting unit clauses for variable %d", l.Var())
					s.status = Unsat
					return s
				}
			} else {
				s.assertLit(l, 0)
			}
			s.addUnary(l)
			continue
		}
		lits := make([]lit.Lit, len(clause))
		copy(lits, clause)
		s.addClause(lits, 0, 1)
	}
	s.nbOriginal = len(s.clauses)
	s.resetCursors = true
	return s
}

// reset clears the per-level bookkeeping. Invoked initially and on restart.
func (s *Solver) reset() {
	s.separators = append(s.separators[:0], 0)
	s.conflictsAtDl = append(s.conflictsAtDl[:0], 0)
	s.decisionLits = append(s.decisionLits[:0], lit.Undef)
	s.dl = 0
	s.conflictIdx = noAntecedent
}

// NbVars returns the number of variables of the problem.
func (s *Solver) NbVars() int {
	return s.nbVars
}

// Status returns the current status of the problem.
func (s *Solver) Status() Status {
	return s.status
}

// addClause registers a clause of length >= 2 watching positions l and r, and
// returns its index in the clause store.
func (s *Solver) addClause(lits []lit.Lit, l, r int) int {
	c := NewClause(lits, l, r)
	loc := len(s.clauses)
	s.clauses = append(s.clauses, c)
	s.watches[c.lwLit()] = append(s.watches[c.lwLit()], loc)
	s.watches[c.rwLit()] = append(s.watches[c.rwLit()], loc)
	return loc
}

// addUnary records a unit clause. Units are never stored with the watched
// clauses; they only matter for validation.
func (s *Solver) addUnary(l lit.Lit) {
	s.unaries = append(s.unaries, l)
}

// assertLit appends l to the trail and binds its variable at the given level.
func (s *Solver) assertLit(l lit.Lit, level int) {
	s.trail = append(s.trail, l)
	v := l.Index()
	if l.Sign() {
		s.state[v] = False
		s.prevState[v] = False
	} else {
		s.state[v] = True
		s.prevState[v] = True
	}
	s.dlevel[v] = level
	s.Stats.NbAssignments++
	if s.log.IsLevelEnabled(logrus.DebugLevel) {
		s.log.Debugf("assert %d @ %d", l.Int(), level)
	}
}

// litState returns whether l is made true or false by the current
// assignment, or is still free.
func (s *Solver) litState(l lit.Lit) litState {
	switch s.state[l.Index()] {
	case Unassigned:
		return lUnassigned
	case True:
		if l.Sign() {
			return lUnsat
		}
		return lSat
	default:
		if l.Sign() {
			return lSat
		}
		return lUnsat
	}
}

// Solve runs the CDCL search until a verdict is reached or the configured
// timeout expires.
func (s *Solver) Solve() Status {
	if s.status == Unsat {
		return s.status
	}
	s.status = Indet
	start := time.Now()
	for {
		if s.cfg.Timeout > 0 && time.Since(start) > s.cfg.Timeout {
			s.status = Timeout
			return s.status
		}
	propagation:
		for {
			switch s.bcp() {
			case propUnsat:
				s.status = Unsat
				return s.status
			case propConflict:
				s.Stats.NbConflicts++
				if s.cfg.EnableCB {
					switch s.handleConflict() {
					case conflictContinue:
						continue
					case conflictUnsat:
						s.status = Unsat
						return s.status
					}
				}
				blevel := s.analyze(s.clauses[s.conflictIdx])
				if s.cfg.EnableCB && blevel > 0 {
					target := s.dl - 1
					if target < 0 {
						target = 0
					}
					s.backtrackCB(target, blevel)
				} else {
					s.backtrackNCB(blevel)
				}
			default:
				break propagation
			}
		}
		if s.decide() == Sat {
			s.status = Sat
			return s.status
		}
	}
}

// Assignment returns the current assignment as signed 1-based variables, the
// way DIMACS models are written. Variables that occur in no clause default
// to their saved phase.
func (s *Solver) Assignment() []int {
	res := make([]int, s.nbVars)
	for v := 0; v < s.nbVars; v++ {
		st := s.state[v]
		if st == Unassigned {
			st = s.prevState[v]
		}
		if st == True {
			res[v] = v + 1
		} else {
			res[v] = -(v + 1)
		}
	}
	return res
}

// Validate checks that the current assignment satisfies every clause,
// including the unit ones. A failure indicates a solver bug.
func (s *Solver) Validate() error {
	if s.status != Sat {
		return errors.Errorf("cannot validate a %v assignment", s.status)
	}
	for v := 0; v < s.nbVars; v++ {
		if s.state[v] == Unassigned {
			// Only possible for variables that occur in no clause.
			s.log.Warnf("unassigned variable %d", v+1)
		}
	}
	for _, c := range s.clauses {
		sat := false
		for _, l := range c.lits {
			if s.litState(l) == lSat {
				sat = true
				break
			}
		}
		if !sat {
			return errors.Errorf("clause %q not satisfied", c.CNF())
		}
	}
	for _, l := range s.unaries {
		if s.litState(l) != lSat {
			return errors.Errorf("unit clause %d not satisfied", l.Int())
		}
	}
	return nil
}
