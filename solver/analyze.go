package solver

import (
	"github.com/sirupsen/logrus"

	"github.com/pulsat/pulsat/config"
	"github.com/pulsat/pulsat/lit"
)

// analyze derives the first-UIP learned clause from the conflicting clause
// and returns the backtrack level. It walks the implication graph backwards
// along the trail, resolving on current-level variables until a single one
// remains; that variable's negation becomes the asserting literal.
//
// Assumes no clause contains the same literal twice (the reader dedups), so
// removing the pivot in a single pass is enough for termination.
func (s *Solver) analyze(conflicting *Clause) int {
	current := append([]lit.Lit(nil), conflicting.lits...)
	var newClause []lit.Lit
	resolveNum := 0
	bktrk := 0
	watchLit := 0 // Position in newClause of the first literal at the max non-current level.
	t := len(s.trail) - 1
	var u lit.Lit
	for {
		for _, l := range current {
			v := l.Index()
			if s.marked[v] {
				continue
			}
			s.marked[v] = true
			if s.dlevel[v] == s.dl {
				resolveNum++
				continue
			}
			// Literals from other decision levels enter the learned clause.
			newClause = append(newClause, l)
			if s.cfg.VarDec == config.Minisat {
				s.bumpVarScore(v)
			}
			if s.cfg.ValDec == config.LitScore {
				s.bumpLitScore(l)
			}
			if cdl := s.dlevel[v]; cdl > bktrk {
				bktrk = cdl
				watchLit = len(newClause) - 1
			}
		}
		// With CB the trail interleaves levels: only stop on a marked
		// variable at the current level.
		var v int
		for t >= 0 {
			u = s.trail[t]
			v = u.Index()
			t--
			if s.marked[v] && s.dlevel[v] == s.dl {
				break
			}
		}
		s.marked[v] = false
		resolveNum--
		if resolveNum <= 0 {
			break
		}
		reason := s.clauses[s.antecedent[v]]
		current = current[:0]
		for _, l := range reason.lits {
			if l != u { // u is the pivot
				current = append(current, l)
			}
		}
	}
	for _, l := range newClause {
		s.marked[l.Index()] = false
	}
	negU := u.Not()
	newClause = append(newClause, negU)
	if s.cfg.VarDec == config.Minisat {
		s.varDecayActivity()
	}
	s.Stats.NbLearned++
	s.assertedLit = negU
	if len(newClause) == 1 {
		s.Stats.NbUnaryLearned++
		s.addUnary(negU)
		s.assertedAnte = noAntecedent
	} else {
		s.assertedAnte = s.addClause(newClause, watchLit, len(newClause)-1)
	}
	if s.log.IsLevelEnabled(logrus.DebugLevel) {
		s.log.Debugf("learned clause %q, backtrack level %d", litsCNF(newClause), bktrk)
	}
	if s.Stats.NbLearned%1000 == 0 {
		s.log.Infof("learned %d clauses", s.Stats.NbLearned)
	}
	return bktrk
}
