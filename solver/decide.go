package solver

import (
	"github.com/pulsat/pulsat/config"
	"github.com/pulsat/pulsat/lit"
)

// getVal picks the polarity for a decision variable.
func (s *Solver) getVal(v int) lit.Lit {
	switch s.cfg.ValDec {
	case config.LitScore:
		pos, neg := lit.New(v, false), lit.New(v, true)
		if s.litScore[pos] > s.litScore[neg] {
			return pos
		}
		return neg
	default: // phase saving
		return lit.New(v, s.prevState[v] != True)
	}
}

// decide picks the next decision literal from the activity-ordered view of
// unassigned variables and opens a new decision level for it. Returns Sat
// when no unassigned variable remains.
//
// The cursors persist across calls; after a backtrack or restart they are
// repositioned at currActivity, so decide does not sweep the whole map every
// time.
func (s *Solver) decide() Status {
	best := lit.Undef
	if s.cfg.VarDec == config.Minisat {
		if s.resetCursors {
			s.scores.resetCursor(s.currActivity)
			s.resetCursors = false
		}
		for {
			v, score, ok := s.scores.next()
			if !ok {
				break
			}
			if s.state[v] == Unassigned {
				s.currActivity = score
				best = s.getVal(v)
				break
			}
		}
	}
	if best == lit.Undef {
		return Sat
	}
	s.dl++
	if s.dl > s.Stats.MaxDl {
		s.Stats.MaxDl = s.dl
	}
	// CB backtracking may have shrunk the per-level slices; grow them back
	// before indexing.
	for len(s.separators) <= s.dl {
		s.separators = append(s.separators, len(s.trail))
	}
	for len(s.conflictsAtDl) <= s.dl {
		s.conflictsAtDl = append(s.conflictsAtDl, s.Stats.NbLearned)
	}
	for len(s.decisionLits) <= s.dl {
		s.decisionLits = append(s.decisionLits, lit.Undef)
	}
	s.separators[s.dl] = len(s.trail)
	s.conflictsAtDl[s.dl] = s.Stats.NbLearned
	s.assertLit(best, s.dl)
	s.decisionLits[s.dl] = best
	s.Stats.NbDecisions++
	return Indet
}
