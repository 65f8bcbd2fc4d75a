package solver

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pulsat/pulsat/lit"
)

// nextNotFalse repairs the falsified watch of c if possible. For non-binary
// clauses it scans for a replacement literal that is not false and is not the
// other watch; binary clauses have nothing to swap to. When no replacement
// exists the other watch decides the clause's fate.
func (s *Solver) nextNotFalse(c *Clause, otherWatch lit.Lit, binary bool) (clauseState, int) {
	if !binary {
		for i, l := range c.lits {
			if s.litState(l) != lUnsat && l != otherWatch {
				return cUndef, i
			}
		}
	}
	switch s.litState(otherWatch) {
	case lUnsat:
		return cUnsat, -1
	case lUnassigned:
		return cUnit, -1
	default:
		return cSat, -1
	}
}

// bcp drains the trail from qhead, walking the watch list of each newly
// falsified literal and repairing, propagating or conflicting per clause.
// Clauses that keep their watch stay in the list in order; clauses that
// migrated move to the new literal's list. When a conflict is hit mid-list,
// the not-yet-visited entries are kept as they are.
func (s *Solver) bcp() propResult {
	for s.qhead < len(s.trail) {
		negated := s.trail[s.qhead].Not()
		s.qhead++
		if s.log.IsLevelEnabled(logrus.DebugLevel) {
			s.log.Debugf("propagating %d", negated.Not().Int())
		}
		wl := s.watches[negated]
		// The kept entries are written into a same-size buffer at a
		// descending index, so that splicing the tail preserves their order.
		newList := make([]int, len(wl))
		idx := len(wl) - 1
		conflict := false
		for i := len(wl) - 1; i >= 0 && !conflict; i-- {
			ci := wl[i]
			c := s.clauses[ci]
			isLeft := c.lwLit() == negated
			otherWatch := c.lwLit()
			if isLeft {
				otherWatch = c.rwLit()
			}
			res, newPos := s.nextNotFalse(c, otherWatch, c.Len() == 2)
			if res != cUndef {
				newList[idx] = ci
				idx--
			}
			switch res {
			case cUnsat:
				if s.dl == 0 {
					return propUnsat
				}
				s.conflictIdx = ci
				// Entries before i were not re-examined; they stay watched here.
				for j := i - 1; j >= 0; j-- {
					newList[idx] = wl[j]
					idx--
				}
				conflict = true
			case cSat:
				// Nothing to do when the other watch is satisfied.
			case cUnit:
				impliedLevel := s.dl
				if s.cfg.EnableCB {
					// The implication holds at the highest level among the
					// supporting literals, which can be below dl.
					maxLevel := 0
					for _, l := range c.lits {
						if l == otherWatch {
							continue
						}
						if lv := s.dlevel[l.Index()]; lv > maxLevel {
							maxLevel = lv
						}
					}
					impliedLevel = maxLevel
				}
				s.assertLit(otherWatch, impliedLevel)
				s.antecedent[otherWatch.Index()] = ci
			default: // replacing the watch
				if isLeft {
					c.lw = newPos
				} else {
					c.rw = newPos
				}
				newLit := c.lits[newPos]
				s.watches[newLit] = append(s.watches[newLit], ci)
			}
		}
		s.watches[negated] = newList[idx+1:]
		if conflict {
			return propConflict
		}
	}
	return propNone
}

// removeWatch drops clause ci from l's watch list.
func (s *Solver) removeWatch(l lit.Lit, ci int) {
	wl := s.watches[l]
	for i, idx := range wl {
		if idx == ci {
			s.watches[l] = append(wl[:i], wl[i+1:]...)
			return
		}
	}
}

// checkWatches verifies that every stored clause has two distinct watched
// positions, each listed exactly once in the watch index, and that the
// clause appears nowhere else in the index.
func (s *Solver) checkWatches() error {
	for ci, c := range s.clauses {
		if c.lw == c.rw {
			return errors.Errorf("clause %d: identical watch positions", ci)
		}
		if c.lwLit() == c.rwLit() {
			return errors.Errorf("clause %d: identical watched literals", ci)
		}
		for _, wl := range []lit.Lit{c.lwLit(), c.rwLit()} {
			n := 0
			for _, idx := range s.watches[wl] {
				if idx == ci {
					n++
				}
			}
			if n != 1 {
				return errors.Errorf("clause %d: watched literal %d listed %d times", ci, wl.Int(), n)
			}
		}
		total := 0
		for _, wl := range s.watches {
			for _, idx := range wl {
				if idx == ci {
					total++
				}
			}
		}
		if total != 2 {
			return errors.Errorf("clause %d appears %d times in the watch index", ci, total)
		}
	}
	return nil
}
