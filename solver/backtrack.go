package solver

import (
	"github.com/sirupsen/logrus"

	"github.com/pulsat/pulsat/config"
	"github.com/pulsat/pulsat/lit"
)

// backtrackNCB is the non-chronological backtrack to level k. Everything
// above k is undone, the trail is truncated at the level separator, and the
// asserting literal of the last learned clause is asserted at k.
func (s *Solver) backtrackNCB(k int) {
	for len(s.separators) <= k+1 {
		s.separators = append(s.separators, len(s.trail))
	}
	for len(s.conflictsAtDl) <= k {
		s.conflictsAtDl = append(s.conflictsAtDl, s.Stats.NbLearned)
	}
	if k > 0 && s.Stats.NbLearned-s.conflictsAtDl[k] > s.restartThreshold {
		s.restart()
		return
	}
	for _, l := range s.trail[s.separators[k+1]:] {
		v := l.Index()
		if s.dlevel[v] != 0 {
			s.state[v] = Unassigned
			if s.cfg.VarDec == config.Minisat && s.activity[v] > s.currActivity {
				s.currActivity = s.activity[v]
			}
		}
	}
	if s.cfg.VarDec == config.Minisat {
		s.resetCursors = true
	}
	s.trail = s.trail[:s.separators[k+1]]
	s.qhead = len(s.trail)
	s.dl = k
	if len(s.decisionLits) > k+1 {
		s.decisionLits = s.decisionLits[:k+1]
	}
	s.assertLit(s.assertedLit, k)
	s.antecedent[s.assertedLit.Index()] = s.assertedAnte
	s.conflictIdx = noAntecedent
	s.separators[k+1] = len(s.trail)
}

// backtrackCB is the chronological backtrack to level k. Only assignments
// above k are undone; since the trail can interleave levels under CB, the
// kept entries are filtered in order rather than truncated. The asserting
// literal is asserted at blevel, the learned clause's implication level,
// which can be below k.
func (s *Solver) backtrackCB(k, blevel int) {
	if k > 0 && len(s.conflictsAtDl) > k && s.Stats.NbLearned-s.conflictsAtDl[k] > s.restartThreshold {
		s.restart()
		return
	}
	s.undoAbove(k)
	s.qhead = 0
	s.dl = k
	if len(s.decisionLits) > k+1 {
		s.decisionLits = s.decisionLits[:k+1]
	}
	if s.cfg.VarDec == config.Minisat {
		s.resetCursors = true
	}
	s.assertLit(s.assertedLit, blevel)
	s.antecedent[s.assertedLit.Index()] = s.assertedAnte
	s.conflictIdx = noAntecedent
	s.recomputeSeparators()
}

// backtrackCBPreserve undoes every assignment above k without asserting
// anything. Used before analyze, and in the conflicting-clause-becomes-unit
// shortcut.
func (s *Solver) backtrackCBPreserve(k int) {
	s.undoAbove(k)
	s.qhead = 0
	s.dl = k
	if len(s.decisionLits) > k+1 {
		s.decisionLits = s.decisionLits[:k+1]
	}
	if s.cfg.VarDec == config.Minisat {
		s.resetCursors = true
	}
	s.recomputeSeparators()
}

// undoAbove unassigns every trail variable bound above level k, keeping the
// rest of the trail in order.
func (s *Solver) undoAbove(k int) {
	keep := s.trail[:0]
	for _, l := range s.trail {
		v := l.Index()
		if s.dlevel[v] <= k {
			keep = append(keep, l)
			continue
		}
		s.state[v] = Unassigned
		if s.cfg.VarDec == config.Minisat && s.activity[v] > s.currActivity {
			s.currActivity = s.activity[v]
		}
	}
	s.trail = keep
}

// recomputeSeparators rebuilds the per-level separators after a chronological
// backtrack left the trail non-contiguous, by locating each stored decision
// literal on the new trail.
func (s *Solver) recomputeSeparators() {
	s.separators = append(s.separators[:0], 0)
	s.conflictsAtDl = append(s.conflictsAtDl[:0], 0)
	searchFrom := 0
	for level := 1; level <= s.dl; level++ {
		dLit := lit.Undef
		if len(s.decisionLits) > level {
			dLit = s.decisionLits[level]
		}
		pos := len(s.trail)
		for i := searchFrom; i < len(s.trail); i++ {
			if s.trail[i] == dLit {
				pos = i
				break
			}
		}
		s.separators = append(s.separators, pos)
		s.conflictsAtDl = append(s.conflictsAtDl, s.Stats.NbLearned)
		if pos < len(s.trail) {
			searchFrom = pos + 1
		} else {
			searchFrom = len(s.trail)
		}
	}
	s.separators = append(s.separators, len(s.trail))
}

// handleConflict inspects the conflicting clause's literal levels before
// analysis, as chronological backtracking allows. If exactly one literal
// sits above all others, backtracking below it makes the clause unit: the
// conflict is resolved without learning anything. The watch invariant must
// be restored first, because both watches can be false at levels below the
// backtrack target.
func (s *Solver) handleConflict() conflictAction {
	cc := s.clauses[s.conflictIdx]
	maxLevel, secondLevel, maxCount := 0, 0, 0
	maxLevelLit := lit.Undef
	for _, l := range cc.lits {
		lv := s.dlevel[l.Index()]
		if lv > maxLevel {
			secondLevel = maxLevel
			maxLevel = lv
			maxCount = 1
			maxLevelLit = l
		} else if lv == maxLevel {
			maxCount++
		} else if lv > secondLevel {
			secondLevel = lv
		}
	}
	if maxLevel == 0 {
		// The clause is falsified by level-0 assignments alone.
		return conflictUnsat
	}
	if maxCount == 1 && maxLevel > secondLevel {
		ci := s.conflictIdx
		btLevel := secondLevel
		s.backtrackCBPreserve(btLevel)
		c := s.clauses[ci]
		if maxLevelLit != c.lwLit() && maxLevelLit != c.rwLit() {
			// Both watches may be false at levels <= btLevel; promote the
			// implied literal to a watch so BCP sees the clause again.
			mlIdx := c.find(maxLevelLit)
			s.removeWatch(c.lwLit(), ci)
			c.lw = mlIdx
			s.watches[maxLevelLit] = append(s.watches[maxLevelLit], ci)
		}
		s.assertLit(maxLevelLit, btLevel)
		s.antecedent[maxLevelLit.Index()] = ci
		s.conflictIdx = noAntecedent
		if s.log.IsLevelEnabled(logrus.DebugLevel) {
			s.log.Debugf("conflict resolved chronologically: %d @ %d", maxLevelLit.Int(), btLevel)
		}
		return conflictContinue
	}
	if maxCount > 1 && maxLevel < s.dl {
		// Several literals share the top level: analyze there.
		s.backtrackCBPreserve(maxLevel)
	}
	return conflictAnalyze
}

// restart abandons the current decision prefix: every variable above level 0
// is unassigned and the trail is cleared, while learned clauses and activity
// scores survive. The threshold grows geometrically under a ceiling that
// itself grows geometrically.
func (s *Solver) restart() {
	s.restartThreshold = int(float64(s.restartThreshold) * s.cfg.RestartMultiplier)
	if s.restartThreshold > s.restartUpper {
		s.restartThreshold = s.cfg.RestartLower
		s.restartUpper = int(float64(s.restartUpper) * s.cfg.RestartMultiplier)
		s.log.Infof("restart: new upper bound %d", s.restartUpper)
	}
	s.log.Infof("restart: new threshold %d", s.restartThreshold)
	s.Stats.NbRestarts++
	for v := 0; v < s.nbVars; v++ {
		if s.dlevel[v] > 0 {
			s.state[v] = Unassigned
			s.dlevel[v] = 0
		}
	}
	s.trail = s.trail[:0]
	s.qhead = 0
	if s.cfg.VarDec == config.Minisat {
		// The next decide repositions the cursors at the top of the map.
		s.currActivity = 0
		s.resetCursors = true
	}
	s.reset()
}
