package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsat/pulsat/lit"
)

func TestRestartControllerSchedule(t *testing.T) {
	cfg := quietConfig()
	cfg.RestartLower = 100
	cfg.RestartUpper = 1000
	cfg.RestartMultiplier = 1.5
	s := New(mustParse(t, "p cnf 2 1\n1 2 0\n"), cfg)
	want := []int{150, 225, 337, 505, 757}
	for _, th := range want {
		s.restart()
		assert.Equal(t, th, s.restartThreshold)
		assert.Equal(t, 1000, s.restartUpper)
	}
	// The next step would exceed the ceiling: reset to lower, raise the ceiling.
	s.restart()
	assert.Equal(t, 100, s.restartThreshold)
	assert.Equal(t, 1500, s.restartUpper)
	assert.Equal(t, 6, s.Stats.NbRestarts)
}

func TestRestartPreservesUnitsAndLearned(t *testing.T) {
	s := New(mustParse(t, "p cnf 3 2\n1 0\n2 3 0\n"), quietConfig())
	nbClauses := len(s.clauses)
	// Fake a decision so there is something to undo.
	s.dl = 1
	s.separators = append(s.separators, len(s.trail))
	s.conflictsAtDl = append(s.conflictsAtDl, 0)
	s.decisionLits = append(s.decisionLits, lit.NewFromInt(2))
	s.assertLit(lit.NewFromInt(2), 1)
	s.restart()
	assert.Equal(t, 0, s.dl)
	assert.Empty(t, s.trail)
	assert.Equal(t, 0, s.qhead)
	assert.Equal(t, True, s.state[0], "level-0 unit must survive a restart")
	assert.Equal(t, Unassigned, s.state[1])
	assert.Equal(t, nbClauses, len(s.clauses))
	assert.True(t, s.resetCursors)
}

// cbSolver sets up two decision levels by hand: -1 and -2 at level 1,
// -3 at level 2, over the clauses (1 2 3) and (1 2 4).
func cbSolver(t *testing.T) *Solver {
	t.Helper()
	cfg := quietConfig()
	cfg.EnableCB = true
	s := New(mustParse(t, "p cnf 4 2\n1 2 3 0\n1 2 4 0\n"), cfg)
	s.dl = 1
	s.separators = append(s.separators, len(s.trail))
	s.conflictsAtDl = append(s.conflictsAtDl, 0)
	s.decisionLits = append(s.decisionLits, lit.NewFromInt(-1))
	s.assertLit(lit.NewFromInt(-1), 1)
	s.assertLit(lit.NewFromInt(-2), 1)
	s.dl = 2
	s.separators = append(s.separators, len(s.trail))
	s.conflictsAtDl = append(s.conflictsAtDl, 0)
	s.decisionLits = append(s.decisionLits, lit.NewFromInt(-3))
	s.assertLit(lit.NewFromInt(-3), 2)
	return s
}

func TestHandleConflictBecomesUnit(t *testing.T) {
	// Clause (1 2 3) is falsified with 3 as its only top-level literal:
	// backtracking to level 1 makes it unit, no analysis needed. The clause
	// watches 1 and 2, both false at level 1, so the watch must be repaired.
	s := cbSolver(t)
	s.conflictIdx = 0
	require.Equal(t, conflictContinue, s.handleConflict())
	assert.Equal(t, 1, s.dl)
	v3 := 2
	assert.Equal(t, True, s.state[v3])
	assert.Equal(t, 1, s.dlevel[v3])
	assert.Equal(t, 0, s.antecedent[v3])
	c := s.clauses[0]
	repaired := c.lwLit() == lit.NewFromInt(3) || c.rwLit() == lit.NewFromInt(3)
	assert.True(t, repaired, "the implied literal must be watched")
	require.NoError(t, s.checkWatches())
	assert.Equal(t, lit.NewFromInt(3), s.trail[len(s.trail)-1])
	assert.Equal(t, noAntecedent, s.conflictIdx)
	// BCP restarts from scratch after a chronological backtrack.
	assert.Equal(t, 0, s.qhead)
}

func TestHandleConflictFallsBackToAnalysis(t *testing.T) {
	// Both 2 and 3 sit at the top level: nothing to shortcut.
	s := cbSolver(t)
	s.dlevel[1] = 2
	s.conflictIdx = 0
	assert.Equal(t, conflictAnalyze, s.handleConflict())
	assert.Equal(t, 2, s.dl)
}

func TestRecomputeSeparators(t *testing.T) {
	s := cbSolver(t)
	s.recomputeSeparators()
	require.Equal(t, []int{0, 0, 2, 3}, s.separators)
	assert.Equal(t, lit.NewFromInt(-1), s.trail[s.separators[1]])
	assert.Equal(t, lit.NewFromInt(-3), s.trail[s.separators[2]])
}

func TestBacktrackNCBRestoresState(t *testing.T) {
	s := cbSolver(t)
	// Pretend a unary clause was just learned.
	s.assertedLit = lit.NewFromInt(4)
	s.assertedAnte = noAntecedent
	s.Stats.NbLearned = 1
	s.backtrackNCB(0)
	assert.Equal(t, 0, s.dl)
	assert.Equal(t, Unassigned, s.state[0])
	assert.Equal(t, Unassigned, s.state[1])
	assert.Equal(t, Unassigned, s.state[2])
	assert.Equal(t, True, s.state[3])
	assert.Equal(t, 0, s.dlevel[3])
	require.Equal(t, []lit.Lit{lit.NewFromInt(4)}, s.trail)
	// The asserting literal is left for BCP to propagate.
	assert.Equal(t, len(s.trail)-1, s.qhead)
}
