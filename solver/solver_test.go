package solver

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsat/pulsat/config"
	"github.com/pulsat/pulsat/dimacs"
)

func quietConfig() *config.Config {
	cfg := config.New()
	cfg.Logger.SetOutput(io.Discard)
	return cfg
}

func mustParse(t *testing.T, cnf string) *dimacs.Problem {
	t.Helper()
	pb, err := dimacs.Parse(strings.NewReader(cnf))
	require.NoError(t, err)
	return pb
}

const pigeonhole3in2 = `p cnf 6 9
1 2 0
3 4 0
5 6 0
-1 -3 0
-1 -5 0
-3 -5 0
-2 -4 0
-2 -6 0
-4 -6 0
`

func TestSolveScenarios(t *testing.T) {
	tests := []struct {
		name string
		cnf  string
		want Status
	}{
		{"single unit", "p cnf 1 1\n1 0\n", Sat},
		{"conflicting units", "p cnf 1 2\n1 0\n-1 0\n", Unsat},
		{"implication chain", "p cnf 3 3\n1 2 0\n-1 2 0\n-2 3 0\n", Sat},
		{"all polarities", "p cnf 3 4\n1 2 0\n-1 2 0\n1 -2 0\n-1 -2 0\n", Unsat},
		{"pigeonhole 3 in 2", pigeonhole3in2, Unsat},
	}
	for _, tt := range tests {
		for _, cb := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/cb=%v", tt.name, cb), func(t *testing.T) {
				cfg := quietConfig()
				cfg.EnableCB = cb
				s := New(mustParse(t, tt.cnf), cfg)
				require.Equal(t, tt.want, s.Solve())
				if tt.want == Sat {
					require.NoError(t, s.Validate())
				}
			})
		}
	}
}

func TestSingleUnitAssignment(t *testing.T) {
	s := New(mustParse(t, "p cnf 1 1\n1 0\n"), quietConfig())
	require.Equal(t, Sat, s.Solve())
	assert.Equal(t, []int{1}, s.Assignment())
}

func TestLearnsClauses(t *testing.T) {
	s := New(mustParse(t, "p cnf 3 4\n1 2 0\n-1 2 0\n1 -2 0\n-1 -2 0\n"), quietConfig())
	require.Equal(t, Unsat, s.Solve())
	assert.GreaterOrEqual(t, s.Stats.NbLearned, 1)
	assert.GreaterOrEqual(t, s.Stats.NbUnaryLearned, 1)
}

func TestPigeonholeWithSmallRestartThreshold(t *testing.T) {
	for _, cb := range []bool{false, true} {
		t.Run(fmt.Sprintf("cb=%v", cb), func(t *testing.T) {
			cfg := quietConfig()
			cfg.EnableCB = cb
			cfg.RestartLower = 2
			cfg.RestartUpper = 8
			s := New(mustParse(t, pigeonhole3in2), cfg)
			require.Equal(t, Unsat, s.Solve())
		})
	}
}

// random3SAT builds a pseudo-random 3-SAT instance. At a clause/variable
// ratio of 3.0 such instances are almost always satisfiable.
func random3SAT(rnd *rand.Rand, nbVars, nbClauses int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %d %d\n", nbVars, nbClauses)
	for i := 0; i < nbClauses; i++ {
		vars := rnd.Perm(nbVars)[:3]
		for _, v := range vars {
			l := v + 1
			if rnd.Intn(2) == 0 {
				l = -l
			}
			fmt.Fprintf(&sb, "%d ", l)
		}
		sb.WriteString("0\n")
	}
	return sb.String()
}

func TestRandom3SATBothModes(t *testing.T) {
	cnf := random3SAT(rand.New(rand.NewSource(42)), 50, 150)
	results := make(map[bool]Status)
	for _, cb := range []bool{false, true} {
		cfg := quietConfig()
		cfg.EnableCB = cb
		s := New(mustParse(t, cnf), cfg)
		res := s.Solve()
		require.Contains(t, []Status{Sat, Unsat}, res)
		if res == Sat {
			require.NoError(t, s.Validate())
		}
		require.NoError(t, s.checkWatches())
		results[cb] = res
	}
	assert.Equal(t, results[false], results[true], "CB and NCB must agree on the verdict")
}

func TestDeterminism(t *testing.T) {
	run := func() (Status, Stats) {
		s := New(mustParse(t, pigeonhole3in2), quietConfig())
		return s.Solve(), s.Stats
	}
	res1, stats1 := run()
	res2, stats2 := run()
	assert.Equal(t, res1, res2)
	assert.Equal(t, stats1, stats2)
}

func TestTimeout(t *testing.T) {
	cfg := quietConfig()
	cfg.Timeout = time.Nanosecond
	s := New(mustParse(t, pigeonhole3in2), cfg)
	assert.Equal(t, Timeout, s.Solve())
}

func TestValidateDetectsCorruption(t *testing.T) {
	s := New(mustParse(t, "p cnf 2 1\n1 2 0\n"), quietConfig())
	require.Equal(t, Sat, s.Solve())
	require.NoError(t, s.Validate())
	// Flip every assignment: the clause can no longer be satisfied.
	s.state[0] = False
	s.state[1] = False
	assert.Error(t, s.Validate())
}

func TestValidateRequiresSat(t *testing.T) {
	s := New(mustParse(t, "p cnf 1 2\n1 0\n-1 0\n"), quietConfig())
	require.Equal(t, Unsat, s.Solve())
	assert.Error(t, s.Validate())
}

func TestTrailHoldsEachVarOnce(t *testing.T) {
	s := New(mustParse(t, "p cnf 3 3\n1 2 0\n-1 2 0\n-2 3 0\n"), quietConfig())
	require.Equal(t, Sat, s.Solve())
	seen := make(map[int]int)
	for _, l := range s.trail {
		seen[l.Index()]++
	}
	for v, n := range seen {
		assert.Equal(t, 1, n, "variable %d occurs %d times in the trail", v+1, n)
	}
}
