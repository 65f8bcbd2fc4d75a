package solver

import (
	"sort"

	"github.com/pulsat/pulsat/lit"
)

// A bucket holds every variable currently at the same activity score.
// Variables are kept sorted so that iteration order is deterministic.
type bucket struct {
	score float64
	vars  []int
}

// A scoreMap is an ordered view of variables by descending activity, plus the
// pair of cursors the decision heuristic resumes from. It is strongly
// inspired from Minisat's activity ordering, reworked so that decide can
// restart below a known score instead of sweeping from the top.
type scoreMap struct {
	buckets []bucket // Sorted by descending score.
	outer   int      // Current bucket.
	inner   int      // Current position within the bucket.
}

// locate returns the index of the first bucket whose score is <= score.
func (sm *scoreMap) locate(score float64) int {
	return sort.Search(len(sm.buckets), func(i int) bool { return sm.buckets[i].score <= score })
}

// insert adds v to the bucket for score, creating the bucket if needed.
func (sm *scoreMap) insert(v int, score float64) {
	i := sm.locate(score)
	if i == len(sm.buckets) || sm.buckets[i].score != score {
		sm.buckets = append(sm.buckets, bucket{})
		copy(sm.buckets[i+1:], sm.buckets[i:])
		sm.buckets[i] = bucket{score: score}
	}
	b := &sm.buckets[i]
	j := sort.Search(len(b.vars), func(k int) bool { return b.vars[k] >= v })
	if j < len(b.vars) && b.vars[j] == v {
		return
	}
	b.vars = append(b.vars, 0)
	copy(b.vars[j+1:], b.vars[j:])
	b.vars[j] = v
}

// remove deletes v from the bucket for score, deleting the bucket if it
// becomes empty.
func (sm *scoreMap) remove(v int, score float64) {
	i := sm.locate(score)
	if i == len(sm.buckets) || sm.buckets[i].score != score {
		return
	}
	b := &sm.buckets[i]
	j := sort.Search(len(b.vars), func(k int) bool { return b.vars[k] >= v })
	if j == len(b.vars) || b.vars[j] != v {
		return
	}
	b.vars = append(b.vars[:j], b.vars[j+1:]...)
	if len(b.vars) == 0 {
		sm.buckets = append(sm.buckets[:i], sm.buckets[i+1:]...)
	}
}

// resetCursor positions the cursors at the first bucket whose score is not
// above where, or at the top of the map when where is 0.
func (sm *scoreMap) resetCursor(where float64) {
	if where == 0 {
		sm.outer = 0
	} else {
		sm.outer = sm.locate(where)
	}
	sm.inner = 0
}

// next yields the next variable in descending score order, advancing the
// cursors. ok is false once the map is exhausted.
func (sm *scoreMap) next() (v int, score float64, ok bool) {
	for sm.outer < len(sm.buckets) {
		b := &sm.buckets[sm.outer]
		if sm.inner < len(b.vars) {
			v = b.vars[sm.inner]
			sm.inner++
			return v, b.score, true
		}
		sm.outer++
		sm.inner = 0
	}
	return 0, 0, false
}

// rescale divides every score by threshold and rebuilds the map, merging
// buckets that collide after rounding.
func (sm *scoreMap) rescale(threshold float64) {
	out := sm.buckets[:0]
	for _, b := range sm.buckets {
		scaled := b.score / threshold
		if n := len(out); n > 0 && out[n-1].score == scaled {
			out[n-1].vars = mergeVars(out[n-1].vars, b.vars)
		} else {
			out = append(out, bucket{score: scaled, vars: b.vars})
		}
	}
	sm.buckets = out
}

// mergeVars merges two sorted variable slices into a new sorted slice.
func mergeVars(a, b []int) []int {
	merged := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

// bumpVarScore adds the current increment to v's activity and moves it to its
// new bucket, rescaling every score when the threshold is exceeded.
func (s *Solver) bumpVarScore(v int) {
	score := s.activity[v]
	if score > 0 {
		s.scores.remove(v, score)
	}
	newScore := score + s.varInc
	s.activity[v] = newScore
	if newScore > s.cfg.RescaleThreshold {
		s.rescaleScores()
		newScore = s.activity[v]
	}
	s.scores.insert(v, newScore)
}

// rescaleScores divides every activity, the increment and the decision cursor
// by the rescale threshold.
func (s *Solver) rescaleScores() {
	s.log.Debug("rescaling activity scores")
	t := s.cfg.RescaleThreshold
	for v := range s.activity {
		s.activity[v] /= t
	}
	s.varInc /= t
	s.currActivity /= t
	s.scores.rescale(t)
	s.resetCursors = true
}

// bumpLitScore counts one more occurrence of l.
func (s *Solver) bumpLitScore(l lit.Lit) {
	s.litScore[l]++
}

// varDecayActivity increases the importance of variables participating in
// future conflicts.
func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.cfg.VarDecay
}
