package solver

import "fmt"

// Stats are statistics about the resolution of the problem.
// They are provided for information purpose only.
type Stats struct {
	NbDecisions    int
	NbConflicts    int // How many conflicts BCP hit
	NbLearned      int // How many clauses were learned
	NbUnaryLearned int // How many unit clauses were learned
	NbAssignments  int
	NbRestarts     int
	MaxDl          int // Deepest decision level reached
}

func (st Stats) String() string {
	return fmt.Sprintf(
		"decisions: %d, conflicts: %d, learned: %d (%d units), assignments: %d, restarts: %d, max level: %d",
		st.NbDecisions, st.NbConflicts, st.NbLearned, st.NbUnaryLearned,
		st.NbAssignments, st.NbRestarts, st.MaxDl,
	)
}
