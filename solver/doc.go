// Package solver provides a CDCL (Conflict-Driven Clause Learning) SAT
// solver.
//
// The solver propagates with two watched literals per clause, learns a
// first-UIP clause on each conflict, and backtracks either
// non-chronologically (the default) or chronologically. Decisions follow the
// MINISAT activity order; the polarity comes from phase saving or literal
// occurrence counts. Restarts follow a geometric schedule whose ceiling
// itself grows geometrically.
//
// Typical use:
//
//	pb, err := dimacs.Parse(f)
//	if err != nil { ... }
//	s := solver.New(pb, nil)
//	if s.Solve() == solver.Sat {
//		model := s.Assignment()
//		...
//	}
package solver
