// Package config holds the solver options and their command-line bindings.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// VarDecHeuristic selects how the next decision variable is picked.
type VarDecHeuristic int8

// Minisat is the only variable-decision heuristic: iterate over variables in
// descending activity order.
const Minisat VarDecHeuristic = iota

func (h *VarDecHeuristic) String() string {
	return "minisat"
}

// Set implements pflag.Value.
func (h *VarDecHeuristic) Set(s string) error {
	switch s {
	case "minisat":
		*h = Minisat
		return nil
	}
	return errors.Errorf("unknown variable-decision heuristic %q (valid: minisat)", s)
}

// Type implements pflag.Value.
func (h *VarDecHeuristic) Type() string {
	return "heuristic"
}

// ValDecHeuristic selects the polarity of the decision literal.
type ValDecHeuristic int8

const (
	// PhaseSaving picks the literal matching the variable's last assigned polarity.
	PhaseSaving ValDecHeuristic = iota
	// LitScore picks the polarity whose literal occurs more often in the input.
	LitScore
)

func (h *ValDecHeuristic) String() string {
	if *h == LitScore {
		return "litscore"
	}
	return "phasesaving"
}

// Set implements pflag.Value.
func (h *ValDecHeuristic) Set(s string) error {
	switch s {
	case "phasesaving":
		*h = PhaseSaving
		return nil
	case "litscore":
		*h = LitScore
		return nil
	}
	return errors.Errorf("unknown value-decision heuristic %q (valid: phasesaving, litscore)", s)
}

// Type implements pflag.Value.
func (h *ValDecHeuristic) Type() string {
	return "heuristic"
}

// Config groups every tunable of the solver and its CLI.
type Config struct {
	VarDec         VarDecHeuristic
	ValDec         ValDecHeuristic
	EnableCB       bool // chronological backtracking
	Verbosity      int
	Timeout        time.Duration // 0 means no timeout
	AssignmentFile string

	VarDecay          float64
	RescaleThreshold  float64
	RestartLower      int
	RestartUpper      int
	RestartMultiplier float64

	Logger *logrus.Logger
}

// New returns a Config with the default tuning.
func New() *Config {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return &Config{
		VarDec:            Minisat,
		ValDec:            PhaseSaving,
		AssignmentFile:    "assignment.txt",
		VarDecay:          0.95,
		RescaleThreshold:  1e100,
		RestartLower:      100,
		RestartUpper:      1000,
		RestartMultiplier: 1.5,
		Logger:            logger,
	}
}

// AddFlags binds the configuration to a flag set.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.Var(&c.VarDec, "var-dec", "variable-decision heuristic (minisat)")
	fs.Var(&c.ValDec, "val-dec", "value-decision heuristic (phasesaving, litscore)")
	fs.BoolVar(&c.EnableCB, "cb", false, "enable chronological backtracking")
	fs.IntVarP(&c.Verbosity, "verbose", "v", 0, "verbosity level (0-2)")
	fs.StringVar(&c.AssignmentFile, "assignment", c.AssignmentFile, "path of the assignment file written on SAT")
	fs.Float64Var(&c.VarDecay, "decay", c.VarDecay, "variable activity decay")
	fs.IntVar(&c.RestartLower, "restart-lower", c.RestartLower, "initial and lower restart threshold")
	fs.IntVar(&c.RestartUpper, "restart-upper", c.RestartUpper, "initial restart threshold ceiling")
	fs.Float64Var(&c.RestartMultiplier, "restart-mult", c.RestartMultiplier, "restart threshold multiplier")
}

// SetupLogger adjusts the logger level to the configured verbosity.
func (c *Config) SetupLogger() {
	switch {
	case c.Verbosity <= 0:
		c.Logger.SetLevel(logrus.WarnLevel)
	case c.Verbosity == 1:
		c.Logger.SetLevel(logrus.InfoLevel)
	default:
		c.Logger.SetLevel(logrus.DebugLevel)
	}
}
