package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pulsat/pulsat/config"
	"github.com/pulsat/pulsat/dimacs"
	"github.com/pulsat/pulsat/solver"
)

// Exit codes: 0 on normal completion (SAT, UNSAT or TIMEOUT), 1 on
// input/parse error, 3 on assignment-validation failure.
const (
	exitOK           = 0
	exitInputError   = 1
	exitValidateFail = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.New()
	var timeoutSecs int
	code := exitOK
	cmd := &cobra.Command{
		Use:           "pulsat [flags] <input.cnf>",
		Short:         "pulsat is a CDCL SAT solver for DIMACS CNF formulas",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg.Timeout = time.Duration(timeoutSecs) * time.Second
			cfg.SetupLogger()
			var err error
			code, err = solve(cfg, args[0])
			return err
		},
	}
	cfg.AddFlags(cmd.Flags())
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "timeout in seconds (0 = none)")
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if code == exitOK {
			code = exitInputError
		}
	}
	return code
}

func solve(cfg *config.Config, path string) (int, error) {
	log := cfg.Logger
	f, err := os.Open(path)
	if err != nil {
		return exitInputError, errors.Wrapf(err, "cannot read input file %q", path)
	}
	defer f.Close()
	pb, err := dimacs.Parse(f)
	if err != nil {
		return exitInputError, errors.Wrapf(err, "could not parse %q", path)
	}
	log.Infof("vars: %d, clauses: %d", pb.NbVars, len(pb.Clauses))

	s := solver.New(pb, cfg)
	start := time.Now()
	res := s.Solve()
	log.Infof("solved in %v", time.Since(start))
	log.Info(s.Stats.String())

	switch res {
	case solver.Sat:
		if err := s.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "assignment validation failed: %v\n", err)
			return exitValidateFail, nil
		}
		if err := writeAssignment(cfg.AssignmentFile, s.Assignment()); err != nil {
			return exitInputError, err
		}
		log.Infof("solution in %s", cfg.AssignmentFile)
	case solver.Timeout:
		log.Warn("time budget expired")
	}
	printVerdict(res)
	return exitOK, nil
}

// printVerdict writes the final verdict on stdout, colored when it is a
// terminal.
func printVerdict(res solver.Status) {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	switch res {
	case solver.Sat:
		color.New(color.FgGreen, color.Bold).Println(res)
	case solver.Unsat:
		color.New(color.FgRed, color.Bold).Println(res)
	default:
		color.New(color.FgYellow, color.Bold).Println(res)
	}
}

// writeAssignment writes the model as space-separated signed DIMACS
// literals, one per variable.
func writeAssignment(path string, model []int) error {
	vals := make([]string, len(model))
	for i, v := range model {
		vals[i] = fmt.Sprintf("%d", v)
	}
	if err := os.WriteFile(path, []byte(strings.Join(vals, " ")+"\n"), 0644); err != nil {
		return errors.Wrapf(err, "cannot write assignment file %q", path)
	}
	return nil
}
