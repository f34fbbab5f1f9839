package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/knots-cli/knots/internal/output"
	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Fail when a function exceeds the complexity threshold",
	Long: `Analyzes the given C files (directories are scanned recursively), or the
files staged in git with --staged, and exits with status 2 when any function's
max(mccabe, cognitive) exceeds the threshold.

Use it as a pre-commit hook:
  knots check --staged

Examples:
  knots check src
  knots check --threshold 15 src/parser.c`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("staged", false, "Check the C files staged in the current git repository")
	checkCmd.Flags().Int("threshold", 0, "Maximum allowed max(mccabe, cognitive) (default thresholds.max_complexity)")
	checkCmd.Flags().Bool("no-cache", false, "Disable the result cache")
	addOutputFlags(checkCmd)
	addRemoteFlags(checkCmd)

	rootCmd.AddCommand(checkCmd)
}

// gateReport is the structured form of a check run.
type gateReport struct {
	Threshold  int                  `json:"threshold" yaml:"threshold"`
	Files      int                  `json:"files" yaml:"files"`
	Passed     bool                 `json:"passed" yaml:"passed"`
	Violations []analysis.Violation `json:"violations" yaml:"violations"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	cfg := svc.Config()

	staged, _ := cmd.Flags().GetBool("staged")
	threshold, _ := cmd.Flags().GetInt("threshold")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if threshold <= 0 {
		threshold = cfg.Thresholds.MaxComplexity
	}

	var files []string
	if staged {
		files, err = svc.StagedFiles(".")
	} else {
		paths, cleanup, _, rerr := resolvePaths(cmd.Context(), cmd, args)
		if rerr != nil {
			return rerr
		}
		defer cleanup()
		files, err = svc.Files(paths, true)
	}
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No C source files to check")
		return nil
	}

	an, err := svc.Analyze(cmd.Context(), files, analysis.Options{NoCache: noCache})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logSkipped(an)

	violations := svc.Gate(an, threshold)
	result := gateReport{
		Threshold:  threshold,
		Files:      len(files),
		Passed:     len(violations) == 0,
		Violations: violations,
	}
	if result.Violations == nil {
		result.Violations = []analysis.Violation{}
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format().Structured() {
		if err := formatter.Output(result); err != nil {
			return err
		}
	} else {
		writeGateText(formatter, result)
	}

	if !result.Passed {
		return errGateFailed
	}
	return nil
}

func writeGateText(f *output.Formatter, r gateReport) {
	w := f.Writer()
	for _, v := range r.Violations {
		line := v.String()
		if f.Colored() {
			line = output.SeverityColor("fail", line)
		}
		fmt.Fprintln(w, line)
	}
	if r.Passed {
		f.Success("%d file(s) checked, no function above complexity %d", r.Files, r.Threshold)
		return
	}
	f.Error("%d function(s) above complexity %d", len(r.Violations), r.Threshold)
}
