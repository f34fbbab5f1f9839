package main

import (
	"github.com/knots-cli/knots/internal/report"
	"github.com/knots-cli/knots/pkg/analyzer/ratio"
	"github.com/spf13/cobra"
)

var ratioCmd = &cobra.Command{
	Use:   "ratio TEST SOURCE",
	Short: "Compare a test file's complexity with the source it tests",
	Long: `Sums McCabe complexity over every function of TEST and SOURCE and checks
that test/source reaches the threshold. Unless --no-check-boundaries is given,
it also checks that the test file mentions the boundary values implied by the
source's fixed-width integer declarations, range checks and MIN/MAX defines.

With --level error a failed check exits with status 2; with --level warn it
only reports.

Examples:
  knots ratio tests/test_buffer.c src/buffer.c
  knots ratio --threshold 1.0 --level error tests/test_buffer.c src/buffer.c`,
	Args: cobra.ExactArgs(2),
	RunE: runRatio,
}

func init() {
	ratioCmd.Flags().Float64("threshold", 0, "Minimum test/source McCabe ratio, 0.0-2.0 (default ratio.threshold)")
	ratioCmd.Flags().Float64("boundary-threshold", 0, "Minimum boundary coverage, 0.0-1.0 (default ratio.boundary_threshold)")
	ratioCmd.Flags().String("level", "", "warn or error (default ratio.level)")
	ratioCmd.Flags().Bool("no-check-boundaries", false, "Skip the boundary value check")
	addOutputFlags(ratioCmd)

	rootCmd.AddCommand(ratioCmd)
}

func runRatio(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	cfg := svc.Config()

	opts := cfg.RatioOptions()
	f := cmd.Flags()
	if f.Changed("threshold") {
		opts.Threshold, _ = f.GetFloat64("threshold")
	}
	if f.Changed("boundary-threshold") {
		opts.BoundaryThreshold, _ = f.GetFloat64("boundary-threshold")
	}
	if f.Changed("level") {
		level, _ := f.GetString("level")
		opts.Level = ratio.Level(level)
	}
	if skip, _ := f.GetBool("no-check-boundaries"); skip {
		opts.CheckBoundaries = false
	}

	result, err := svc.Ratio(args[0], args[1], opts)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(&report.Ratio{Result: result}); err != nil {
		return err
	}
	if result.GateFailed() {
		return errGateFailed
	}
	return nil
}
