package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/knots-cli/knots/internal/report"
	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/spf13/cobra"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix [path...]",
	Short: "Group functions into the testability matrix",
	Long: `Places every function in one of four quadrants by McCabe complexity and
test score (both split at 10): QuickWin, InvestInTests, AddDocs, Refactor.

Examples:
  knots matrix -r src
  knots matrix -r . -f markdown -o matrix.md`,
	RunE: runMatrix,
}

func init() {
	matrixCmd.Flags().BoolP("recursive", "r", false, "Scan directories recursively")
	matrixCmd.Flags().Bool("no-cache", false, "Disable the result cache")
	addOutputFlags(matrixCmd)
	addFilterFlags(matrixCmd)
	addRemoteFlags(matrixCmd)

	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	cfg := svc.Config()

	recursive, _ := cmd.Flags().GetBool("recursive")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	paths, cleanup, cloned, err := resolvePaths(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	defer cleanup()

	files, err := svc.Files(paths, recursive || cloned)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No C source files found")
		return nil
	}

	fcfg := filterFromFlags(cmd, cfg.Filter)
	an, err := svc.Analyze(cmd.Context(), files, analysis.Options{Filter: &fcfg, NoCache: noCache})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logSkipped(an)

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.NewMatrix(an))
}
