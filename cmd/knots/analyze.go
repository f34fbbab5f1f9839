package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/knots-cli/knots/internal/progress"
	"github.com/knots-cli/knots/internal/report"
	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/knots-cli/knots/pkg/config"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [path...]",
	Aliases: []string{"a"},
	Short:   "Measure complexity and test score of every C function",
	Long: `Analyzes C files and prints one row per function with McCabe, cognitive,
nesting, SLOC, ABC, return count, test score and testability quadrant.

With --recursive and more than one file, the per-function details are written
to output.report_file and only the top functions and totals are printed.

Examples:
  knots analyze src/parser.c
  knots analyze -r src
  knots analyze -r src -f json -o report.json
  knots analyze -r . --exclude-name '^test_' --min-complexity 5
  knots analyze --shallow github.com/redis/hiredis@v1.2.0`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolP("recursive", "r", false, "Scan directories recursively")
	analyzeCmd.Flags().Int("top-k", 0, "Number of most complex functions to list (default from config)")
	analyzeCmd.Flags().String("report-file", "", "Per-function details file for recursive runs (default from config)")
	analyzeCmd.Flags().Bool("no-cache", false, "Disable the result cache")
	analyzeCmd.Flags().Bool("no-progress", false, "Hide the progress bar")
	addOutputFlags(analyzeCmd)
	addFilterFlags(analyzeCmd)
	addRemoteFlags(analyzeCmd)

	rootCmd.AddCommand(analyzeCmd)
}

// addFilterFlags registers the flags that override the filter config section.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("include-path", nil, "Only report files matching these globs")
	cmd.Flags().StringSlice("exclude-path", nil, "Drop files matching these globs")
	cmd.Flags().StringSlice("include-name", nil, "Only report functions whose name matches these regular expressions")
	cmd.Flags().StringSlice("exclude-name", nil, "Drop functions whose name matches these regular expressions")
	cmd.Flags().Int("min-complexity", 0, "Drop functions whose max(mccabe, cognitive) is below this value")
	cmd.Flags().Int("max-complexity", 0, "Drop functions whose max(mccabe, cognitive) is above this value (0 for no bound)")
}

// filterFromFlags overlays the filter flags that were set on base.
func filterFromFlags(cmd *cobra.Command, base config.FilterConfig) config.FilterConfig {
	f := cmd.Flags()
	if f.Changed("include-path") {
		base.IncludePaths, _ = f.GetStringSlice("include-path")
	}
	if f.Changed("exclude-path") {
		base.ExcludePaths, _ = f.GetStringSlice("exclude-path")
	}
	if f.Changed("include-name") {
		base.IncludeNames, _ = f.GetStringSlice("include-name")
	}
	if f.Changed("exclude-name") {
		base.ExcludeNames, _ = f.GetStringSlice("exclude-name")
	}
	if f.Changed("min-complexity") {
		base.MinComplexity, _ = f.GetInt("min-complexity")
	}
	if f.Changed("max-complexity") {
		base.MaxComplexity, _ = f.GetInt("max-complexity")
	}
	return base
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	cfg := svc.Config()

	recursive, _ := cmd.Flags().GetBool("recursive")
	paths, cleanup, cloned, err := resolvePaths(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	defer cleanup()
	recursive = recursive || cloned
	noCache, _ := cmd.Flags().GetBool("no-cache")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	files, err := svc.Files(paths, recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No C source files found")
		return nil
	}
	logger.Debug("analyzing", "files", len(files), "recursive", recursive)

	fcfg := filterFromFlags(cmd, cfg.Filter)
	opts := analysis.Options{Filter: &fcfg, NoCache: noCache}

	var bar *progress.Bar
	if !noProgress {
		bar = progress.New("Analyzing", len(files))
		opts.Tracker = bar.Tracker()
	}
	an, err := svc.Analyze(cmd.Context(), files, opts)
	if bar != nil {
		skipped := 0
		if an != nil {
			skipped = len(an.Skipped)
		}
		bar.FinishSkipped(skipped)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logSkipped(an)

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK <= 0 {
		topK = cfg.Analysis.TopK
	}
	summary := report.NewSummary(an, topK, version, paths)

	if recursive && len(files) > 1 {
		reportFile, _ := cmd.Flags().GetString("report-file")
		if reportFile == "" {
			reportFile = cfg.Output.ReportFile
		}
		if err := writeDetails(reportFile, summary); err != nil {
			return err
		}
		summary.TopOnly = true
		summary.DetailsFile = reportFile
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(summary)
}

func writeDetails(path string, summary *report.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := report.WriteDetails(f, summary.Analysis); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Debug("wrote per-function details", "path", path)
	return nil
}
