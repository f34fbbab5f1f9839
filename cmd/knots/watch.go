package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/knots-cli/knots/internal/report"
	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/knots-cli/knots/pkg/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze C files as they change",
	Long: `Watches a directory tree and prints the function rows of every C file
that changes, once the file has been quiet for the debounce period.

Examples:
  knots watch
  knots watch src --debounce 1s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Wait this long after the last change before analyzing")
	addOutputFlags(watchCmd)

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	cfg := svc.Config()

	root := getPaths(args)[0]
	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := watch.NewWatcher(root, cfg, debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	ctx := cmd.Context()
	w.SetCallback(func(path string) {
		an, err := svc.Analyze(ctx, []string{path}, analysis.Options{})
		if err != nil {
			logger.Error("analysis failed", "path", w.Rel(path), "err", err)
			return
		}
		logSkipped(an)
		color.Cyan("%s changed at %s", w.Rel(path), time.Now().Format(time.TimeOnly))
		summary := report.NewSummary(an, cfg.Analysis.TopK, version, []string{path})
		if err := formatter.Output(summary); err != nil {
			logger.Error("render failed", "err", err)
		}
	})
	w.SetErrorHandler(func(err error) {
		logger.Warn("watch error", "err", err)
	})

	color.Green("Watching %s for changes (Ctrl+C to stop)", root)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
