package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/knots-cli/knots/internal/output"
	"github.com/knots-cli/knots/internal/remote"
	"github.com/knots-cli/knots/internal/service/analysis"
	"github.com/knots-cli/knots/pkg/analyzer/complexity"
	"github.com/knots-cli/knots/pkg/config"
	"github.com/spf13/cobra"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// resolvePaths clones any remote repository references in args and returns
// the local paths to analyze. The cleanup func removes the clones; it is never
// nil. cloned reports whether any argument was a repository, since a clone is
// always scanned recursively.
func resolvePaths(ctx context.Context, cmd *cobra.Command, args []string) (paths []string, cleanup func(), cloned bool, err error) {
	shallow, _ := cmd.Flags().GetBool("shallow")
	var sources []*remote.Source
	cleanup = func() {
		for _, src := range sources {
			src.Cleanup()
		}
	}

	for _, arg := range getPaths(args) {
		src, err := remote.Parse(arg)
		if err != nil {
			cleanup()
			return nil, func() {}, false, err
		}
		if src == nil {
			paths = append(paths, arg)
			continue
		}
		logger.Info("cloning", "url", src.URL, "ref", src.Ref)
		if err := src.Clone(ctx, os.Stderr, shallow); err != nil {
			cleanup()
			return nil, func() {}, false, err
		}
		sources = append(sources, src)
		paths = append(paths, src.CloneDir)
	}
	return paths, cleanup, len(sources) > 0, nil
}

// addRemoteFlags registers the flags that control repository cloning.
func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("shallow", false, "Clone remote repositories with depth 1")
}

// loadConfig resolves --config or the standard config locations.
func loadConfig() (*config.Config, error) {
	cfg, source, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, err
	}
	if source != "" {
		logger.Debug("loaded config", "path", source)
	}
	return cfg, nil
}

func newService() (*analysis.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return analysis.New(analysis.WithConfig(cfg)), nil
}

// addOutputFlags registers --format and --output on cmd.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Output format: text, json, markdown, toon, yaml (default from config)")
	cmd.Flags().StringP("output", "o", "", "Write output to file")
}

// getFormat returns the format flag value, falling back to output.format.
func getFormat(cmd *cobra.Command, cfg *config.Config) output.Format {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	return output.ParseFormat(format)
}

// getOutputFile returns the output file path from the command.
func getOutputFile(cmd *cobra.Command) string {
	outputFile, _ := cmd.Flags().GetString("output")
	return outputFile
}

// newFormatter writes to --output when given, otherwise to the command's stdout.
func newFormatter(cmd *cobra.Command, cfg *config.Config) (*output.Formatter, error) {
	format := getFormat(cmd, cfg)
	colored := cfg.Output.Color && !noColor && !color.NoColor
	if path := getOutputFile(cmd); path != "" {
		return output.NewFormatter(format, path, colored)
	}
	return output.NewWriterFormatter(format, cmd.OutOrStdout(), colored), nil
}

// logSkipped reports the files a run left out and the ones the parser
// had to recover.
func logSkipped(an *complexity.Analysis) {
	for _, e := range an.Skipped {
		logger.Warn("skipped file", "path", e.Path, "err", e.Err)
	}
	for _, f := range an.Files {
		if f.Recovered {
			logger.Debug("parsed with syntax errors", "path", f.Path)
		}
	}
}
