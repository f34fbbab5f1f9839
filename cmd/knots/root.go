package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	charmlog "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	verbose      bool
	noColor      bool
	pprofPrefix  string
	pprofCPUFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "knots",
	Short: "Complexity and testability metrics for C code",
	Long: `Knots measures every function in a C code base: McCabe and cognitive
complexity, nesting depth, SLOC, ABC and return counts, plus a test score
estimating how hard the function is to cover with generated tests.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(charmlog.DebugLevel)
		} else {
			logger.SetLevel(charmlog.InfoLevel)
		}
		if noColor {
			color.NoColor = true
		}
		if pprofPrefix != "" {
			f, err := os.Create(pprofPrefix + ".cpu.pprof")
			if err != nil {
				return fmt.Errorf("failed to create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				return fmt.Errorf("failed to start CPU profile: %w", err)
			}
			pprofCPUFile = f
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofPrefix == "" {
			return nil
		}
		pprof.StopCPUProfile()
		if pprofCPUFile != nil {
			pprofCPUFile.Close()
			pprofCPUFile = nil
			color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
		}

		memFile, err := os.Create(pprofPrefix + ".mem.pprof")
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer memFile.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(memFile); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&pprofPrefix, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")
}
