package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/knots-cli/knots/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a knots configuration file for syntax errors and invalid values.

Examples:
  knots config validate                   # Validates default config locations
  knots config validate -c knots.toml     # Validates specific file
  knots config validate -c .knots/knots.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults and config file.

Examples:
  knots config show               # Show effective config
  knots config show -c knots.toml # Show config from specific file`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	_, source, err := config.Resolve(cfgFile)
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err)
		return err
	}

	if source != "" {
		color.Green("Configuration valid: %s", source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, source, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if source != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", source)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}

	content, err := cfg.MarshalTOML()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(out, string(content))
	return nil
}
