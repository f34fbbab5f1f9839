package main

import (
	"fmt"

	"github.com/knots-cli/knots/internal/report"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the analyze --format json report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), report.Schema)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
