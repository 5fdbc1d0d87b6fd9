package cmd

import (
	"github.com/spf13/cobra"

	"sticker-studio/config"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sticker-studio",
		Short: "Print-ready sticker sheet builder",
		Long: `sticker-studio turns purchased sticker items into print-ready A4 documents
with registration marks for a print-then-cut workflow.

It runs as an HTTP service for the storefront and as a command line tool
for building sheets and inspecting fulfillment records.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newDiagnoseCmd())

	return cmd
}
