// Package cmd provides the command-line interface of vstim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "vstim",
	Short: "vstim generates the stimulus that a replay harness applies to " +
		"verilated devices.",
	Long: `vstim generates timed port operations for verilated devices and ` +
		`writes them as port and op record files. It can also list the ` +
		`supported device classes and check existing record files.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
