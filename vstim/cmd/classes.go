package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/devices/catalog"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the supported device classes.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listClasses(cmd.OutOrStdout(), catalog.NewRegistry())
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}

func listClasses(out io.Writer, r *devices.Registry) {
	for _, c := range r.Classes() {
		fmt.Fprintln(out, c)
	}
}
