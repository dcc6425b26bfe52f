package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vstim/stimulus"
	"github.com/sarchlab/vstim/wire"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Decode and validate a pair of record files.",
	Long: "`check --ports f.ports --ops f.ops` decodes the files the way the " +
		"harness does and verifies that every op targets a declared port " +
		"with a legal action, width and tick.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := wire.Files{}
		files.Ports, _ = cmd.Flags().GetString("ports")
		files.Ops, _ = cmd.Flags().GetString("ops")

		n, err := checkFiles(files)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ops OK\n", files.Ops, n)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("ports", "", "Port record file")
	checkCmd.Flags().String("ops", "", "Op record file")
	_ = checkCmd.MarkFlagRequired("ports")
	_ = checkCmd.MarkFlagRequired("ops")
}

// checkFiles returns the number of ops in a valid pair of record files.
func checkFiles(files wire.Files) (int, error) {
	m, ops, err := wire.NewReader().ReadFiles(files)
	if err != nil {
		return 0, err
	}

	if err := stimulus.Validate(ops, m); err != nil {
		return 0, err
	}

	return len(ops), nil
}
