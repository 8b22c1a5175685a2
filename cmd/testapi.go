package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var testAPICmd = &cobra.Command{
	Use:   "test-api [siret]",
	Short: "Check connectivity and credentials against the registry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sample := cfg.API.TestSIRET
		if len(args) == 1 {
			sample = args[0]
		}

		client := newRegistryClient(cfg.API, logger)
		res := client.TestConnection(cmd.Context(), sample)
		if !res.Success {
			return eris.New(res.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testAPICmd)
}
