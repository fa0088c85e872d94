package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phpc/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), version.Banner())
		return err
	},
}
