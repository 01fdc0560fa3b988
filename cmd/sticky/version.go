package main

import (
	"fmt"

	"github.com/aretw0/sticky"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sticky",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sticky version %s\n", sticky.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
