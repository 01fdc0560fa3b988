package main

import (
	"fmt"
	"os"

	"github.com/aretw0/sticky/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sticky",
	Short: "sticky plans transitions of hierarchical state trees with sticky states",
	Long: `sticky loads a YAML state tree and shows how transitions classify each state:
entered, exited, kept, inactivated, reactivated or re-entered with new params.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "tree.yaml", "YAML file defining the state tree")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write debug logs as JSON")
}

func optionsFrom(cmd *cobra.Command) cli.Options {
	file, _ := cmd.Flags().GetString("file")
	debug, _ := cmd.Flags().GetBool("debug")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	return cli.Options{TreeFile: file, Debug: debug, JSONLogs: jsonLogs}
}
