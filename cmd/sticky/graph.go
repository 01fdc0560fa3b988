package main

import (
	"fmt"
	"io"

	"github.com/aretw0/sticky/internal/cli"
	"github.com/aretw0/sticky/internal/presentation/graph"
	"github.com/aretw0/sticky/internal/presentation/tui"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the state tree visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the state tree. With --script, the
script is applied first and active and inactive states are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptPath, _ := cmd.Flags().GetString("script")

		session, err := cli.NewSession(optionsFrom(cmd))
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if scriptPath != "" {
			script, err := loader.LoadScript(scriptPath)
			if err != nil {
				return err
			}
			if _, err := session.Run(cmd.Context(), script, io.Discard, tui.Plain); err != nil {
				return err
			}
			overlay = graph.OverlayFromSnapshot(session.Engine.Snapshot())
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(session.Engine.Tree().States(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("script", "", "Apply a simulation script before rendering the overlay")
}
