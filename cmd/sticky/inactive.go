package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/sticky/internal/cli"
	"github.com/aretw0/sticky/internal/presentation/tui"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/spf13/cobra"
)

var inactiveCmd = &cobra.Command{
	Use:   "inactive <script.yaml>",
	Short: "List the inactive states left after a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		script, err := loader.LoadScript(args[0])
		if err != nil {
			return err
		}
		session, err := cli.NewSession(optionsFrom(cmd))
		if err != nil {
			return err
		}
		if _, err := session.Run(cmd.Context(), script, io.Discard, tui.Plain); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		inactive := session.Engine.InactiveStates()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(inactive)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STATE\tPARAMS\tVIEWS")
		for _, s := range inactive {
			fmt.Fprintf(tw, "%s\t%v\t%v\n", s.Name, map[string]any(s.Params), s.Views)
		}
		return tw.Flush()
	},
}


func init() {
	rootCmd.AddCommand(inactiveCmd)
	inactiveCmd.Flags().Bool("json", false, "Print as JSON")
}
