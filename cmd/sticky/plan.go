package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sticky/internal/cli"
	"github.com/aretw0/sticky/internal/presentation/tui"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <state>...",
	Short: "Transition through the given states and classify the last move",
	Long: `Transitions from the root through every given state in order and prints the
classification of each state for the final transition. Params given with
--param apply to every step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawParams, _ := cmd.Flags().GetStringToString("param")
		reload, _ := cmd.Flags().GetBool("reload")

		session, err := cli.NewSession(optionsFrom(cmd))
		if err != nil {
			return err
		}

		params := make(map[string]any, len(rawParams))
		for k, v := range rawParams {
			params[k] = v
		}

		ctx := cmd.Context()
		var last tui.Report
		for i, to := range args {
			step := loader.Step{To: to, Params: params}
			if i == len(args)-1 {
				step.Reload = reload
			}
			last, err = session.Apply(ctx, step)
			if err != nil {
				return err
			}
			if last.Err != nil {
				return fmt.Errorf("transition to '%s': %w", to, last.Err)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", strings.Join(args, " → "))
		tui.WriteClassifications(out, last.Classifications)
		if len(last.Inactive) > 0 {
			fmt.Fprintf(out, "inactive: %s\n", strings.Join(last.Inactive, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringToStringP("param", "p", nil, "Transition params (key=value)")
	planCmd.Flags().Bool("reload", false, "Force a reload on the last transition")
}
