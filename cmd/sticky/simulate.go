package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/sticky"
	"github.com/aretw0/sticky/internal/cli"
	"github.com/aretw0/sticky/internal/presentation/tui"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <script.yaml>",
	Short: "Run a script of transitions and report each one",
	Long: `Loads the tree, applies every step of a YAML script (transitions and resets)
and prints the classification, engine steps and registry diff of each step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFrom(cmd)
		quiet, _ := cmd.Flags().GetBool("quiet")

		script, err := loader.LoadScript(args[0])
		if err != nil {
			return err
		}
		session, err := cli.NewSession(opts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		if !quiet && tui.IsTerminal(out) {
			tui.PrintBanner(out, sticky.Version)
		}

		failed, err := session.Run(ctx, script, out, tui.RendererFor(out))
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d steps failed", failed, len(script.Steps))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
