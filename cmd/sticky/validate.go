package main

import (
	"fmt"

	"github.com/aretw0/sticky/internal/validator"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script.yaml...]",
	Short: "Check the tree and scripts for consistency",
	Long: `Loads the tree and reports shadowed params. Each script argument is checked
step by step for unknown targets, bad reload boundaries, undeclared params and
resets of states that can never be inactive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		t, err := loader.New().LoadFile(file)
		if err != nil {
			return err
		}
		if err := validator.ValidateTree(t); err != nil {
			return fmt.Errorf("tree '%s': %w", file, err)
		}

		for _, path := range args {
			script, err := loader.LoadScript(path)
			if err != nil {
				return err
			}
			if err := validator.ValidateScript(t, script); err != nil {
				return fmt.Errorf("script '%s': %w", path, err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Tree is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
