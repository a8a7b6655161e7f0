package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/safetystack/dashgen/internal/dataset"
)

var inspectOutput string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Profile a CSV and print a concise schema summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := dataset.Load(args[0])
		if err != nil {
			return err
		}
		md := dataset.Profile(t).Markdown()
		if inspectOutput != "" {
			if err := os.WriteFile(inspectOutput, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote profile to %s\n", inspectOutput)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "optional path to write the profile (Markdown)")
}
