package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/safetystack/dashgen/internal/pipeline"
)

var (
	genObservations string
	genIncidents    string
	genOutDir       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate dashboard assets (summary.json + chart images)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		// Flags override config when set.
		f := cmd.Flags()
		if f.Changed("observations") {
			c.Observations = genObservations
		}
		if f.Changed("incidents") {
			c.Incidents = genIncidents
		}
		if f.Changed("outdir") {
			c.OutDir = genOutDir
		}

		sum, err := pipeline.Run(c)
		if err != nil {
			return err
		}

		if sum.Observations.Note != "" {
			fmt.Printf("⚠ %s (%s)\n", sum.Observations.Note, c.Observations)
		} else {
			fmt.Printf("✓ Observations: %d rows (%d open, %d closed)\n",
				sum.Observations.Rows, *sum.Observations.Open, *sum.Observations.Closed)
		}
		if sum.Incidents.Note != "" {
			fmt.Printf("⚠ %s (%s)\n", sum.Incidents.Note, c.Incidents)
		} else {
			fmt.Printf("✓ Incidents: %d rows\n", sum.Incidents.Rows)
		}
		if sum.Model.Enabled {
			fmt.Printf("✓ Model: %s on %s, accuracy %.3f\n", sum.Model.Model, sum.Model.Target, *sum.Model.Accuracy)
		} else {
			fmt.Println("⚠ Model training skipped (insufficient signal)")
		}

		names := make([]string, 0, len(sum.Assets))
		for name := range sum.Assets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("✓ Asset %s: %s\n", name, sum.Assets[name])
		}
		fmt.Printf("✓ Wrote %s\n", pipeline.SummaryPath(c))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&genObservations, "observations", "data/observations.csv", "path to observations CSV")
	generateCmd.Flags().StringVar(&genIncidents, "incidents", "data/incidents.csv", "path to incidents CSV")
	generateCmd.Flags().StringVarP(&genOutDir, "outdir", "o", "public/dashboard-assets", "output directory for generated assets")
}
