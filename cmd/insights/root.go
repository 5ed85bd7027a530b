package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "insights",
		Short: "Social post performance analytics",
		Long: `insights computes KPIs for a social media post, benchmarks it against
its platform and topic/format cohort, and prints diagnostics,
recommendations and an executive summary.

Examples:
  insights sample > posts.json
  insights analyze --posts posts.json --post IG_001
  insights analyze --post TW_002 --margin 0.2 --json`,
		SilenceUsage: true,
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newSampleCmd())

	return root
}
