package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vadim/social-insights/internal/domain/analytics/dao"
)

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in sample posts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dao.SamplePosts())
		},
	}
}
