package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/povhealth/claimspager/report"
)

func newReportCmd(a *app) *cobra.Command {
	var opts report.Options

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Group all claims by billing provider and print the summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			ctx := cmd.Context()

			d, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close(ctx)

			summaries, err := report.ByProvider(ctx, d.Collection(), opts)
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(summaries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DateStart, "date-start", "", "service date range start (YYYY-MM-DD, overlap semantics)")
	cmd.Flags().StringVar(&opts.DateEnd, "date-end", "", "service date range end (YYYY-MM-DD, overlap semantics)")
	cmd.Flags().BoolVar(&opts.IncludeSampleClaimIDs, "sample-ids", false, "include a bounded sample of claim ids per provider")
	cmd.Flags().IntVar(&opts.SampleSize, "sample-size", report.DefaultSampleSize, "sample size per provider")

	return cmd
}
