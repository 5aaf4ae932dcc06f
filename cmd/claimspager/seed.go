package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/povhealth/claimspager/claims"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Generate synthetic claims from the tier config and insert them in batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			ctx := cmd.Context()

			if len(a.cfg.DataGeneration.Tiers) == 0 {
				return fmt.Errorf("no data_generation.tiers configured in %s", a.configPath)
			}

			d, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer d.Close(ctx)

			inserted, err := claims.Seed(ctx, d.Collection(), a.cfg.DataGeneration, func(done, total int) {
				a.log.Info(ctx, "seeding claims", "inserted", done, "expected", total)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d claims\n", inserted)
			return nil
		},
	}
}
