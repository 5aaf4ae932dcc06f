package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/povhealth/claimspager/data"
)

func newEnsureIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-index",
		Short: "Create the claims compound index if absent, dropping superseded variants",
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

			name, err := data.EnsureClaimsIndex(ctx, d.Collection())
			if err != nil {
				if errors.Is(err, data.ErrInsufficientPrivilege) {
					return fmt.Errorf("not authorized to manage indexes, grant readWrite on the target database: %w", err)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Index ready: %s\n", name)
			return nil
		},
	}
}
