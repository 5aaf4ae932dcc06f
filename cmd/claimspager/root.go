package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/povhealth/claimspager/config"
	"github.com/povhealth/claimspager/data"
	"github.com/povhealth/claimspager/logging/logger"
)

type app struct {
	configPath string
	cfg        *config.Config
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "claimspager",
		Short:         "Keyset pagination and reporting over the claims collection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config/config.yaml", "path to YAML config file")

	root.AddCommand(
		newEnsureIndexCmd(a),
		newSeedCmd(a),
		newQueryCmd(a),
		newReportCmd(a),
	)
	return root
}

// load reads config and initializes logging. The MongoDB URI is required for
// every subcommand here; all of them talk to the store.
func (a *app) load() error {
	cfg, err := config.Load(a.configPath, true)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(cfg.Logger.Level, cfg.Logger.Format, os.Stderr)
	return nil
}

// connect opens the store connection; callers must Close it.
func (a *app) connect(ctx context.Context) (*data.Data, error) {
	return data.New(ctx, a.cfg, a.log)
}
