package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the account schema or indexes for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := openStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore(store, logger)

			return migrateStore(cmd.Context(), store, cfg.Store.Driver, logger)
		},
	}
}
