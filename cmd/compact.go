package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/config"
	"github.com/illarion/secretstore/internal/secret"
	"github.com/illarion/secretstore/internal/storage"
)

func newCompactCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Compact a bolt store to reclaim unused space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Backend != config.BackendBolt {
				return fmt.Errorf("compact is only supported by the %s backend", config.BackendBolt)
			}
			return a.withStore(cmd.InOrStdin(), cmd.ErrOrStderr(), func(store secret.Store) error {
				db, ok := store.(*storage.Store)
				if !ok {
					return fmt.Errorf("unexpected store %T", store)
				}
				if err := db.Compact(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "store compacted")
				return nil
			})
		},
	}
}
