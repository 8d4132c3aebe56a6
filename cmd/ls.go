package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/secret"
)

func newLsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored keys (file and bolt backends)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.InOrStdin(), cmd.ErrOrStderr(), func(store secret.Store) error {
				lister, ok := store.(secret.Lister)
				if !ok {
					return fmt.Errorf("the %s backend cannot list keys", a.cfg.Backend)
				}
				keys, err := lister.ListKeys()
				if err != nil {
					return err
				}
				for _, key := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	}
}
