package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/secret"
)

func newRmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>...",
		Aliases: []string{"delete"},
		Short:   "Delete secrets. Missing keys are not an error",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.InOrStdin(), cmd.ErrOrStderr(), func(store secret.Store) error {
				for _, key := range args {
					if err := store.DeleteSecret(key); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "removed: %s\n", key)
				}
				return nil
			})
		},
	}
}
