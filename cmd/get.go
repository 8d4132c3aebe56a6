package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/crypto"
	"github.com/illarion/secretstore/internal/secret"
)

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Write a secret to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			return a.withStore(cmd.InOrStdin(), cmd.ErrOrStderr(), func(store secret.Store) error {
				value, ok, err := store.RetrieveSecret(key)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
				}
				defer crypto.ClearBytes(value)

				_, err = cmd.OutOrStdout().Write(value)
				return err
			})
		},
	}
}
