package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/crypto"
	"github.com/illarion/secretstore/internal/secret"
)

func newStoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "store <key> [value]",
		Short: "Store a secret, reading the value from stdin when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var value []byte
			if len(args) == 2 {
				value = []byte(args[1])
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read secret from stdin: %w", err)
				}
				value = data
			}
			defer crypto.ClearBytes(value)

			return a.withStore(cmd.InOrStdin(), cmd.ErrOrStderr(), func(store secret.Store) error {
				if err := store.StoreSecret(key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "stored: %s\n", key)
				return nil
			})
		},
	}
}
