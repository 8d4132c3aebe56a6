package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/filestore"
	"github.com/illarion/secretstore/internal/keyring"
	"github.com/illarion/secretstore/internal/secret"
	"github.com/illarion/secretstore/internal/storage"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured backend and its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.InOrStdin(), cmd.ErrOrStderr(), func(store secret.Store) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "backend:  %s\n", a.cfg.Backend)

				switch s := store.(type) {
				case *filestore.Store:
					fmt.Fprintf(out, "path:     %s\n", s.Path())
				case *storage.Store:
					fmt.Fprintf(out, "path:     %s\n", s.Path())
					modified, err := s.Modified()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "modified: %s\n", modified.Format(time.RFC3339))
				case *keyring.Store:
					fmt.Fprintf(out, "service:  %s\n", a.cfg.Service)
					available := "unavailable"
					if s.Supported() {
						available = "available"
					}
					fmt.Fprintf(out, "keychain: %s\n", available)
				default:
					fmt.Fprintf(out, "service:  %s\n", a.cfg.Service)
					fmt.Fprintf(out, "tool:     %s\n", a.cfg.Tool)
				}

				if lister, ok := store.(secret.Lister); ok {
					keys, err := lister.ListKeys()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "secrets:  %d\n", len(keys))
				}
				return nil
			})
		},
	}
}
