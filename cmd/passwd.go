package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/config"
	"github.com/illarion/secretstore/internal/crypto"
	"github.com/illarion/secretstore/internal/filestore"
	"github.com/illarion/secretstore/internal/secret"
)

// NewPasswordEnv supplies the new password to passwd when no terminal is attached.
const NewPasswordEnv = config.EnvPrefix + "NEW_PASSWORD"

func newPasswdCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of a file store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Backend != config.BackendFile {
				return fmt.Errorf("passwd is only supported by the %s backend", config.BackendFile)
			}
			return a.withStore(cmd.InOrStdin(), cmd.ErrOrStderr(), func(store secret.Store) error {
				fs, ok := store.(*filestore.Store)
				if !ok {
					return fmt.Errorf("unexpected store %T", store)
				}

				newPassword, err := readNewPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer crypto.ClearBytes(newPassword)

				if err := fs.ChangePassword(newPassword); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "password changed")
				return nil
			})
		},
	}
}

func readNewPassword(stdin io.Reader, prompt io.Writer) ([]byte, error) {
	if password := os.Getenv(NewPasswordEnv); password != "" {
		return []byte(password), nil
	}
	f, ok := stdin.(*os.File)
	if !ok || !isTerminal(f) {
		return nil, fmt.Errorf("new password required: set %s or run from a terminal", NewPasswordEnv)
	}
	return ReadPasswordConfirm(f, prompt)
}
