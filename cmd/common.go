package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/illarion/secretstore/internal/config"
	"github.com/illarion/secretstore/internal/crypto"
	"github.com/illarion/secretstore/internal/filestore"
	"github.com/illarion/secretstore/internal/keyring"
	"github.com/illarion/secretstore/internal/proc"
	"github.com/illarion/secretstore/internal/secret"
	"github.com/illarion/secretstore/internal/secretservice"
	"github.com/illarion/secretstore/internal/storage"
)

var errPasswordRequired = errors.New("password required: set SECRETSTORE_PASSWORD or run from a terminal")

// getPassword returns the configured password, or prompts for one.
// The caller is responsible for calling crypto.ClearBytes on the result.
func (a *app) getPassword(stdin io.Reader, prompt io.Writer) ([]byte, error) {
	if password := a.cfg.PasswordBytes(); password != nil {
		return password, nil
	}
	f, ok := stdin.(*os.File)
	if !ok || !isTerminal(f) {
		return nil, errPasswordRequired
	}
	return ReadPassword(f, prompt, "Enter password: ")
}

// openStore opens the configured backend. The returned close function
// must be called when done.
func (a *app) openStore(stdin io.Reader, prompt io.Writer) (secret.Store, func() error, error) {
	noop := func() error { return nil }

	if a.cfg.NeedsPassword() {
		password, err := a.getPassword(stdin, prompt)
		if err != nil {
			return nil, nil, err
		}
		defer crypto.ClearBytes(password)

		switch a.cfg.Backend {
		case config.BackendFile:
			store, err := filestore.New(a.cfg.Path, password, a.cfg.Iterations, filestore.WithLogger(a.logger))
			if err != nil {
				return nil, nil, err
			}
			return store, noop, nil
		case config.BackendBolt:
			store, err := storage.Open(a.cfg.Path, password, a.cfg.Iterations, storage.WithLogger(a.logger))
			if err != nil {
				return nil, nil, err
			}
			return store, store.Close, nil
		}
	}

	switch a.cfg.Backend {
	case config.BackendSecretService:
		store := secretservice.New(a.cfg.Service,
			secretservice.WithTool(a.cfg.Tool),
			secretservice.WithTrimTrailingNewline(a.cfg.TrimNewline),
			secretservice.WithRunner(proc.NewExecRunner(proc.WithLogger(a.logger))),
			secretservice.WithLogger(a.logger),
		)
		return store, noop, nil

	case config.BackendNative:
		return keyring.New(a.cfg.Service, keyring.WithLogger(a.logger)), noop, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, a.cfg.Backend)
}

// withStore opens the configured store, runs fn and closes the store.
func (a *app) withStore(stdin io.Reader, prompt io.Writer, fn func(secret.Store) error) (err error) {
	store, closeStore, err := a.openStore(stdin, prompt)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(store)
}
