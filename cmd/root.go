package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/illarion/secretstore/internal/config"
	"github.com/illarion/secretstore/internal/keyring"
	"github.com/illarion/secretstore/internal/secret"
	"github.com/illarion/secretstore/internal/secretservice"
)

// ErrSecretNotFound is returned by get for a missing key.
var ErrSecretNotFound = errors.New("secret not found")

// app carries the resolved configuration between cobra hooks and commands.
type app struct {
	envFile string
	flags   config.Config
	cfg     *config.Config
	logger  *logrus.Logger
}

// NewRootCommand builds the secretstore command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "secretstore",
		Short:         "Store, retrieve and delete secrets across interchangeable backends",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", "", "load SECRETSTORE_* variables from a dotenv file")
	pf.StringVarP(&a.flags.Backend, "backend", "b", config.BackendFile, "backend: file, bolt, secret-service or native")
	pf.StringVarP(&a.flags.Path, "path", "p", ".secretstore", "store path for the file and bolt backends")
	pf.IntVar(&a.flags.Iterations, "iterations", 210000, "PBKDF2 iterations for newly created stores")
	pf.StringVar(&a.flags.Service, "service", "secretstore", "service name for the secret-service and native backends")
	pf.StringVar(&a.flags.Tool, "tool", secretservice.DefaultTool, "secret-tool executable")
	pf.BoolVar(&a.flags.TrimNewline, "trim-newline", true, "strip one trailing newline from secret-service text secrets")
	pf.StringVar(&a.flags.LogLevel, "log-level", "warn", "log level")
	pf.StringVar(&a.flags.LogFormat, "log-format", config.FormatText, "log format: text or json")

	root.AddCommand(
		newStoreCommand(a),
		newGetCommand(a),
		newRmCommand(a),
		newLsCommand(a),
		newPasswdCommand(a),
		newCompactCommand(a),
		newStatusCommand(a),
		newVersionCommand(),
	)
	return root
}

// configure loads the environment and lets explicitly set flags win.
func (a *app) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = a.flags.Backend
	}
	if flags.Changed("path") {
		cfg.Path = a.flags.Path
	}
	if flags.Changed("iterations") {
		cfg.Iterations = a.flags.Iterations
	}
	if flags.Changed("service") {
		cfg.Service = a.flags.Service
	}
	if flags.Changed("tool") {
		cfg.Tool = a.flags.Tool
	}
	if flags.Changed("trim-newline") {
		cfg.TrimNewline = a.flags.TrimNewline
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.flags.LogFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		HandleError(stderr, err)
		return 1
	}
	return 0
}

// HandleError prints err with a hint for the well-known failures.
func HandleError(w io.Writer, err error) {
	var cmdErr *secretservice.CommandError
	var missing *secretservice.CollectionMissingError

	switch {
	case errors.Is(err, ErrSecretNotFound):
		fmt.Fprintf(w, "Error: %s\n", err)
	case errors.Is(err, secret.ErrStoreNotFound):
		fmt.Fprintf(w, "Error: store file not found\n")
	case errors.Is(err, secret.ErrIntegrity):
		fmt.Fprintf(w, "Error: wrong password or corrupted store\n")
	case errors.Is(err, secret.ErrDecoding):
		fmt.Fprintf(w, "Error: store file is malformed: %s\n", err)
	case errors.Is(err, keyring.ErrUnsupportedPlatform):
		fmt.Fprintf(w, "Error: %s\n", err)
		fmt.Fprintf(w, "Use '--backend file' instead\n")
	case errors.As(err, &missing):
		fmt.Fprintf(w, "Error: secret service collection is missing: %s\n", missing.Message)
	case errors.As(err, &cmdErr):
		fmt.Fprintf(w, "Error: secret-tool failed with status %d: %s\n", cmdErr.Code, cmdErr.Message)
	default:
		fmt.Fprintf(w, "Error: %s\n", err)
	}
}
