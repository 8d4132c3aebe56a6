package proc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrMissingExecutable is returned for an empty command.
var ErrMissingExecutable = errors.New("missing executable")

// Output is the result of one command run.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner runs a command, feeding it optional input.
type Runner interface {
	Run(command []string, input []byte) (*Output, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	logger logrus.FieldLogger
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithLogger sets the logger used for debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *ExecRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewExecRunner creates a runner spawning real processes.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// pipes holds both ends of the three child pipes.
type pipes struct {
	stdinR, stdinW   *os.File
	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File
}

func newPipes() (*pipes, error) {
	p := &pipes{}
	var err error
	if p.stdinR, p.stdinW, err = os.Pipe(); err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	if p.stdoutR, p.stdoutW, err = os.Pipe(); err != nil {
		p.close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if p.stderrR, p.stderrW, err = os.Pipe(); err != nil {
		p.close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	return p, nil
}

// closeChildEnds releases the ends inherited by the child. Drains only see
// EOF once the parent no longer holds the write ends.
func (p *pipes) closeChildEnds() {
	closeFile(&p.stdinR)
	closeFile(&p.stdoutW)
	closeFile(&p.stderrW)
}

func (p *pipes) close() {
	p.closeChildEnds()
	closeFile(&p.stdinW)
	closeFile(&p.stdoutR)
	closeFile(&p.stderrR)
}

func closeFile(f **os.File) {
	if *f != nil {
		(*f).Close()
		*f = nil
	}
}

// Run spawns command[0] with the remaining arguments, writes input to its
// stdin and captures stdout and stderr. A non-zero exit status is reported
// through Output.ExitCode; errors are reserved for failures to run at all.
func (r *ExecRunner) Run(command []string, input []byte) (*Output, error) {
	if len(command) == 0 {
		return nil, ErrMissingExecutable
	}

	p, err := newPipes()
	if err != nil {
		return nil, err
	}
	defer p.close()

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdin = p.stdinR
	cmd.Stdout = p.stdoutW
	cmd.Stderr = p.stderrW

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p.closeChildEnds()

	log := r.logger.WithFields(logrus.Fields{"command": command[0], "pid": cmd.Process.Pid})
	log.Debug("command started")

	var stdout, stderr bytes.Buffer
	var drains errgroup.Group
	drains.Go(func() error {
		_, err := io.Copy(&stdout, p.stdoutR)
		return err
	})
	drains.Go(func() error {
		_, err := io.Copy(&stderr, p.stderrR)
		return err
	})

	writeErr := writeInput(p.stdinW, input)
	closeFile(&p.stdinW)

	waitErr := cmd.Wait()
	drainErr := drains.Wait()

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("failed to wait for %s: %w", command[0], waitErr)
		}
		exitCode = exitErr.ExitCode()
	}
	if writeErr != nil {
		return nil, fmt.Errorf("failed to write input to %s: %w", command[0], writeErr)
	}
	if drainErr != nil {
		return nil, fmt.Errorf("failed to read output of %s: %w", command[0], drainErr)
	}

	log.WithFields(logrus.Fields{
		"exit_code":    exitCode,
		"stdout_bytes": stdout.Len(),
		"stderr_bytes": stderr.Len(),
	}).Debug("command finished")

	return &Output{
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// writeInput writes all of input to w. A child that exits or closes stdin
// before reading everything is not a failure of the run.
func writeInput(w io.Writer, input []byte) error {
	if len(input) == 0 {
		return nil
	}
	_, err := w.Write(input)
	if errors.Is(err, syscall.EPIPE) {
		return nil
	}
	return err
}
