// Package proc runs the wrapped command.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"trello-track/internal/output"
)

// ErrEmptyCommand is returned when Run is called without arguments.
var ErrEmptyCommand = errors.New("empty command")

// ExitError reports a command that ran and exited unsuccessfully.
type ExitError struct {
	Args []string
	// Code is the exit status, or -1 when the command was killed by a signal.
	Code int
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s was terminated by a signal", output.FormatCommand(e.Args))
	}
	return fmt.Sprintf("%s returned non-zero exit status %d", output.FormatCommand(e.Args), e.Code)
}

// StartError reports a command that could not be started.
type StartError struct {
	Name string
	Err  error
}

func (e *StartError) Error() string { return fmt.Sprintf("start %s: %v", e.Name, e.Err) }

func (e *StartError) Unwrap() error { return e.Err }

// Runner spawns a child process with the given stdio and waits for it.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *log.Logger

	// Signals overrides the SIGINT/SIGTERM subscription (for testing).
	Signals <-chan os.Signal
}

// NewRunner returns a runner attached to the current process's stdio.
func NewRunner(logger *log.Logger) *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run starts args and waits for it to exit.
//
// An interrupt while waiting is logged and the wait continues; the child
// receives the terminal's interrupt itself and decides when to stop.
// SIGTERM, or cancelling ctx, is forwarded to the child and the wait
// continues. A non-zero exit is reported as *ExitError.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrEmptyCommand
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	signals := r.Signals
	if signals == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		signals = ch
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return &StartError{Name: args[0], Err: err}
	}
	logger.Debug("command started", "pid", cmd.Process.Pid, "cmd", output.FormatCommand(args))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	cancelled := ctx.Done()
	for {
		select {
		case err := <-done:
			return exitError(args, err)
		case sig := <-signals:
			if sig == os.Interrupt {
				logger.Warn("interrupt received, still waiting for command", "pid", cmd.Process.Pid)
				continue
			}
			terminate(cmd.Process, sig, logger)
		case <-cancelled:
			cancelled = nil
			terminate(cmd.Process, syscall.SIGTERM, logger)
		}
	}
}

func terminate(p *os.Process, sig os.Signal, logger *log.Logger) {
	logger.Warn("forwarding signal to command", "pid", p.Pid, "signal", sig)
	if err := p.Signal(sig); err != nil {
		logger.Error("failed to signal command", "pid", p.Pid, "err", err)
	}
}

func exitError(args []string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Args: args, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("wait for %s: %w", args[0], err)
}
