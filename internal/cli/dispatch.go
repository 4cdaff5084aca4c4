// Package cli parses the command line and runs the tracked command.
package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"trello-track/internal/config"
	"trello-track/internal/exitcode"
	"trello-track/internal/output"
	"trello-track/internal/proc"
	"trello-track/internal/service"
	"trello-track/internal/track"
)

// Version is the application version. Set at build time.
var Version = "0.1.0"

const usageLine = "usage: " + config.AppName + " [flags] <card_id> <command> [args...]"

var errUsage = errors.New("expected a card id and a command")

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher parses arguments and runs the wrapped command inside one
// tracked operation.
type Dispatcher struct {
	factory    ServiceFactory
	loadConfig func() (*config.Config, error)
	hostname   func() (string, error)
	stdin      io.Reader
	signals    chan os.Signal
}

// NewDispatcher creates a new dispatcher with the given service factory.
func NewDispatcher(factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		factory:    factory,
		loadConfig: config.Load,
		hostname:   os.Hostname,
		stdin:      os.Stdin,
	}
}

// SetConfigLoader replaces config.Load (for testing).
func (d *Dispatcher) SetConfigLoader(load func() (*config.Config, error)) {
	d.loadConfig = load
}

// SetHostname replaces os.Hostname (for testing).
func (d *Dispatcher) SetHostname(hostname func() (string, error)) {
	d.hostname = hostname
}

// SetStdin sets the wrapped command's stdin (for testing).
func (d *Dispatcher) SetStdin(r io.Reader) {
	d.stdin = r
}

// SetSignals replaces the process signal subscription (for testing).
func (d *Dispatcher) SetSignals(ch chan os.Signal) {
	d.signals = ch
}

// Run parses arguments and runs the command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	var debug, quiet bool
	code := exitcode.Success

	root := &cobra.Command{
		Use:   config.AppName + " [flags] <card_id> <command> [args...]",
		Short: "Track a command on a Trello card",
		Long: "trello-track runs a command and mirrors its progress onto the \"" + track.ChecklistName +
			"\" checklist of a Trello card.\n\n" +
			"The card id may be a full id or a short link. Credentials are read from\n" +
			"~/" + config.CredentialsFile + ", ./" + config.CredentialsFile + ", " +
			config.EnvKey + " and " + config.EnvToken + ".",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			code = d.track(cmd.Context(), debug, quiet, args[0], args[1:], out, errOut)
			return nil
		},
	}

	// Everything after the card id belongs to the wrapped command.
	root.Flags().SetInterspersed(false)
	root.Flags().BoolVar(&debug, "debug", false, "print debug logs to stderr")
	root.Flags().BoolVar(&quiet, "quiet", false, "only log errors")

	// cobra falls back to os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(errOut, usageLine)
		}
		return exitcode.UserError
	}
	return code
}

// track loads credentials and runs command inside one in-progress operation.
func (d *Dispatcher) track(ctx context.Context, debug, quiet bool, cardID string, command []string, out, errOut io.Writer) int {
	cfg, err := d.loadConfig()
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.ConfigError
	}
	cfg.Debug = cfg.Debug || debug
	cfg.Quiet = quiet
	logger := NewLogger(errOut, cfg.Debug, cfg.Quiet)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.ConfigError
	}

	svc, err := d.factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	host, err := d.hostname()
	if err != nil {
		logger.Warn("could not determine hostname", "err", err)
		host = "unknown"
	}

	tracker := track.NewTracker(svc, cmp.Or(cardID, cfg.Card), logger)
	logger.Debug("tracking command", "card", tracker.CardID(), "sources", cfg.Sources)

	runner := proc.NewRunner(logger)
	runner.Stdin = d.stdin
	runner.Stdout = out
	runner.Stderr = errOut
	runner.Signals = d.signals

	err = tracker.Track(ctx, output.CommandDescription(host, command), func(ctx context.Context) error {
		return runner.Run(ctx, command)
	})
	return exitCode(logger, err)
}

// exitCode maps the result of the tracked command to a process exit code.
// The wrapped command's own status wins over tracking errors.
func exitCode(logger *log.Logger, err error) int {
	if err == nil {
		return exitcode.Success
	}

	var exitErr *proc.ExitError
	if errors.As(err, &exitErr) {
		logger.Error("command failed", "err", err)
		if exitErr.Code > 0 {
			return exitErr.Code
		}
		return exitcode.UserError
	}

	var startErr *proc.StartError
	if errors.As(err, &startErr) {
		logger.Error("command could not be started", "err", err)
		return exitcode.CommandNotFound
	}

	logger.Error("tracking failed", "err", err)
	return exitcode.BackendError
}
