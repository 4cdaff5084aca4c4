// Package exitcode defines exit codes for the CLI.
//
// When the wrapped command runs and fails, its own exit code is returned
// instead; these codes cover failures of the tool itself.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args) or a failed child
	// without a usable exit code.
	UserError = 1

	// ConfigError indicates missing or unreadable credentials.
	ConfigError = 2

	// BackendError indicates a Trello API or network error.
	BackendError = 3

	// CommandNotFound indicates the wrapped command could not be started.
	CommandNotFound = 127
)
