package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// trelloBlue is the Trello brand color, used for the log prefix.
const trelloBlue = lipgloss.Color("#0079BF")

// NewLogger returns the stderr logger shared by the tracker and the runner.
// debug enables debug output and tags every line with a run id so that
// interleaved runs on one host can be told apart; quiet keeps errors only.
func NewLogger(w io.Writer, debug, quiet bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "trello",
		ReportTimestamp: debug,
	})

	styles := log.DefaultStyles()
	styles.Prefix = lipgloss.NewStyle().Bold(true).Foreground(trelloBlue)
	logger.SetStyles(styles)

	switch {
	case debug:
		logger.SetLevel(log.DebugLevel)
		logger = logger.With("run", uuid.NewString()[:8])
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}
