// Package output provides the text written to the board.
package output

import (
	"fmt"
	"strings"
)

// Status icons. The glyphs are shared with existing boards and must not change.
const (
	IconReady      = "⚪"
	IconInProgress = "⌛"
	IconDone       = "🔵"
	IconFailed     = "🔴"
)

// Icons lists every status icon in lifecycle order.
var Icons = []string{IconReady, IconInProgress, IconDone, IconFailed}

// Label formats a check item name.
// Format: "{ICON} {DESCRIPTION}"
func Label(icon, desc string) string {
	return icon + " " + desc
}

// SplitLabel is the inverse of Label. ok is false when the label does not
// start with a known icon followed by a space.
func SplitLabel(label string) (icon, desc string, ok bool) {
	for _, candidate := range Icons {
		if rest, found := strings.CutPrefix(label, candidate+" "); found {
			return candidate, rest, true
		}
	}
	return "", "", false
}

// FormatCommand renders argv on one line.
// Arguments containing a space are wrapped in double quotes.
func FormatCommand(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if strings.Contains(arg, " ") {
			arg = `"` + arg + `"`
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}

// CommandDescription formats the description of a wrapped command.
// Format: "@{HOST} `{COMMAND}`"
func CommandDescription(host string, args []string) string {
	return fmt.Sprintf("@%s `%s`", host, FormatCommand(args))
}

// FailureComment formats the card comment posted when work fails.
func FailureComment(desc string, err error) string {
	return fmt.Sprintf("%s failed with error:\n`%v`", desc, err)
}
