package action

import (
	"errors"
	"strings"
)

// ErrSudoBlocked is the fixed security rule: shell commands containing
// the privilege-escalation token as a standalone word never spawn. This
// is not configurable.
var ErrSudoBlocked = errors.New("action: sudo commands are blocked by policy")

// containsSudoToken reports whether the command contains "sudo" as a
// standalone token. Substrings inside larger words ("sudoku") do not
// match.
func containsSudoToken(command string) bool {
	for _, tok := range strings.Fields(command) {
		if tok == "sudo" {
			return true
		}
	}
	return false
}

func (d *Dispatcher) executeShell(b Binding) error {
	if containsSudoToken(b.Shell) {
		d.log.Warn().Str("command", b.Shell).Msg("policy block: sudo in shell action")
		return ErrSudoBlocked
	}
	// Detached; output goes to the action log only and is never surfaced
	// back to the display.
	_, err := d.launcher.Start(d.actionLogPath, "sh", "-c", b.Shell)
	return err
}
